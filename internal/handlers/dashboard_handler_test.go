package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"project-tracker-api/internal/models"

	"github.com/stretchr/testify/require"
)

func TestGetDashboardData_AdminStatistics(t *testing.T) {
	db := setupTestDB(t)
	dashboardCache.Clear()
	admin := seedUser(t, db, "u-admin", "Alice", models.RoleAdmin)
	bob := seedUser(t, db, "u-bob", "Bob", models.RoleMember)
	seedProject(t, db, "p-1", "Apollo", admin.ID)

	seedTask(t, db, models.Task{
		ID: "t-1", ProjectID: "p-1", Title: "One",
		Status: models.StatusPending, CreatedByID: admin.ID, AssignedTo: []models.User{bob},
	})
	seedTask(t, db, models.Task{
		ID: "t-2", ProjectID: "p-1", Title: "Two",
		Status: models.StatusInProgress, CreatedByID: admin.ID, AssignedTo: []models.User{bob},
	})
	seedTask(t, db, models.Task{
		ID: "t-3", ProjectID: "p-1", Title: "Three",
		Status: models.StatusCompleted, CreatedByID: admin.ID, AssignedTo: []models.User{admin},
	})

	r := newTestRouter()
	w := doJSON(t, r, http.MethodGet, "/api/tasks/dashboard-data", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Statistics struct {
			TotalTasks      int64 `json:"totalTasks"`
			PendingTasks    int64 `json:"pendingTasks"`
			InProgressTasks int64 `json:"inProgressTasks"`
			CompletedTasks  int64 `json:"completedTasks"`
		} `json:"statistics"`
		RecentTasks []models.Task `json:"recentTasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(3), resp.Statistics.TotalTasks)
	require.Equal(t, int64(1), resp.Statistics.PendingTasks)
	require.Equal(t, int64(1), resp.Statistics.InProgressTasks)
	require.Equal(t, int64(1), resp.Statistics.CompletedTasks)
	require.Len(t, resp.RecentTasks, 3)
}

func TestGetUserDashboardData_ScopedToCaller(t *testing.T) {
	db := setupTestDB(t)
	dashboardCache.Clear()
	admin := seedUser(t, db, "u-admin", "Alice", models.RoleAdmin)
	bob := seedUser(t, db, "u-bob", "Bob", models.RoleMember)
	seedProject(t, db, "p-1", "Apollo", admin.ID)

	seedTask(t, db, models.Task{
		ID: "t-mine", ProjectID: "p-1", Title: "Mine",
		Status: models.StatusPending, CreatedByID: admin.ID, AssignedTo: []models.User{bob},
	})
	seedTask(t, db, models.Task{
		ID: "t-other", ProjectID: "p-1", Title: "Not mine",
		Status: models.StatusPending, CreatedByID: admin.ID, AssignedTo: []models.User{admin},
	})

	r := newTestRouter()
	w := doJSON(t, r, http.MethodGet, "/api/tasks/user-dashboard-data", tokenFor(t, bob), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Statistics struct {
			TotalTasks int64 `json:"totalTasks"`
		} `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(1), resp.Statistics.TotalTasks)
}

func TestGetDashboardData_ServesCachedPayload(t *testing.T) {
	db := setupTestDB(t)
	dashboardCache.Clear()
	admin := seedUser(t, db, "u-cache-admin", "Alice", models.RoleAdmin)
	seedProject(t, db, "p-1", "Apollo", admin.ID)
	seedTask(t, db, models.Task{
		ID: "t-1", ProjectID: "p-1", Title: "One",
		Status: models.StatusPending, CreatedByID: admin.ID,
	})

	r := newTestRouter()
	w := doJSON(t, r, http.MethodGet, "/api/tasks/dashboard-data", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// New tasks are invisible until the cached payload expires
	seedTask(t, db, models.Task{
		ID: "t-2", ProjectID: "p-1", Title: "Two",
		Status: models.StatusPending, CreatedByID: admin.ID,
	})
	w = doJSON(t, r, http.MethodGet, "/api/tasks/dashboard-data", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Statistics struct {
			TotalTasks int64 `json:"totalTasks"`
		} `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(1), resp.Statistics.TotalTasks)
}
