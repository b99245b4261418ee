package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"project-tracker-api/internal/auth"
	"project-tracker-api/internal/database"
	"project-tracker-api/internal/middleware"
	"project-tracker-api/internal/models"
	"project-tracker-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB swaps the package DB for a fresh in-memory one
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db
	return db
}

// newTestRouter wires the routes the handler tests exercise, with the
// same middleware stack as the real route table.
func newTestRouter() *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())

	api.POST("/tasks", middleware.AdminOnly(), CreateTask)
	api.GET("/tasks", GetTasks)
	api.GET("/tasks/:taskId", GetTaskByID)
	api.PUT("/tasks/:taskId", UpdateTask)
	api.DELETE("/tasks/:taskId", middleware.AdminOnly(), DeleteTask)
	api.PUT("/tasks/:taskId/todo", UpdateTaskChecklist)
	api.PUT("/tasks/:taskId/status", UpdateTaskStatus)
	api.PUT("/tasks/:taskId/submit-review", SubmitForReview)
	api.PUT("/tasks/:taskId/process-review", ProcessReview)
	api.PUT("/tasks/:taskId/final-approval", FinalApproveTask)
	api.PUT("/tasks/:taskId/direct-status-update", DirectStatusUpdate)
	api.POST("/tasks/:taskId/timelogs/start", StartTimer)
	api.PUT("/tasks/:taskId/timelogs/:timeLogId/stop", StopTimer)
	api.GET("/tasks/:taskId/timelogs/active", GetActiveTimer)
	api.GET("/tasks/:taskId/timelogs", GetTaskTimeLogs)
	api.POST("/tasks/:taskId/comments", AddCommentToTask)
	api.POST("/tasks/:taskId/remarks", middleware.AdminOnly(), AddRemarkToTask)
	api.GET("/tasks/dashboard-data", GetDashboardData)
	api.GET("/tasks/user-dashboard-data", GetUserDashboardData)
	api.GET("/tasks/user-board", GetUserBoardData)
	api.GET("/tasks/admin-board", middleware.AdminOnly(), GetAdminBoardData)
	api.GET("/tasks/calendar", GetTasksForCalendar)

	api.POST("/projects", middleware.AdminOnly(), CreateProject)
	api.GET("/projects", GetProjects)
	api.GET("/projects/:id", GetProjectByID)
	api.PUT("/projects/:id", middleware.AdminOnly(), UpdateProject)
	api.GET("/projects/:id/gantt", GetProjectGanttData)
	api.GET("/users", middleware.AdminOnly(), GetAllUsers)
	api.GET("/users/manage", middleware.AdminOnly(), GetManageUsers)
	api.GET("/users/:id", GetUserByID)
	api.PUT("/users/:id/role", middleware.AdminOnly(), UpdateUserRole)
	api.DELETE("/users/:id", middleware.AdminOnly(), DeleteUser)
	api.GET("/notifications", GetNotifications)
	api.PUT("/notifications/:id/read", MarkNotificationRead)

	return r
}

func seedUser(t *testing.T, db *gorm.DB, id, name string, role models.UserRole) models.User {
	t.Helper()
	user := models.User{ID: id, Name: name, Email: id + "@example.com", Password: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedProject(t *testing.T, db *gorm.DB, id, name, ownerID string) models.Project {
	t.Helper()
	project := models.Project{ID: id, Name: name, OwnerID: ownerID}
	require.NoError(t, db.Create(&project).Error)
	return project
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := auth.GenerateToken(user.ID, user.Name, user.Role)
	require.NoError(t, err)
	return token
}

// doJSON performs an authenticated JSON request against the router
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// taskFromResponse pulls the task object out of a {message, task} body
func taskFromResponse(t *testing.T, w *httptest.ResponseRecorder) models.Task {
	t.Helper()
	var resp struct {
		Task models.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Task
}
