package handlers

import (
	"fmt"
	"net/http"
	"time"

	"project-tracker-api/internal/cache"
	"project-tracker-api/internal/database"
	"project-tracker-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dashboard payloads are cached briefly so frontend polling doesn't
// re-run the grouped aggregations on every request.
var dashboardCache = cache.NewTTLCache[string, gin.H]()

const dashboardTTL = 30 * time.Second

type countRow struct {
	Key   string
	Count int64
}

func groupedCounts(q *gorm.DB, column string) (map[string]int64, int64, error) {
	var rows []countRow
	if err := q.Select(column + " as key, COUNT(*) as count").Group(column).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	counts := make(map[string]int64, len(rows))
	var total int64
	for _, r := range rows {
		counts[r.Key] = r.Count
		total += r.Count
	}
	return counts, total, nil
}

// dashboardPayload assembles the statistics, charts, recent tasks and
// total logged hours for one task scope.
func dashboardPayload(scope func(db *gorm.DB) *gorm.DB) (gin.H, error) {
	db := database.GetDB()
	base := func() *gorm.DB { return scope(db.Model(&models.Task{})) }

	statusCounts, total, err := groupedCounts(base(), "status")
	if err != nil {
		return nil, err
	}
	priorityCounts, _, err := groupedCounts(base(), "priority")
	if err != nil {
		return nil, err
	}

	var overdue int64
	if err := base().
		Where("status <> ? AND due_date < ?", models.StatusCompleted, time.Now()).
		Count(&overdue).Error; err != nil {
		return nil, err
	}

	var recentTasks []models.Task
	if err := scope(db.Model(&models.Task{})).
		Preload("AssignedTo").
		Order("created_at desc").
		Limit(10).
		Find(&recentTasks).Error; err != nil {
		return nil, err
	}

	var totalMs int64
	if err := scope(db.Model(&models.Task{})).
		Joins("JOIN time_logs ON time_logs.task_id = tasks.id").
		Select("COALESCE(SUM(time_logs.duration_ms), 0)").
		Scan(&totalMs).Error; err != nil {
		return nil, err
	}

	taskDistribution := gin.H{
		"All":        total,
		"Pending":    statusCounts[string(models.StatusPending)],
		"InProgress": statusCounts[string(models.StatusInProgress)],
		"Completed":  statusCounts[string(models.StatusCompleted)],
	}
	taskPriorityLevels := gin.H{
		"Low":    priorityCounts[string(models.PriorityLow)],
		"Medium": priorityCounts[string(models.PriorityMedium)],
		"High":   priorityCounts[string(models.PriorityHigh)],
	}

	return gin.H{
		"statistics": gin.H{
			"totalTasks":      total,
			"pendingTasks":    statusCounts[string(models.StatusPending)],
			"inProgressTasks": statusCounts[string(models.StatusInProgress)],
			"completedTasks":  statusCounts[string(models.StatusCompleted)],
			"overdueTasks":    overdue,
		},
		"charts": gin.H{
			"taskDistribution":   taskDistribution,
			"taskPriorityLevels": taskPriorityLevels,
		},
		"recentTasks": recentTasks,
		"totalHours":  fmt.Sprintf("%.2f", float64(totalMs)/(1000*60*60)),
	}, nil
}

// GetDashboardData handles GET /api/tasks/dashboard-data
// Admins see the whole scope (optionally one project); members only
// their own assignments.
func GetDashboardData(c *gin.Context) {
	actor := actorFromContext(c)
	projectID := c.Query("projectId")

	cacheKey := fmt.Sprintf("dashboard|%s|%s|%s", actor.ID, actor.Role, projectID)
	if payload, ok := dashboardCache.Get(cacheKey); ok {
		c.JSON(http.StatusOK, payload)
		return
	}

	scope := func(q *gorm.DB) *gorm.DB {
		if projectID != "" {
			q = q.Where("project_id = ?", projectID)
		}
		if !actor.IsAdmin() {
			q = assignedScope(q, actor.ID)
		}
		return q
	}

	payload, err := dashboardPayload(scope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard data"})
		return
	}

	dashboardCache.Set(cacheKey, payload, dashboardTTL)
	c.JSON(http.StatusOK, payload)
}

// GetUserDashboardData handles GET /api/tasks/user-dashboard-data
// Always scoped to the caller's assigned tasks.
func GetUserDashboardData(c *gin.Context) {
	actor := actorFromContext(c)

	cacheKey := fmt.Sprintf("user-dashboard|%s", actor.ID)
	if payload, ok := dashboardCache.Get(cacheKey); ok {
		c.JSON(http.StatusOK, payload)
		return
	}

	scope := func(q *gorm.DB) *gorm.DB {
		return assignedScope(q, actor.ID)
	}

	payload, err := dashboardPayload(scope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard data"})
		return
	}

	dashboardCache.Set(cacheKey, payload, dashboardTTL)
	c.JSON(http.StatusOK, payload)
}
