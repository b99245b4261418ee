package handlers

import (
	"net/http"

	"project-tracker-api/internal/database"
	"project-tracker-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// boardTask is a task card on a board column, flagged when the caller
// has a timer running on it.
type boardTask struct {
	models.Task
	TimerRunning bool `json:"isTimerActiveForCurrentUser"`
}

// boardColumn groups one project's tasks for the kanban-style board
type boardColumn struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Tasks []boardTask `json:"tasks"`
}

// groupTasksByProject buckets tasks into per-project columns, ordered
// by project name. Tasks whose project no longer resolves are skipped.
func groupTasksByProject(tasks []models.Task, running map[string]struct{}) ([]boardColumn, error) {
	ids := make([]string, 0)
	seen := map[string]struct{}{}
	for _, t := range tasks {
		if _, ok := seen[t.ProjectID]; !ok {
			seen[t.ProjectID] = struct{}{}
			ids = append(ids, t.ProjectID)
		}
	}

	columns := make([]boardColumn, 0, len(ids))
	if len(ids) == 0 {
		return columns, nil
	}

	var projects []models.Project
	if err := database.GetDB().
		Where("id IN ?", ids).
		Order("name asc").
		Find(&projects).Error; err != nil {
		return nil, err
	}

	byProject := make(map[string][]boardTask, len(projects))
	for _, t := range tasks {
		_, active := running[t.ID]
		byProject[t.ProjectID] = append(byProject[t.ProjectID], boardTask{Task: t, TimerRunning: active})
	}
	for _, p := range projects {
		columns = append(columns, boardColumn{ID: p.ID, Name: p.Name, Tasks: byProject[p.ID]})
	}
	return columns, nil
}

// GetUserBoardData handles GET /api/tasks/user-board
// The caller's assigned tasks grouped by project, each card flagged
// when the caller has an open timer on it.
func GetUserBoardData(c *gin.Context) {
	actor := actorFromContext(c)
	db := database.GetDB()

	var openLogs []models.TimeLog
	if err := db.Where("user_id = ? AND end_time IS NULL", actor.ID).Find(&openLogs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch active timers"})
		return
	}
	running := make(map[string]struct{}, len(openLogs))
	for _, l := range openLogs {
		running[l.TaskID] = struct{}{}
	}

	var tasks []models.Task
	if err := assignedScope(db.Model(&models.Task{}), actor.ID).
		Preload("AssignedTo").
		Preload("TodoChecklist", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("created_at asc").
		Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	board, err := groupTasksByProject(tasks, running)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build board"})
		return
	}
	c.JSON(http.StatusOK, board)
}

// GetAdminBoardData handles GET /api/tasks/admin-board (admin only)
// Every task in the system grouped by project. The timer flag is
// per-viewer, so it stays false on the admin-wide view.
func GetAdminBoardData(c *gin.Context) {
	var tasks []models.Task
	if err := database.GetDB().Model(&models.Task{}).
		Preload("AssignedTo").
		Preload("TodoChecklist", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("created_at asc").
		Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	board, err := groupTasksByProject(tasks, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build board"})
		return
	}
	c.JSON(http.StatusOK, board)
}
