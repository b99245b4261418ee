package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"project-tracker-api/internal/database"
	"project-tracker-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StartTimer handles POST /api/tasks/:taskId/timelogs/start
// At most one open log per (task, user): the handler checks first and
// the storage layer's partial unique index backs it up, since two
// near-simultaneous starts can both pass the read.
func StartTimer(c *gin.Context) {
	task, err := loadTask(c.Param("taskId"))
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}

	actor := actorFromContext(c)
	if !task.IsAssignedTo(actor.ID) && !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: you are not assigned to this task"})
		return
	}

	var open models.TimeLog
	err = database.GetDB().
		Where("task_id = ? AND user_id = ? AND end_time IS NULL", task.ID, actor.ID).
		First(&open).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "You already have an active timer for this task. Please stop it first."})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check active timers"})
		return
	}

	timeLog := models.TimeLog{
		ID:        uuid.NewString(),
		TaskID:    task.ID,
		UserID:    actor.ID,
		StartTime: time.Now(),
	}
	if err := database.GetDB().Create(&timeLog).Error; err != nil {
		// The unique index catches the losing racer here; anything
		// else is a genuine persistence failure
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") {
			c.JSON(http.StatusConflict, gin.H{"error": "You already have an active timer for this task. Please stop it first."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start timer"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Timer started successfully", "timeLog": timeLog})
}

// StopTimer handles PUT /api/tasks/:taskId/timelogs/:timeLogId/stop
func StopTimer(c *gin.Context) {
	var timeLog models.TimeLog
	if err := database.GetDB().First(&timeLog, "id = ?", c.Param("timeLogId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Time log entry not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch time log"})
		}
		return
	}

	if timeLog.TaskID != c.Param("taskId") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Time log does not belong to the specified task"})
		return
	}

	actor := actorFromContext(c)
	if timeLog.UserID != actor.ID && !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: you did not start this timer"})
		return
	}

	if timeLog.EndTime != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Timer is already stopped"})
		return
	}

	now := time.Now()
	timeLog.EndTime = &now
	timeLog.DurationMs = now.Sub(timeLog.StartTime).Milliseconds()
	if err := database.GetDB().Model(&timeLog).Updates(map[string]any{
		"end_time":    timeLog.EndTime,
		"duration_ms": timeLog.DurationMs,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stop timer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Timer stopped successfully", "timeLog": timeLog})
}

// GetActiveTimer handles GET /api/tasks/:taskId/timelogs/active
func GetActiveTimer(c *gin.Context) {
	task, err := loadTask(c.Param("taskId"))
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}

	actor := actorFromContext(c)
	if !task.IsAssignedTo(actor.ID) && !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: you are not assigned to this task"})
		return
	}

	var active models.TimeLog
	err = database.GetDB().
		Where("task_id = ? AND user_id = ? AND end_time IS NULL", task.ID, actor.ID).
		First(&active).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"activeTimeLog": nil})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch active timer"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"activeTimeLog": active})
}

// GetTaskTimeLogs handles GET /api/tasks/:taskId/timelogs
// All logs for the task, newest first, with the total logged duration.
func GetTaskTimeLogs(c *gin.Context) {
	taskID := c.Param("taskId")
	var task models.Task
	if err := database.GetDB().First(&task, "id = ?", taskID).Error; err != nil {
		respondTaskLoadError(c, err)
		return
	}

	var timeLogs []models.TimeLog
	if err := database.GetDB().
		Where("task_id = ?", taskID).
		Order("start_time desc").
		Find(&timeLogs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch time logs"})
		return
	}

	var totalMs int64
	for _, l := range timeLogs {
		totalMs += l.DurationMs
	}

	c.JSON(http.StatusOK, gin.H{"timeLogs": timeLogs, "totalDurationMs": totalMs})
}
