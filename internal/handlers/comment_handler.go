package handlers

import (
	"net/http"
	"strings"

	"project-tracker-api/internal/database"
	"project-tracker-api/internal/models"
	"project-tracker-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AddTextRequest is the shared payload for remarks and comments
type AddTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddRemarkToTask handles POST /api/tasks/:id/remarks (admin only)
// Remarks are admin-authored notes, kept separate from the general
// comment thread.
func AddRemarkToTask(c *gin.Context) {
	task, err := loadTask(c.Param("taskId"))
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}

	var req AddTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Remark text is required"})
		return
	}

	remark := models.Remark{
		ID:       uuid.NewString(),
		TaskID:   task.ID,
		Text:     req.Text,
		MadeByID: c.GetString("user_id"),
	}
	if err := database.GetDB().Create(&remark).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add remark"})
		return
	}

	updated, err := loadTask(task.ID)
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Remark added successfully", "task": updated})
}

// AddCommentToTask handles POST /api/tasks/:id/comments
// Assignees and admins may comment; the comment fans out over the hub
// to admins and assignees except the author.
func AddCommentToTask(c *gin.Context) {
	task, err := loadTask(c.Param("taskId"))
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}

	var req AddTextRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment text cannot be empty"})
		return
	}

	actor := actorFromContext(c)
	if !actor.IsAdmin() && !task.IsAssignedTo(actor.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: you are not assigned to this task"})
		return
	}

	comment := models.Comment{
		ID:       uuid.NewString(),
		TaskID:   task.ID,
		Text:     req.Text,
		MadeByID: actor.ID,
	}
	if err := database.GetDB().Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}

	// Fan out to admins plus assignees, minus the author
	recipients := map[string]struct{}{}
	var admins []models.User
	if err := database.GetDB().Where("role = ?", models.RoleAdmin).Find(&admins).Error; err == nil {
		for _, a := range admins {
			recipients[a.ID] = struct{}{}
		}
	}
	for _, u := range task.AssignedTo {
		recipients[u.ID] = struct{}{}
	}
	delete(recipients, actor.ID)

	ids := make([]string, 0, len(recipients))
	for id := range recipients {
		ids = append(ids, id)
	}
	realtime.GetHub().BroadcastEvent(ids, map[string]any{
		"type":    "new_comment",
		"taskId":  task.ID,
		"comment": comment,
	})

	updated, err := loadTask(task.ID)
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}
	c.JSON(http.StatusCreated, updated)
}
