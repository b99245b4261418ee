package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"project-tracker-api/internal/database"
	"project-tracker-api/internal/models"
	"project-tracker-api/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DirectStatusUpdateRequest carries the single flattened status label
type DirectStatusUpdateRequest struct {
	NewStatus workflow.StatusLabel `json:"newStatus" binding:"required"`
}

// ReviewDecisionRequest is shared by process-review and final-approval
type ReviewDecisionRequest struct {
	Decision      models.ReviewDecision `json:"decision" binding:"required"`
	ReviewComment string                `json:"reviewComment"`
}

// saveWorkflowState persists the fields the lifecycle engine mutates:
// both status axes, the revision counter, and any new history entry.
func saveWorkflowState(task *models.Task) error {
	return database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(task).Updates(map[string]any{
			"status":         task.Status,
			"review_status":  task.ReviewStatus,
			"revision_count": task.RevisionCount,
		}).Error; err != nil {
			return err
		}
		for i := range task.RevisionHistory {
			entry := &task.RevisionHistory[i]
			if entry.ID == "" {
				entry.ID = uuid.NewString()
				if err := tx.Create(entry).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// DirectStatusUpdate handles PUT /api/tasks/:id/direct-status-update
// Admins and the creator may set any of the six labels; other
// reviewers anything but the final Approved.
func DirectStatusUpdate(c *gin.Context) {
	task, err := loadTask(c.Param("taskId"))
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}

	var req DirectStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, reviewStatus, err := workflow.ResolveStatusLabel(req.NewStatus, task)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status provided"})
		return
	}

	actor := actorFromContext(c)
	if !workflow.CanSetStatusLabel(task, actor, req.NewStatus) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": fmt.Sprintf("Forbidden: you do not have permission to set this status to %q", req.NewStatus),
		})
		return
	}

	// Moving the work axis forward is still dependency-gated; reverts
	// (Pending, ChangesRequested) are always allowed through.
	if req.NewStatus != workflow.LabelPending && req.NewStatus != workflow.LabelChangesRequested {
		if blocking := workflow.BlockingDependencies(task.Dependencies); len(blocking) > 0 {
			c.JSON(http.StatusConflict, gin.H{
				"error":     fmt.Sprintf("Cannot start this task. It is blocked by: %s", strings.Join(blocking, ", ")),
				"blockedBy": blocking,
			})
			return
		}
	}

	task.Status = status
	task.ReviewStatus = reviewStatus
	if err := saveWorkflowState(task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task status"})
		return
	}

	updated, err := loadTask(task.ID)
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task status updated successfully", "task": updated})
}

// SubmitForReview handles PUT /api/tasks/:id/submit-review
// Only assignees submit, and only from NotSubmitted or
// ChangesRequested; anything else is a conflict.
func SubmitForReview(c *gin.Context) {
	task, err := loadTask(c.Param("taskId"))
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}

	actor := actorFromContext(c)
	if !task.IsAssignedTo(actor.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: you are not assigned to this task"})
		return
	}

	if !workflow.CanSubmitForReview(task.ReviewStatus) {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Cannot submit task with current review status: %s", task.ReviewStatus),
		})
		return
	}

	task.Status = models.StatusCompleted
	task.ReviewStatus = models.ReviewPendingReview
	if err := saveWorkflowState(task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit task for review"})
		return
	}

	updated, err := loadTask(task.ID)
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task submitted for review successfully", "task": updated})
}

// ProcessReview handles PUT /api/tasks/:id/process-review
// A reviewer approves (handing off to the creator unless the reviewer
// is the creator) or requests changes with a mandatory comment.
func ProcessReview(c *gin.Context) {
	task, err := loadTask(c.Param("taskId"))
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}

	actor := actorFromContext(c)
	if !task.HasReviewer(actor.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: you are not a reviewer for this task"})
		return
	}

	var req ReviewDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := workflow.ApplyReviewerDecision(task, actor.ID, req.Decision, req.ReviewComment); err != nil {
		respondReviewError(c, err)
		return
	}

	if err := saveWorkflowState(task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process review"})
		return
	}

	updated, err := loadTask(task.ID)
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Review processed: %s", req.Decision), "task": updated})
}

// FinalApproveTask handles PUT /api/tasks/:id/final-approval
// The creator's terminal approval, or a reopening changes request
// (permitted even on an already approved task).
func FinalApproveTask(c *gin.Context) {
	task, err := loadTask(c.Param("taskId"))
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}

	actor := actorFromContext(c)
	if !task.IsCreatedBy(actor.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: you are not the creator of this task"})
		return
	}

	var req ReviewDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := workflow.ApplyCreatorDecision(task, actor.ID, req.Decision, req.ReviewComment); err != nil {
		respondReviewError(c, err)
		return
	}

	if err := saveWorkflowState(task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process final approval"})
		return
	}

	updated, err := loadTask(task.ID)
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Final approval processed: %s", req.Decision), "task": updated})
}

// respondReviewError maps workflow errors onto HTTP statuses
func respondReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrAlreadyApproved):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrInvalidDecision), errors.Is(err, workflow.ErrCommentRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply review decision"})
	}
}
