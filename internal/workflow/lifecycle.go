package workflow

import (
	"errors"
	"math"

	"project-tracker-api/internal/models"
)

var (
	// ErrInvalidStatusLabel is returned for a direct status update whose
	// label is not one of the six client-facing values.
	ErrInvalidStatusLabel = errors.New("invalid status label")
)

// StatusLabel is the flattened client-facing vocabulary for the direct
// status update. Internally status and reviewStatus stay separate
// axes; the label only exists at the API boundary.
type StatusLabel string

const (
	LabelPending              StatusLabel = "Pending"
	LabelInProgress           StatusLabel = "In Progress"
	LabelPendingReview        StatusLabel = "Pending Review"
	LabelPendingFinalApproval StatusLabel = "Pending Final Approval"
	LabelApproved             StatusLabel = "Approved"
	LabelChangesRequested     StatusLabel = "ChangesRequested"
)

// Progress returns the checklist completion ratio as a rounded
// percentage, 0 for an empty checklist.
func Progress(items []models.ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}
	completed := 0
	for _, item := range items {
		if item.Completed {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(items)) * 100))
}

// StatusForProgress derives the work status from a progress value
func StatusForProgress(progress int) models.TaskStatus {
	switch {
	case progress == 100:
		return models.StatusCompleted
	case progress > 0:
		return models.StatusInProgress
	default:
		return models.StatusPending
	}
}

// RevertedStatus is the status a task falls back to when changes are
// requested: In Progress if any checklist work is done, else Pending.
// It never reverts to Completed.
func RevertedStatus(items []models.ChecklistItem) models.TaskStatus {
	for _, item := range items {
		if item.Completed {
			return models.StatusInProgress
		}
	}
	return models.StatusPending
}

// SanitizeChecklist drops any incoming item ID that does not belong to
// one of the task's persisted items, so a client cannot smuggle in
// fabricated IDs. Items with dropped or empty IDs are treated as new.
func SanitizeChecklist(incoming []models.ChecklistItem, existing []models.ChecklistItem) []models.ChecklistItem {
	known := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		known[item.ID] = struct{}{}
	}
	out := make([]models.ChecklistItem, len(incoming))
	for i, item := range incoming {
		if _, ok := known[item.ID]; !ok {
			item.ID = ""
		}
		out[i] = models.ChecklistItem{ID: item.ID, Text: item.Text, Completed: item.Completed}
	}
	return out
}

// BlockingDependencies returns the titles of dependencies that are not
// yet Completed. A non-empty result refuses any forward transition to
// In Progress or beyond.
func BlockingDependencies(deps []*models.Task) []string {
	var blocking []string
	for _, dep := range deps {
		if dep.Status != models.StatusCompleted {
			blocking = append(blocking, dep.Title)
		}
	}
	return blocking
}

// ResolveStatusLabel maps a client-facing label to the internal
// (status, reviewStatus) pair. The ChangesRequested label reverts the
// work status based on the task's current checklist.
func ResolveStatusLabel(label StatusLabel, task *models.Task) (models.TaskStatus, models.ReviewStatus, error) {
	switch label {
	case LabelPending:
		return models.StatusPending, models.ReviewNotSubmitted, nil
	case LabelInProgress:
		return models.StatusInProgress, models.ReviewNotSubmitted, nil
	case LabelPendingReview:
		return models.StatusCompleted, models.ReviewPendingReview, nil
	case LabelPendingFinalApproval:
		return models.StatusCompleted, models.ReviewPendingFinalApproval, nil
	case LabelApproved:
		return models.StatusCompleted, models.ReviewApproved, nil
	case LabelChangesRequested:
		return RevertedStatus(task.TodoChecklist), models.ReviewChangesRequested, nil
	default:
		return "", "", ErrInvalidStatusLabel
	}
}

// CanSetStatusLabel decides whether the actor may apply a direct
// status update with the given label. Admins and the creator may set
// any label; other reviewers may set anything except the final
// Approved; everyone else is refused outright.
func CanSetStatusLabel(task *models.Task, actor Actor, label StatusLabel) bool {
	if actor.IsAdmin() || task.IsCreatedBy(actor.ID) {
		return true
	}
	if task.HasReviewer(actor.ID) {
		return label != LabelApproved
	}
	return false
}

// CanSubmitForReview reports whether a task in the given review state
// may be submitted by an assignee. Only fresh and reworked tasks
// qualify; anything already in the review pipeline is a conflict.
func CanSubmitForReview(rs models.ReviewStatus) bool {
	return rs == models.ReviewNotSubmitted || rs == models.ReviewChangesRequested
}
