package workflow

import (
	"errors"

	"project-tracker-api/internal/models"
)

var (
	// ErrAlreadyApproved rejects re-approval of a fully approved task
	ErrAlreadyApproved = errors.New("task has already been fully approved")

	// ErrInvalidDecision is returned for a decision outside
	// {Approved, ChangesRequested}.
	ErrInvalidDecision = errors.New("decision must be 'Approved' or 'ChangesRequested'")

	// ErrCommentRequired is returned when changes are requested
	// without an accompanying comment.
	ErrCommentRequired = errors.New("a comment is required when requesting changes")
)

// ValidateDecision checks the decision/comment pair before any state
// is touched.
func ValidateDecision(decision models.ReviewDecision, comment string) error {
	if decision != models.DecisionApproved && decision != models.DecisionChangesRequested {
		return ErrInvalidDecision
	}
	if decision == models.DecisionChangesRequested && comment == "" {
		return ErrCommentRequired
	}
	return nil
}

// ApplyReviewerDecision mutates the task per a reviewer's decision.
// Approval by a reviewer who is also the creator completes the review
// immediately; otherwise it hands off to the creator for final
// approval. The caller persists the task afterwards.
func ApplyReviewerDecision(task *models.Task, actorID string, decision models.ReviewDecision, comment string) error {
	if err := ValidateDecision(decision, comment); err != nil {
		return err
	}
	if decision == models.DecisionApproved {
		if task.ReviewStatus == models.ReviewApproved {
			return ErrAlreadyApproved
		}
		if task.IsCreatedBy(actorID) {
			task.ReviewStatus = models.ReviewApproved
		} else {
			task.ReviewStatus = models.ReviewPendingFinalApproval
		}
		return nil
	}
	requestChanges(task, actorID, comment)
	return nil
}

// ApplyCreatorDecision mutates the task per the creator's final
// decision. Approval here is terminal; requesting changes reopens the
// task even from Approved.
func ApplyCreatorDecision(task *models.Task, actorID string, decision models.ReviewDecision, comment string) error {
	if err := ValidateDecision(decision, comment); err != nil {
		return err
	}
	if decision == models.DecisionApproved {
		if task.ReviewStatus == models.ReviewApproved {
			return ErrAlreadyApproved
		}
		task.ReviewStatus = models.ReviewApproved
		return nil
	}
	requestChanges(task, actorID, comment)
	return nil
}

// requestChanges reverts the work status and opens a revision episode.
// The revision count only bumps when entering ChangesRequested from a
// different state, so repeated requests in one episode count once.
func requestChanges(task *models.Task, actorID, comment string) {
	task.Status = RevertedStatus(task.TodoChecklist)
	if task.ReviewStatus != models.ReviewChangesRequested {
		task.RevisionCount++
		task.RevisionHistory = append(task.RevisionHistory, models.RevisionEntry{
			TaskID:   task.ID,
			Comment:  comment,
			MadeByID: actorID,
		})
	}
	task.ReviewStatus = models.ReviewChangesRequested
}
