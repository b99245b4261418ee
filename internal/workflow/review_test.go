package workflow

import (
	"testing"

	"project-tracker-api/internal/models"
)

func reviewTask() *models.Task {
	return &models.Task{
		ID:            "t-1",
		Title:         "Ship the widget",
		Status:        models.StatusCompleted,
		ReviewStatus:  models.ReviewPendingReview,
		CreatedByID:   "creator",
		Reviewers:     []models.User{{ID: "creator"}, {ID: "reviewer"}},
		AssignedTo:    []models.User{{ID: "worker"}},
		TodoChecklist: []models.ChecklistItem{{Text: "Design", Completed: true}, {Text: "Build", Completed: true}},
	}
}

func TestApplyReviewerDecision_NonCreatorApprovalHandsOff(t *testing.T) {
	task := reviewTask()
	if err := ApplyReviewerDecision(task, "reviewer", models.DecisionApproved, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ReviewStatus != models.ReviewPendingFinalApproval {
		t.Fatalf("expected PendingFinalApproval, got %s", task.ReviewStatus)
	}
	if task.Status != models.StatusCompleted {
		t.Fatalf("approval must not touch work status, got %s", task.Status)
	}
}

func TestApplyReviewerDecision_CreatorApprovalSkipsFinalHop(t *testing.T) {
	task := reviewTask()
	if err := ApplyReviewerDecision(task, "creator", models.DecisionApproved, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ReviewStatus != models.ReviewApproved {
		t.Fatalf("creator-reviewer approval should jump to Approved, got %s", task.ReviewStatus)
	}
}

func TestApplyReviewerDecision_AlreadyApproved(t *testing.T) {
	task := reviewTask()
	task.ReviewStatus = models.ReviewApproved
	if err := ApplyReviewerDecision(task, "reviewer", models.DecisionApproved, ""); err != ErrAlreadyApproved {
		t.Fatalf("expected ErrAlreadyApproved, got %v", err)
	}
}

func TestApplyReviewerDecision_ChangesRequestedRevertsAndCounts(t *testing.T) {
	task := reviewTask()
	if err := ApplyReviewerDecision(task, "reviewer", models.DecisionChangesRequested, "needs polish"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ReviewStatus != models.ReviewChangesRequested {
		t.Fatalf("expected ChangesRequested, got %s", task.ReviewStatus)
	}
	if task.Status != models.StatusInProgress {
		t.Fatalf("checklist has completions, expected revert to In Progress, got %s", task.Status)
	}
	if task.RevisionCount != 1 {
		t.Fatalf("expected revisionCount 1, got %d", task.RevisionCount)
	}
	if len(task.RevisionHistory) != 1 || task.RevisionHistory[0].Comment != "needs polish" || task.RevisionHistory[0].MadeByID != "reviewer" {
		t.Fatalf("revision history wrong: %+v", task.RevisionHistory)
	}
}

func TestApplyReviewerDecision_RepeatedChangesCountOnce(t *testing.T) {
	task := reviewTask()
	if err := ApplyReviewerDecision(task, "reviewer", models.DecisionChangesRequested, "first pass"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ApplyReviewerDecision(task, "reviewer", models.DecisionChangesRequested, "still broken"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.RevisionCount != 1 {
		t.Fatalf("repeated ChangesRequested in one episode must count once, got %d", task.RevisionCount)
	}
	if len(task.RevisionHistory) != 1 {
		t.Fatalf("expected a single history entry, got %d", len(task.RevisionHistory))
	}
}

func TestApplyReviewerDecision_NewEpisodeAfterResubmit(t *testing.T) {
	task := reviewTask()
	if err := ApplyReviewerDecision(task, "reviewer", models.DecisionChangesRequested, "first pass"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Assignee reworks and resubmits
	task.Status = models.StatusCompleted
	task.ReviewStatus = models.ReviewPendingReview
	if err := ApplyReviewerDecision(task, "reviewer", models.DecisionChangesRequested, "second pass"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.RevisionCount != 2 {
		t.Fatalf("resubmission starts a new episode, expected 2, got %d", task.RevisionCount)
	}
}

func TestApplyCreatorDecision_Approve(t *testing.T) {
	task := reviewTask()
	task.ReviewStatus = models.ReviewPendingFinalApproval
	if err := ApplyCreatorDecision(task, "creator", models.DecisionApproved, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ReviewStatus != models.ReviewApproved {
		t.Fatalf("expected Approved, got %s", task.ReviewStatus)
	}
	if err := ApplyCreatorDecision(task, "creator", models.DecisionApproved, ""); err != ErrAlreadyApproved {
		t.Fatalf("re-approval must conflict, got %v", err)
	}
}

func TestApplyCreatorDecision_ReopensApprovedTask(t *testing.T) {
	task := reviewTask()
	task.ReviewStatus = models.ReviewApproved
	if err := ApplyCreatorDecision(task, "creator", models.DecisionChangesRequested, "post-approval fix"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ReviewStatus != models.ReviewChangesRequested {
		t.Fatalf("creator should be able to reopen an approved task, got %s", task.ReviewStatus)
	}
	if task.RevisionCount != 1 {
		t.Fatalf("reopening starts a revision episode, got %d", task.RevisionCount)
	}
}

func TestValidateDecision(t *testing.T) {
	if err := ValidateDecision("Maybe", ""); err != ErrInvalidDecision {
		t.Fatalf("expected ErrInvalidDecision, got %v", err)
	}
	if err := ValidateDecision(models.DecisionChangesRequested, ""); err != ErrCommentRequired {
		t.Fatalf("expected ErrCommentRequired, got %v", err)
	}
	if err := ValidateDecision(models.DecisionApproved, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
