package workflow

import (
	"testing"

	"project-tracker-api/internal/models"
)

func checklist(completed ...bool) []models.ChecklistItem {
	items := make([]models.ChecklistItem, len(completed))
	for i, c := range completed {
		items[i] = models.ChecklistItem{ID: "item", Text: "step", Completed: c}
	}
	return items
}

func TestProgress_Rounding(t *testing.T) {
	cases := []struct {
		items []models.ChecklistItem
		want  int
	}{
		{nil, 0},
		{checklist(false, false), 0},
		{checklist(true, false), 50},
		{checklist(true, true), 100},
		{checklist(true, false, false), 33},
		{checklist(true, true, false), 67},
	}
	for _, tc := range cases {
		if got := Progress(tc.items); got != tc.want {
			t.Fatalf("Progress(%d items) = %d, want %d", len(tc.items), got, tc.want)
		}
	}
}

func TestStatusForProgress(t *testing.T) {
	if got := StatusForProgress(0); got != models.StatusPending {
		t.Fatalf("expected Pending at 0, got %s", got)
	}
	if got := StatusForProgress(50); got != models.StatusInProgress {
		t.Fatalf("expected In Progress at 50, got %s", got)
	}
	if got := StatusForProgress(100); got != models.StatusCompleted {
		t.Fatalf("expected Completed at 100, got %s", got)
	}
}

func TestRevertedStatus_NeverCompleted(t *testing.T) {
	if got := RevertedStatus(checklist(false, false)); got != models.StatusPending {
		t.Fatalf("expected Pending with no completions, got %s", got)
	}
	if got := RevertedStatus(checklist(true, false)); got != models.StatusInProgress {
		t.Fatalf("expected In Progress with partial completions, got %s", got)
	}
	// Even a fully ticked checklist reverts to In Progress, not Completed
	if got := RevertedStatus(checklist(true, true)); got != models.StatusInProgress {
		t.Fatalf("expected In Progress with full completions, got %s", got)
	}
}

func TestSanitizeChecklist_DropsUnknownIDs(t *testing.T) {
	existing := []models.ChecklistItem{{ID: "ck-1", Text: "Design"}}
	incoming := []models.ChecklistItem{
		{ID: "ck-1", Text: "Design", Completed: true},
		{ID: "temp-123", Text: "Build", Completed: false},
		{Text: "Ship"},
	}
	out := SanitizeChecklist(incoming, existing)
	if len(out) != 3 {
		t.Fatalf("expected 3 items, got %d", len(out))
	}
	if out[0].ID != "ck-1" || !out[0].Completed {
		t.Fatalf("genuine ID should survive: %+v", out[0])
	}
	if out[1].ID != "" {
		t.Fatalf("fabricated ID should be dropped, got %q", out[1].ID)
	}
	if out[2].ID != "" || out[2].Text != "Ship" {
		t.Fatalf("new item mangled: %+v", out[2])
	}
}

func TestBlockingDependencies(t *testing.T) {
	deps := []*models.Task{
		{Title: "Schema migration", Status: models.StatusCompleted},
		{Title: "API design", Status: models.StatusInProgress},
		{Title: "Auth rollout", Status: models.StatusPending},
	}
	blocking := BlockingDependencies(deps)
	if len(blocking) != 2 {
		t.Fatalf("expected 2 blockers, got %v", blocking)
	}
	if blocking[0] != "API design" || blocking[1] != "Auth rollout" {
		t.Fatalf("blocker titles wrong: %v", blocking)
	}
	if got := BlockingDependencies(nil); got != nil {
		t.Fatalf("expected nil for no dependencies, got %v", got)
	}
}

func TestResolveStatusLabel_MappingTable(t *testing.T) {
	task := &models.Task{TodoChecklist: checklist(false)}
	cases := []struct {
		label      StatusLabel
		wantStatus models.TaskStatus
		wantReview models.ReviewStatus
	}{
		{LabelPending, models.StatusPending, models.ReviewNotSubmitted},
		{LabelInProgress, models.StatusInProgress, models.ReviewNotSubmitted},
		{LabelPendingReview, models.StatusCompleted, models.ReviewPendingReview},
		{LabelPendingFinalApproval, models.StatusCompleted, models.ReviewPendingFinalApproval},
		{LabelApproved, models.StatusCompleted, models.ReviewApproved},
		{LabelChangesRequested, models.StatusPending, models.ReviewChangesRequested},
	}
	for _, tc := range cases {
		status, review, err := ResolveStatusLabel(tc.label, task)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.label, err)
		}
		if status != tc.wantStatus || review != tc.wantReview {
			t.Fatalf("%s: got (%s, %s), want (%s, %s)", tc.label, status, review, tc.wantStatus, tc.wantReview)
		}
	}
}

func TestResolveStatusLabel_ChangesRequestedRevertsWithProgress(t *testing.T) {
	task := &models.Task{TodoChecklist: checklist(true, false)}
	status, review, err := ResolveStatusLabel(LabelChangesRequested, task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != models.StatusInProgress || review != models.ReviewChangesRequested {
		t.Fatalf("got (%s, %s)", status, review)
	}
}

func TestResolveStatusLabel_Invalid(t *testing.T) {
	if _, _, err := ResolveStatusLabel("Done", &models.Task{}); err != ErrInvalidStatusLabel {
		t.Fatalf("expected ErrInvalidStatusLabel, got %v", err)
	}
}

func TestCanSetStatusLabel(t *testing.T) {
	task := &models.Task{
		CreatedByID: "creator",
		Reviewers:   []models.User{{ID: "reviewer"}},
		AssignedTo:  []models.User{{ID: "worker"}},
	}
	admin := Actor{ID: "boss", Role: models.RoleAdmin}
	creator := Actor{ID: "creator", Role: models.RoleMember}
	reviewer := Actor{ID: "reviewer", Role: models.RoleMember}
	worker := Actor{ID: "worker", Role: models.RoleMember}

	if !CanSetStatusLabel(task, admin, LabelApproved) {
		t.Fatal("admin should be allowed to approve")
	}
	if !CanSetStatusLabel(task, creator, LabelApproved) {
		t.Fatal("creator should be allowed to approve")
	}
	if CanSetStatusLabel(task, reviewer, LabelApproved) {
		t.Fatal("non-creator reviewer must not set Approved directly")
	}
	if !CanSetStatusLabel(task, reviewer, LabelPendingFinalApproval) {
		t.Fatal("reviewer should be allowed to set Pending Final Approval")
	}
	if CanSetStatusLabel(task, worker, LabelInProgress) {
		t.Fatal("plain assignee must not use direct status updates")
	}
}

func TestCanSubmitForReview(t *testing.T) {
	allowed := []models.ReviewStatus{models.ReviewNotSubmitted, models.ReviewChangesRequested}
	refused := []models.ReviewStatus{models.ReviewPendingReview, models.ReviewPendingFinalApproval, models.ReviewApproved}
	for _, rs := range allowed {
		if !CanSubmitForReview(rs) {
			t.Fatalf("expected submission allowed from %s", rs)
		}
	}
	for _, rs := range refused {
		if CanSubmitForReview(rs) {
			t.Fatalf("expected submission refused from %s", rs)
		}
	}
}
