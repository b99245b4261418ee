package workflow

import (
	"testing"

	"project-tracker-api/internal/models"
)

func permissionTask() *models.Task {
	return &models.Task{
		CreatedByID: "creator",
		Reviewers:   []models.User{{ID: "reviewer"}},
		AssignedTo:  []models.User{{ID: "worker"}},
	}
}

func TestCanEditTaskDetails(t *testing.T) {
	task := permissionTask()
	cases := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"admin", Actor{ID: "someone", Role: models.RoleAdmin}, true},
		{"creator", Actor{ID: "creator", Role: models.RoleMember}, true},
		{"reviewer", Actor{ID: "reviewer", Role: models.RoleMember}, true},
		{"assignee", Actor{ID: "worker", Role: models.RoleMember}, false},
		{"stranger", Actor{ID: "other", Role: models.RoleMember}, false},
	}
	for _, tc := range cases {
		if got := CanEditTaskDetails(task, tc.actor); got != tc.want {
			t.Fatalf("%s: CanEditTaskDetails = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanEditChecklist_IncludesAssignees(t *testing.T) {
	task := permissionTask()
	if !CanEditChecklist(task, Actor{ID: "worker", Role: models.RoleMember}) {
		t.Fatal("assignee must be able to tick checklist items")
	}
	if CanEditChecklist(task, Actor{ID: "other", Role: models.RoleMember}) {
		t.Fatal("stranger must not edit the checklist")
	}
}
