package workflow

import "project-tracker-api/internal/models"

// Actor is the already-authenticated identity an operation runs as
type Actor struct {
	ID   string
	Role models.UserRole
}

// IsAdmin reports whether the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanEditTaskDetails gates structural edits (title, description,
// assignees, reviewers, dependencies, dates). Only admins, the
// creator, or a reviewer may change the shape of a task.
func CanEditTaskDetails(task *models.Task, actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	if task.IsCreatedBy(actor.ID) {
		return true
	}
	return task.HasReviewer(actor.ID)
}

// CanEditChecklist is the broader gate for ticking checklist items:
// anyone who can edit details, plus the assignees doing the work.
func CanEditChecklist(task *models.Task, actor Actor) bool {
	if CanEditTaskDetails(task, actor) {
		return true
	}
	return task.IsAssignedTo(actor.ID)
}
