package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"project-tracker-api/internal/database"
	"project-tracker-api/internal/models"
	"project-tracker-api/internal/realtime"
	"project-tracker-api/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChecklistItemInput is a checklist entry as sent by clients. The ID
// is optional and only honored when it matches a persisted item.
type ChecklistItemInput struct {
	ID        string `json:"id"`
	Text      string `json:"text" binding:"required"`
	Completed bool   `json:"completed"`
}

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Project        string               `json:"project" binding:"required"`
	Title          string               `json:"title" binding:"required"`
	Description    string               `json:"description"`
	Priority       models.TaskPriority  `json:"priority"`
	StartDate      *time.Time           `json:"startDate"`
	DueDate        *time.Time           `json:"dueDate"`
	EstimatedHours float64              `json:"estimatedHours"`
	AssignedTo     []string             `json:"assignedTo" binding:"required"`
	Reviewers      []string             `json:"reviewers"`
	Dependencies   []string             `json:"dependencies"`
	TodoChecklist  []ChecklistItemInput `json:"todoChecklist"`
}

// UpdateTaskRequest represents the request payload for updating a task
type UpdateTaskRequest struct {
	Title          *string               `json:"title"`
	Description    *string               `json:"description"`
	Priority       *models.TaskPriority  `json:"priority"`
	StartDate      *time.Time            `json:"startDate"`
	DueDate        *time.Time            `json:"dueDate"`
	EstimatedHours *float64              `json:"estimatedHours"`
	AssignedTo     *[]string             `json:"assignedTo"`
	Reviewers      *[]string             `json:"reviewers"`
	Dependencies   *[]string             `json:"dependencies"`
	TodoChecklist  *[]ChecklistItemInput `json:"todoChecklist"`
}

// UpdateChecklistRequest carries a full replacement checklist
type UpdateChecklistRequest struct {
	TodoChecklist []ChecklistItemInput `json:"todoChecklist" binding:"required"`
}

// UpdateTaskStatusRequest represents a minimal request to change status
type UpdateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

// loadTask fetches a task with every association the lifecycle engine
// reads: assignees, reviewers, dependencies, checklist and histories.
func loadTask(id string) (*models.Task, error) {
	var task models.Task
	err := database.GetDB().
		Preload("AssignedTo").
		Preload("Reviewers").
		Preload("Dependencies").
		Preload("TodoChecklist", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Remarks").
		Preload("Comments").
		Preload("RevisionHistory").
		First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func respondTaskLoadError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	} else {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
	}
}

// usersByIDs resolves user references and fails when any is unknown
func usersByIDs(ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := database.GetDB().Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) != len(ids) {
		return nil, fmt.Errorf("unknown user reference")
	}
	return users, nil
}

func tasksByIDs(ids []string) ([]*models.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tasks []*models.Task
	if err := database.GetDB().Where("id IN ?", ids).Find(&tasks).Error; err != nil {
		return nil, err
	}
	if len(tasks) != len(ids) {
		return nil, fmt.Errorf("unknown task reference")
	}
	return tasks, nil
}

// addAssigneesToProjectMembers grows the project member set by union
// with the task's assignees. Failures are logged, never surfaced: the
// task operation already succeeded.
func addAssigneesToProjectMembers(projectID string, assignees []models.User) {
	if projectID == "" || len(assignees) == 0 {
		return
	}
	var project models.Project
	if err := database.GetDB().Preload("Members").First(&project, "id = ?", projectID).Error; err != nil {
		log.Println("project member union: load failed:", err)
		return
	}
	var missing []models.User
	for _, u := range assignees {
		if !project.HasMember(u.ID) {
			missing = append(missing, models.User{ID: u.ID})
		}
	}
	if len(missing) == 0 {
		return
	}
	if err := database.GetDB().Model(&project).Association("Members").Append(missing); err != nil {
		log.Println("project member union: append failed:", err)
	}
}

// notifyAssignees persists a notification per assignee and pushes it
// over the realtime hub. Fire-and-forget relative to the task write.
func notifyAssignees(task *models.Task, senderID, senderName string) {
	hub := realtime.GetHub()
	for _, u := range task.AssignedTo {
		notification := models.Notification{
			ID:          uuid.NewString(),
			RecipientID: u.ID,
			SenderID:    senderID,
			Message:     fmt.Sprintf("%s assigned you a new task: %q", senderName, task.Title),
			Link:        "/tasks/" + task.ID,
		}
		if err := database.GetDB().Create(&notification).Error; err != nil {
			log.Println("failed to persist notification:", err)
			continue
		}
		hub.BroadcastEvent([]string{u.ID}, map[string]any{
			"type":         "notification",
			"notification": notification,
		})
	}
}

// CreateTask handles POST /api/tasks (admin only)
func CreateTask(c *gin.Context) {
	userID := c.GetString("user_id")
	userName := c.GetString("user_name")

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.AssignedTo) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assignedTo must be a non-empty array of user ids"})
		return
	}

	var project models.Project
	if err := database.GetDB().First(&project, "id = ?", req.Project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project does not exist"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate project"})
		}
		return
	}

	assignees, err := usersByIDs(req.AssignedTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assignedTo contains an unknown user"})
		return
	}
	reviewers, err := usersByIDs(req.Reviewers)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reviewers contains an unknown user"})
		return
	}
	dependencies, err := tasksByIDs(req.Dependencies)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dependencies contains an unknown task"})
		return
	}

	// Creator becomes the sole reviewer by default so every assigned
	// task has someone on the review hook
	if len(reviewers) == 0 && len(assignees) > 0 {
		reviewers = []models.User{{ID: userID}}
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	checklist := make([]models.ChecklistItem, len(req.TodoChecklist))
	for i, item := range req.TodoChecklist {
		checklist[i] = models.ChecklistItem{
			ID:        uuid.NewString(),
			Text:      item.Text,
			Completed: item.Completed,
			Position:  i,
		}
	}

	task := models.Task{
		ID:             uuid.NewString(),
		ProjectID:      project.ID,
		Title:          req.Title,
		Description:    req.Description,
		Priority:       priority,
		Status:         models.StatusPending,
		ReviewStatus:   models.ReviewNotSubmitted,
		Progress:       workflow.Progress(checklist),
		StartDate:      req.StartDate,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		CreatedByID:    userID,
		AssignedTo:     assignees,
		Reviewers:      reviewers,
		Dependencies:   dependencies,
		TodoChecklist:  checklist,
	}

	if err := database.GetDB().Create(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	// Side channels: never fail the create
	addAssigneesToProjectMembers(task.ProjectID, task.AssignedTo)
	notifyAssignees(&task, userID, userName)

	c.JSON(http.StatusCreated, gin.H{"message": "Task created successfully", "task": task})
}

// startOfDay returns midnight of t's calendar day in t's location.
// Truncating by 24h would cut at the UTC day boundary instead, which
// shifts "overdue" by the server's UTC offset.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// assignedScope narrows a task query to tasks assigned to the user
func assignedScope(db *gorm.DB, userID string) *gorm.DB {
	return db.Where("tasks.id IN (SELECT task_id FROM task_assignees WHERE user_id = ?)", userID)
}

// taskScope builds the base filter shared by the list endpoint and its
// summary counts: project, and either the caller's assignments or an
// admin-chosen assignee.
func taskScope(c *gin.Context, actor workflow.Actor) func(db *gorm.DB) *gorm.DB {
	projectID := c.Query("projectId")
	assignedUserID := c.Query("assignedUserId")
	return func(db *gorm.DB) *gorm.DB {
		q := db
		if projectID != "" && projectID != "all" {
			q = q.Where("project_id = ?", projectID)
		}
		if actor.IsAdmin() {
			if assignedUserID != "" && assignedUserID != "all" {
				q = assignedScope(q, assignedUserID)
			}
		} else {
			q = assignedScope(q, actor.ID)
		}
		return q
	}
}

// GetTasks handles GET /api/tasks
// Admins see everything; members only tasks assigned to them. The
// status query param spans both axes plus the "overdue" and
// "awaiting my approval" pseudo-filters.
func GetTasks(c *gin.Context) {
	actor := actorFromContext(c)
	scope := taskScope(c, actor)
	db := database.GetDB()

	today := startOfDay(time.Now())
	query := scope(db.Model(&models.Task{}))

	switch strings.ToLower(c.Query("status")) {
	case "", "all":
	case "awaiting my approval":
		query = query.Where(
			"(review_status = ? AND id IN (SELECT task_id FROM task_reviewers WHERE user_id = ?)) OR (review_status = ? AND created_by_id = ?)",
			models.ReviewPendingReview, actor.ID, models.ReviewPendingFinalApproval, actor.ID,
		)
	case "overdue":
		query = query.Where("status <> ? AND due_date < ?", models.StatusCompleted, today)
	case "pending review":
		query = query.Where("review_status = ?", models.ReviewPendingReview)
	case "pending final approval":
		query = query.Where("review_status = ?", models.ReviewPendingFinalApproval)
	case "changes requested":
		query = query.Where("review_status = ?", models.ReviewChangesRequested)
	case "approved":
		query = query.Where("review_status = ?", models.ReviewApproved)
	default:
		query = query.Where("LOWER(status) = LOWER(?)", c.Query("status"))
	}

	if d := c.Query("dueDate"); d != "" {
		if day, err := time.Parse("2006-01-02", d); err == nil {
			query = query.Where("due_date >= ? AND due_date < ?", day, day.AddDate(0, 0, 1))
		}
	}
	if d := c.Query("createdDate"); d != "" {
		if day, err := time.Parse("2006-01-02", d); err == nil {
			query = query.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
		}
	}

	var tasks []models.Task
	if err := query.
		Preload("AssignedTo").
		Preload("Reviewers").
		Preload("TodoChecklist", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("created_at desc").
		Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	summary, err := statusSummary(scope, actor, today)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":         tasks,
		"count":         len(tasks),
		"statusSummary": summary,
	})
}

// statusSummary computes grouped counts over the scoped task set for
// both axes, plus overdue and the caller's action-item count.
func statusSummary(scope func(db *gorm.DB) *gorm.DB, actor workflow.Actor, today time.Time) (gin.H, error) {
	db := database.GetDB()
	base := func() *gorm.DB { return scope(db.Model(&models.Task{})) }

	count := func(q *gorm.DB) (int64, error) {
		var n int64
		err := q.Count(&n).Error
		return n, err
	}

	all, err := count(base())
	if err != nil {
		return nil, err
	}

	byStatus := make(map[models.TaskStatus]int64)
	for _, s := range []models.TaskStatus{models.StatusPending, models.StatusInProgress, models.StatusCompleted} {
		n, err := count(base().Where("status = ?", s))
		if err != nil {
			return nil, err
		}
		byStatus[s] = n
	}

	byReview := make(map[models.ReviewStatus]int64)
	for _, rs := range []models.ReviewStatus{models.ReviewPendingReview, models.ReviewPendingFinalApproval, models.ReviewChangesRequested, models.ReviewApproved} {
		n, err := count(base().Where("review_status = ?", rs))
		if err != nil {
			return nil, err
		}
		byReview[rs] = n
	}

	overdue, err := count(base().Where("status <> ? AND due_date < ?", models.StatusCompleted, today))
	if err != nil {
		return nil, err
	}

	awaitingMine, err := count(base().Where(
		"(review_status = ? AND id IN (SELECT task_id FROM task_reviewers WHERE user_id = ?)) OR (review_status = ? AND created_by_id = ?)",
		models.ReviewPendingReview, actor.ID, models.ReviewPendingFinalApproval, actor.ID,
	))
	if err != nil {
		return nil, err
	}

	return gin.H{
		"all":                       all,
		"pendingTasks":              byStatus[models.StatusPending],
		"inProgressTasks":           byStatus[models.StatusInProgress],
		"completedTasks":            byStatus[models.StatusCompleted],
		"overdueTasks":              overdue,
		"pendingReviewTasks":        byReview[models.ReviewPendingReview],
		"pendingFinalApprovalTasks": byReview[models.ReviewPendingFinalApproval],
		"changesRequestedTasks":     byReview[models.ReviewChangesRequested],
		"approvedTasks":             byReview[models.ReviewApproved],
		"awaitingMyApprovalTasks":   awaitingMine,
	}, nil
}

// GetTaskByID handles GET /api/tasks/:id
func GetTaskByID(c *gin.Context) {
	task, err := loadTask(c.Param("taskId"))
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask handles PUT /api/tasks/:id
// Structural edits are gated by CanEditTaskDetails; assignee changes
// flow back into the project's member set.
func UpdateTask(c *gin.Context) {
	task, err := loadTask(c.Param("taskId"))
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}

	actor := actorFromContext(c)
	if !workflow.CanEditTaskDetails(task, actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: you are not an admin, the creator, or a reviewer of this task"})
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.EstimatedHours != nil {
		updates["estimated_hours"] = *req.EstimatedHours
	}

	var assignees []models.User
	if req.AssignedTo != nil {
		if len(*req.AssignedTo) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "assignedTo must be a non-empty array"})
			return
		}
		assignees, err = usersByIDs(*req.AssignedTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "assignedTo contains an unknown user"})
			return
		}
	}
	var reviewers []models.User
	if req.Reviewers != nil {
		reviewers, err = usersByIDs(*req.Reviewers)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reviewers contains an unknown user"})
			return
		}
	}
	var dependencies []*models.Task
	if req.Dependencies != nil {
		dependencies, err = tasksByIDs(*req.Dependencies)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dependencies contains an unknown task"})
			return
		}
		for _, dep := range dependencies {
			if dep.ID == task.ID {
				c.JSON(http.StatusBadRequest, gin.H{"error": "a task cannot depend on itself"})
				return
			}
		}
	}

	var sanitized []models.ChecklistItem
	if req.TodoChecklist != nil {
		incoming := make([]models.ChecklistItem, len(*req.TodoChecklist))
		for i, item := range *req.TodoChecklist {
			incoming[i] = models.ChecklistItem{ID: item.ID, Text: item.Text, Completed: item.Completed}
		}
		sanitized = workflow.SanitizeChecklist(incoming, task.TodoChecklist)
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(task).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.AssignedTo != nil {
			if err := tx.Model(task).Association("AssignedTo").Replace(assignees); err != nil {
				return err
			}
		}
		if req.Reviewers != nil {
			if err := tx.Model(task).Association("Reviewers").Replace(reviewers); err != nil {
				return err
			}
		}
		if req.Dependencies != nil {
			if err := tx.Model(task).Association("Dependencies").Replace(dependencies); err != nil {
				return err
			}
		}
		if req.TodoChecklist != nil {
			return replaceChecklist(tx, task.ID, sanitized)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	if req.AssignedTo != nil {
		addAssigneesToProjectMembers(task.ProjectID, assignees)
	}

	updated, err := loadTask(task.ID)
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task updated successfully", "task": updated})
}

// replaceChecklist swaps the task's checklist rows for the sanitized
// set, assigning fresh IDs to new items and preserving order.
func replaceChecklist(tx *gorm.DB, taskID string, items []models.ChecklistItem) error {
	if err := tx.Where("task_id = ?", taskID).Delete(&models.ChecklistItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		items[i].TaskID = taskID
		items[i].Position = i
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

// DeleteTask handles DELETE /api/tasks/:id (admin only, hard delete)
func DeleteTask(c *gin.Context) {
	taskID := c.Param("taskId")
	var task models.Task
	if err := database.GetDB().First(&task, "id = ?", taskID).Error; err != nil {
		respondTaskLoadError(c, err)
		return
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM task_assignees WHERE task_id = ?", taskID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM task_reviewers WHERE task_id = ?", taskID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM task_dependencies WHERE task_id = ? OR depends_on_id = ?", taskID, taskID).Error; err != nil {
			return err
		}
		for _, child := range []any{
			&models.ChecklistItem{}, &models.Remark{}, &models.Comment{},
			&models.RevisionEntry{}, &models.TimeLog{},
		} {
			if err := tx.Where("task_id = ?", taskID).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&task).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully", "id": taskID})
}

// UpdateTaskChecklist handles PUT /api/tasks/:id/todo
// The checklist drives the derived (progress, status) pair; forward
// movement is refused while any dependency is incomplete, leaving the
// stored task untouched.
func UpdateTaskChecklist(c *gin.Context) {
	task, err := loadTask(c.Param("taskId"))
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}

	var req UpdateChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incoming := make([]models.ChecklistItem, len(req.TodoChecklist))
	for i, item := range req.TodoChecklist {
		incoming[i] = models.ChecklistItem{ID: item.ID, Text: item.Text, Completed: item.Completed}
	}
	sanitized := workflow.SanitizeChecklist(incoming, task.TodoChecklist)

	actor := actorFromContext(c)
	if !workflow.CanEditChecklist(task, actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: you are not assigned to this task or a stakeholder of it"})
		return
	}

	progress := workflow.Progress(sanitized)
	newStatus := workflow.StatusForProgress(progress)

	if newStatus == models.StatusInProgress || newStatus == models.StatusCompleted {
		if blocking := workflow.BlockingDependencies(task.Dependencies); len(blocking) > 0 {
			c.JSON(http.StatusConflict, gin.H{
				"error":     fmt.Sprintf("Cannot update this task. It is blocked by: %s", strings.Join(blocking, ", ")),
				"blockedBy": blocking,
			})
			return
		}
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := replaceChecklist(tx, task.ID, sanitized); err != nil {
			return err
		}
		return tx.Model(task).Updates(map[string]any{
			"progress": progress,
			"status":   newStatus,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update checklist"})
		return
	}

	updated, err := loadTask(task.ID)
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task checklist updated", "task": updated})
}

// UpdateTaskStatus handles PUT /api/tasks/:id/status
// Assignee/admin shortcut for moving the work status; Completed
// force-completes the checklist. Forward moves respect the dependency
// gate.
func UpdateTaskStatus(c *gin.Context) {
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

	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.Status {
	case models.StatusPending, models.StatusInProgress, models.StatusCompleted:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of Pending, In Progress, Completed"})
		return
	}

	if req.Status != models.StatusPending {
		if blocking := workflow.BlockingDependencies(task.Dependencies); len(blocking) > 0 {
			c.JSON(http.StatusConflict, gin.H{
				"error":     fmt.Sprintf("Cannot start this task. It is blocked by: %s", strings.Join(blocking, ", ")),
				"blockedBy": blocking,
			})
			return
		}
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": req.Status}
		if req.Status == models.StatusCompleted {
			if err := tx.Model(&models.ChecklistItem{}).Where("task_id = ?", task.ID).Update("completed", true).Error; err != nil {
				return err
			}
			updates["progress"] = 100
		}
		return tx.Model(task).Updates(updates).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	updated, err := loadTask(task.ID)
	if err != nil {
		respondTaskLoadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task status updated", "task": updated})
}

// GetTasksForCalendar handles GET /api/tasks/calendar
// Returns the month's tasks as calendar events, colored by status.
func GetTasksForCalendar(c *gin.Context) {
	actor := actorFromContext(c)

	month, errM := strconv.Atoi(c.Query("month"))
	year, errY := strconv.Atoi(c.Query("year"))
	if errM != nil || errY != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month and year are required"})
		return
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	query := database.GetDB().Model(&models.Task{}).
		Where("due_date >= ? AND due_date < ?", start, end)

	userID := c.Query("userId")
	if actor.IsAdmin() {
		if userID != "" && userID != "all" {
			query = assignedScope(query, userID)
		}
	} else {
		query = assignedScope(query, actor.ID)
	}

	var tasks []models.Task
	if err := query.Select("id", "title", "due_date", "status").Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	events := make([]gin.H, 0, len(tasks))
	for _, t := range tasks {
		color := "#f87171"
		switch t.Status {
		case models.StatusCompleted:
			color = "#a3e635"
		case models.StatusInProgress:
			color = "#60a5fa"
		}
		events = append(events, gin.H{
			"id":        t.ID,
			"text":      t.Title,
			"start":     t.DueDate,
			"end":       t.DueDate,
			"backColor": color,
		})
	}

	c.JSON(http.StatusOK, events)
}
