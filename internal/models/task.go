package models

import "time"

// TaskStatus represents the assignee-facing work state of a task
type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

// ReviewStatus represents the review-facing state of a task. It is a
// separate axis from TaskStatus: a task can be Completed while still
// waiting on reviewers.
type ReviewStatus string

const (
	ReviewNotSubmitted         ReviewStatus = "NotSubmitted"
	ReviewPendingReview        ReviewStatus = "PendingReview"
	ReviewPendingFinalApproval ReviewStatus = "PendingFinalApproval"
	ReviewChangesRequested     ReviewStatus = "ChangesRequested"
	ReviewApproved             ReviewStatus = "Approved"
)

// ReviewDecision is the outcome a reviewer or the creator submits
type ReviewDecision string

const (
	DecisionApproved         ReviewDecision = "Approved"
	DecisionChangesRequested ReviewDecision = "ChangesRequested"
)

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "High"
	PriorityMedium TaskPriority = "Medium"
	PriorityLow    TaskPriority = "Low"
)

// ChecklistItem is a single todo entry on a task's checklist
type ChecklistItem struct {
	ID        string `json:"id" gorm:"primaryKey"`
	TaskID    string `json:"-" gorm:"column:task_id;index;not null"`
	Text      string `json:"text" gorm:"not null"`
	Completed bool   `json:"completed" gorm:"not null;default:false"`
	Position  int    `json:"-" gorm:"column:position"`
}

func (ChecklistItem) TableName() string {
	return "checklist_items"
}

// Remark is an admin-authored note on a task
type Remark struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	TaskID    string    `json:"-" gorm:"column:task_id;index;not null"`
	Text      string    `json:"text" gorm:"not null"`
	MadeByID  string    `json:"madeBy" gorm:"column:made_by_id"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Remark) TableName() string {
	return "remarks"
}

// Comment is a discussion entry visible to all task stakeholders
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	TaskID    string    `json:"-" gorm:"column:task_id;index;not null"`
	Text      string    `json:"text" gorm:"not null"`
	MadeByID  string    `json:"madeBy" gorm:"column:made_by_id"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Comment) TableName() string {
	return "comments"
}

// RevisionEntry records one changes-requested episode on a task
type RevisionEntry struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	TaskID    string    `json:"-" gorm:"column:task_id;index;not null"`
	Comment   string    `json:"comment" gorm:"not null"`
	MadeByID  string    `json:"madeBy" gorm:"column:made_by_id"`
	CreatedAt time.Time `json:"createdAt"`
}

func (RevisionEntry) TableName() string {
	return "revision_entries"
}

// Task represents a task in the system
type Task struct {
	ID              string          `json:"id" gorm:"primaryKey"`
	ProjectID       string          `json:"projectId" gorm:"column:project_id;index;not null"`
	Title           string          `json:"title" gorm:"not null"`
	Description     string          `json:"description"`
	Priority        TaskPriority    `json:"priority" gorm:"default:'Medium'"`
	Status          TaskStatus      `json:"status" gorm:"not null;default:'Pending'"`
	ReviewStatus    ReviewStatus    `json:"reviewStatus" gorm:"column:review_status;not null;default:'NotSubmitted'"`
	Progress        int             `json:"progress" gorm:"default:0"`
	RevisionCount   int             `json:"revisionCount" gorm:"column:revision_count;default:0"`
	StartDate       *time.Time      `json:"startDate" gorm:"column:start_date"`
	DueDate         *time.Time      `json:"dueDate" gorm:"column:due_date"`
	EstimatedHours  float64         `json:"estimatedHours" gorm:"column:estimated_hours"`
	CreatedByID     string          `json:"createdBy" gorm:"column:created_by_id;index"`
	AssignedTo      []User          `json:"assignedTo" gorm:"many2many:task_assignees"`
	Reviewers       []User          `json:"reviewers" gorm:"many2many:task_reviewers"`
	Dependencies    []*Task         `json:"dependencies" gorm:"many2many:task_dependencies;joinForeignKey:task_id;joinReferences:depends_on_id"`
	TodoChecklist   []ChecklistItem `json:"todoChecklist" gorm:"foreignKey:TaskID"`
	Remarks         []Remark        `json:"remarks" gorm:"foreignKey:TaskID"`
	Comments        []Comment       `json:"comments" gorm:"foreignKey:TaskID"`
	RevisionHistory []RevisionEntry `json:"revisionHistory" gorm:"foreignKey:TaskID"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// IsAssignedTo reports whether the user is in the task's assignee set
func (t *Task) IsAssignedTo(userID string) bool {
	for _, u := range t.AssignedTo {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// HasReviewer reports whether the user is in the task's reviewer set
func (t *Task) HasReviewer(userID string) bool {
	for _, u := range t.Reviewers {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// IsCreatedBy reports whether the user created the task
func (t *Task) IsCreatedBy(userID string) bool {
	return t.CreatedByID == userID
}
