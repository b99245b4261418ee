package models

import "time"

// Project groups tasks and tracks its member set. Membership grows by
// union with task assignees and is never shrunk automatically.
type Project struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner" gorm:"column:owner_id;index"`
	Members     []User    `json:"members" gorm:"many2many:project_members"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Project Model
func (Project) TableName() string {
	return "projects"
}

// HasMember reports whether the user is already in the member set
func (p *Project) HasMember(userID string) bool {
	for _, u := range p.Members {
		if u.ID == userID {
			return true
		}
	}
	return false
}
