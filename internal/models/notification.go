package models

import "time"

// Notification is a persisted per-user notification record. Delivery
// over the realtime hub is best-effort; the row is the durable copy.
type Notification struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	RecipientID string    `json:"recipient" gorm:"column:recipient_id;index;not null"`
	SenderID    string    `json:"sender" gorm:"column:sender_id"`
	Message     string    `json:"message" gorm:"not null"`
	Link        string    `json:"link"`
	Read        bool      `json:"read" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the table name for Notification Model
func (Notification) TableName() string {
	return "notifications"
}
