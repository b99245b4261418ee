package models

import "time"

// TimeLog records a work interval by one user on one task. A log with
// a nil EndTime is an open (running) timer; the partial unique index
// keeps at most one open log per (task, user) at the storage layer.
type TimeLog struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	TaskID     string     `json:"task" gorm:"column:task_id;index;not null;uniqueIndex:idx_open_timer,where:end_time IS NULL"`
	UserID     string     `json:"user" gorm:"column:user_id;index;not null;uniqueIndex:idx_open_timer,where:end_time IS NULL"`
	StartTime  time.Time  `json:"startTime" gorm:"column:start_time;not null"`
	EndTime    *time.Time `json:"endTime" gorm:"column:end_time"`
	DurationMs int64      `json:"duration" gorm:"column:duration_ms;default:0"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// TableName specifies the table name for TimeLog Model
func (TimeLog) TableName() string {
	return "time_logs"
}
