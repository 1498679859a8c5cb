package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "Pending"
	TaskStatusCompleted TaskStatus = "Completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	UserID      uint64         `gorm:"not null;index:idx_tasks_user_due_date,priority:1;index:idx_tasks_user_status,priority:1" json:"user_id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	DueDate     time.Time      `gorm:"type:date;not null;index:idx_tasks_user_due_date,priority:2" json:"due_date"`
	Priority    TaskPriority   `gorm:"type:varchar(20);not null" json:"priority"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'Pending';index:idx_tasks_user_status,priority:2" json:"status"`
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// MarkCompleted moves the task to Completed, stamping completion at now.
func (t *Task) MarkCompleted(now time.Time) {
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
}

// MarkPending moves the task back to Pending and clears the completion time.
func (t *Task) MarkPending() {
	t.Status = TaskStatusPending
	t.CompletedAt = nil
}

// syncCompletion keeps CompletedAt non-nil exactly when the task is Completed.
func (t *Task) syncCompletion(now time.Time) {
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	switch t.Status {
	case TaskStatusCompleted:
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	default:
		t.CompletedAt = nil
	}
}

// BeforeSave runs on every create and save so that no write path can persist
// a status without the matching completion timestamp.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	t.syncCompletion(tx.NowFunc())
	return nil
}
