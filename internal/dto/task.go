package dto

import (
	"time"

	"github.com/yukikurage/personal-task-api/internal/constants"
	"github.com/yukikurage/personal-task-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	User        uint64              `json:"user"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	DueDate     string              `json:"due_date"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
	CompletedAt *time.Time          `json:"completed_at"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CreateTaskRequest is the body of POST /api/tasks.
// Owner, status and completion time are assigned by the server.
type CreateTaskRequest struct {
	Title       string              `json:"title" binding:"required,max=255"`
	Description string              `json:"description"`
	DueDate     string              `json:"due_date" binding:"required,datetime=2006-01-02"`
	Priority    models.TaskPriority `json:"priority" binding:"required,oneof=Low Medium High"`
}

// ReplaceTaskRequest is the body of PUT /api/tasks/:id
type ReplaceTaskRequest struct {
	Title       string              `json:"title" binding:"required,max=255"`
	Description string              `json:"description"`
	DueDate     string              `json:"due_date" binding:"required,datetime=2006-01-02"`
	Priority    models.TaskPriority `json:"priority" binding:"required,oneof=Low Medium High"`
	Status      *models.TaskStatus  `json:"status" binding:"omitempty,oneof=Pending Completed"`
}

// UpdateTaskRequest is the body of PATCH /api/tasks/:id; absent fields are left untouched
type UpdateTaskRequest struct {
	Title       *string              `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string              `json:"description"`
	DueDate     *string              `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Priority    *models.TaskPriority `json:"priority" binding:"omitempty,oneof=Low Medium High"`
	Status      *models.TaskStatus   `json:"status" binding:"omitempty,oneof=Pending Completed"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		User:        task.UserID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate.Format(constants.DateLayout),
		Priority:    task.Priority,
		Status:      task.Status,
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks, never returning nil
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}
