package repository

import (
	"context"

	"github.com/yukikurage/personal-task-api/internal/models"
	"github.com/yukikurage/personal-task-api/internal/utils"
)

// TaskRepository defines the interface for task data access.
// Every lookup is scoped to an owner, so a task belonging to someone else is
// reported as gorm.ErrRecordNotFound.
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindOwned finds a task by ID among the tasks of userID
	FindOwned(ctx context.Context, userID, id uint64) (*models.Task, error)

	// List retrieves the tasks of filter.UserID
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update saves every field of a task
	Update(ctx context.Context, task *models.Task) error

	// DeleteOwned soft deletes a task of userID
	DeleteOwned(ctx context.Context, userID, id uint64) error
}

// TaskOrderField is a column tasks can be ordered by
type TaskOrderField string

const (
	OrderByPriority TaskOrderField = "priority"
	OrderByDueDate  TaskOrderField = "due_date"
	OrderByStatus   TaskOrderField = "status"
)

// TaskOrder is one ordering term
type TaskOrder struct {
	Field      TaskOrderField
	Descending bool
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	UserID   uint64
	Status   *models.TaskStatus
	Priority *models.TaskPriority
	Ordering []TaskOrder
	// Pagination is applied only when set
	Pagination *utils.PaginationParams
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// List returns all users ordered by ID
	List(ctx context.Context) ([]models.User, error)

	// Update saves every field of a user
	Update(ctx context.Context, user *models.User) error

	// Delete permanently removes a user and all of their tasks
	Delete(ctx context.Context, id uint64) error
}
