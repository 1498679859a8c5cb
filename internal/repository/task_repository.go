package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/personal-task-api/internal/database"
	"github.com/yukikurage/personal-task-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Rank expressions give priority and status their natural order rather than
// the alphabetical order of their stored names.
var orderExpressions = map[TaskOrderField]string{
	OrderByPriority: "CASE tasks.priority WHEN 'Low' THEN 0 WHEN 'Medium' THEN 1 WHEN 'High' THEN 2 ELSE 3 END",
	OrderByDueDate:  "tasks.due_date",
	OrderByStatus:   "CASE tasks.status WHEN 'Pending' THEN 0 WHEN 'Completed' THEN 1 ELSE 2 END",
}

// DefaultTaskOrdering is applied when a list request names no ordering
var DefaultTaskOrdering = []TaskOrder{{Field: OrderByDueDate}}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindOwned finds a task by ID among the tasks of userID
func (r *GormTaskRepository) FindOwned(ctx context.Context, userID, id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(userID)).
		First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering, ordering and optional pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{}).Scopes(database.OwnedBy(filter.UserID))

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	ordering := filter.Ordering
	if len(ordering) == 0 {
		ordering = DefaultTaskOrdering
	}

	listQuery := query
	for _, o := range ordering {
		expr, ok := orderExpressions[o.Field]
		if !ok {
			return nil, 0, fmt.Errorf("unsupported ordering field %q", o.Field)
		}
		if o.Descending {
			expr += " DESC"
		} else {
			expr += " ASC"
		}
		listQuery = listQuery.Order(expr)
	}
	listQuery = listQuery.Order("tasks.id ASC")

	if filter.Pagination != nil {
		listQuery = listQuery.Scopes(database.Paginate(*filter.Pagination))
	}

	tasks := []models.Task{}
	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update saves every field of a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// DeleteOwned soft deletes a task of userID
func (r *GormTaskRepository) DeleteOwned(ctx context.Context, userID, id uint64) error {
	result := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(userID)).
		Delete(&models.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
