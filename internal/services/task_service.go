package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/personal-task-api/internal/constants"
	"github.com/yukikurage/personal-task-api/internal/metrics"
	"github.com/yukikurage/personal-task-api/internal/models"
	"github.com/yukikurage/personal-task-api/internal/repository"
	"github.com/yukikurage/personal-task-api/internal/utils"
	"gorm.io/gorm"
)

// Target states accepted by TransitionTask
const (
	StateComplete   = "complete"
	StateIncomplete = "incomplete"
)

// TaskService handles task business logic. Every operation acts on behalf of
// a single user and only ever sees that user's tasks.
type TaskService struct {
	taskRepo repository.TaskRepository
	metrics  *metrics.Metrics
	loc      *time.Location
	now      func() time.Time
}

// NewTaskService creates a new TaskService. loc decides which calendar day
// counts as today when due dates are validated.
func NewTaskService(taskRepo repository.TaskRepository, m *metrics.Metrics, loc *time.Location) *TaskService {
	if loc == nil {
		loc = time.UTC
	}
	return &TaskService{
		taskRepo: taskRepo,
		metrics:  m,
		loc:      loc,
		now:      time.Now,
	}
}

// ListTasksInput carries the raw query parameters of a list request
type ListTasksInput struct {
	UserID     uint64
	Status     string
	Priority   string
	Ordering   string
	Pagination *utils.PaginationParams
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	UserID      uint64
	Title       string
	Description string
	DueDate     string
	Priority    models.TaskPriority
}

// ReplaceTaskInput represents a full update; Status is optional
type ReplaceTaskInput struct {
	Title       string
	Description string
	DueDate     string
	Priority    models.TaskPriority
	Status      *models.TaskStatus
}

// UpdateTaskInput represents a partial update; nil fields are left unchanged
type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueDate     *string
	Priority    *models.TaskPriority
	Status      *models.TaskStatus
}

var orderingFields = map[string]repository.TaskOrderField{
	"priority": repository.OrderByPriority,
	"due_date": repository.OrderByDueDate,
	"status":   repository.OrderByStatus,
}

// ParseOrdering parses a comma separated list of fields, each optionally
// prefixed with "-" for descending order.
func ParseOrdering(raw string) ([]repository.TaskOrder, error) {
	var ordering []repository.TaskOrder
	for _, term := range strings.Split(raw, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}

		desc := strings.HasPrefix(term, "-")
		name := strings.TrimPrefix(term, "-")
		field, ok := orderingFields[name]
		if !ok {
			return nil, newValidationError("ordering", fmt.Sprintf("Unknown ordering field %q. Use priority, due_date or status.", name))
		}
		ordering = append(ordering, repository.TaskOrder{Field: field, Descending: desc})
	}
	return ordering, nil
}

// ListTasks returns the caller's tasks and the total number matching the filters
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		UserID:     input.UserID,
		Pagination: input.Pagination,
	}

	if input.Status != "" {
		status := models.TaskStatus(input.Status)
		if !status.Valid() {
			return nil, 0, newValidationError("status", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", input.Status))
		}
		filter.Status = &status
	}

	if input.Priority != "" {
		priority := models.TaskPriority(input.Priority)
		if !priority.Valid() {
			return nil, 0, newValidationError("priority", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", input.Priority))
		}
		filter.Priority = &priority
	}

	ordering, err := ParseOrdering(input.Ordering)
	if err != nil {
		return nil, 0, err
	}
	filter.Ordering = ordering

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns one of the caller's tasks
func (s *TaskService) GetTask(ctx context.Context, userID, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindOwned(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask creates a pending task owned by the caller
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	fields := map[string]string{}

	title := checkTitle(fields, input.Title)
	dueDate := s.checkDueDate(fields, input.DueDate)
	checkPriority(fields, input.Priority)

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	task := &models.Task{
		UserID:      input.UserID,
		Title:       title,
		Description: input.Description,
		DueDate:     dueDate,
		Priority:    input.Priority,
		Status:      models.TaskStatusPending,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.metrics.TaskCreated()
	return task, nil
}

// ReplaceTask overwrites every writable field of a task
func (s *TaskService) ReplaceTask(ctx context.Context, userID, taskID uint64, input ReplaceTaskInput) (*models.Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}

	title := checkTitle(fields, input.Title)
	dueDate := s.checkDueDate(fields, input.DueDate)
	checkPriority(fields, input.Priority)
	if input.Status != nil {
		checkStatus(fields, *input.Status)
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	task.Title = title
	task.Description = input.Description
	task.DueDate = dueDate
	task.Priority = input.Priority
	if input.Status != nil {
		task.Status = *input.Status
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// UpdateTask applies the fields present in input
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}

	if input.Title != nil {
		task.Title = checkTitle(fields, *input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.DueDate != nil {
		task.DueDate = s.checkDueDate(fields, *input.DueDate)
	}
	if input.Priority != nil {
		checkPriority(fields, *input.Priority)
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		checkStatus(fields, *input.Status)
		task.Status = *input.Status
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask removes one of the caller's tasks
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uint64) error {
	if err := s.taskRepo.DeleteOwned(ctx, userID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// TransitionTask marks a task complete or incomplete. The task is looked up
// before the state is checked, so a missing task wins over a bad state.
func (s *TaskService) TransitionTask(ctx context.Context, userID, taskID uint64, state string) (*models.Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	switch state {
	case StateComplete:
		task.MarkCompleted(s.now().UTC())
	case StateIncomplete:
		task.MarkPending()
	default:
		return nil, ErrInvalidTransition
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	s.metrics.TaskTransitioned(state)
	return task, nil
}

// today returns the current calendar date in the service location, as a UTC
// midnight so it compares directly with stored due dates.
func (s *TaskService) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func checkTitle(fields map[string]string, raw string) string {
	title := strings.TrimSpace(raw)
	switch {
	case title == "":
		fields["title"] = "This field may not be blank."
	case utf8.RuneCountInString(title) > constants.MaxTitleLength:
		fields["title"] = fmt.Sprintf("Ensure this field has no more than %d characters.", constants.MaxTitleLength)
	}
	return title
}

func (s *TaskService) checkDueDate(fields map[string]string, raw string) time.Time {
	due, err := time.Parse(constants.DateLayout, raw)
	if err != nil {
		fields["due_date"] = "Date has wrong format. Use YYYY-MM-DD."
		return time.Time{}
	}
	if due.Before(s.today()) {
		fields["due_date"] = "Due date cannot be in the past."
	}
	return due
}

func checkPriority(fields map[string]string, p models.TaskPriority) {
	if !p.Valid() {
		fields["priority"] = fmt.Sprintf("%q is not a valid choice.", string(p))
	}
}

func checkStatus(fields map[string]string, st models.TaskStatus) {
	if !st.Valid() {
		fields["status"] = fmt.Sprintf("%q is not a valid choice.", string(st))
	}
}
