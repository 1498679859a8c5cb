package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/personal-task-api/internal/constants"
	"github.com/yukikurage/personal-task-api/internal/dto"
	apierrors "github.com/yukikurage/personal-task-api/internal/errors"
	"github.com/yukikurage/personal-task-api/internal/services"
	"github.com/yukikurage/personal-task-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the current user's tasks.
// Supports status and priority filters, ordering, and optional page/limit.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	input := services.ListTasksInput{
		UserID:   p.UserID,
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Ordering: c.Query("ordering"),
	}
	if params, paginate := utils.GetPaginationParams(c); paginate {
		input.Pagination = &params
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header(constants.HeaderTotalCount, strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// CreateTask creates a new task owned by the current user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		UserID:      p.UserID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), p.UserID, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// ReplaceTask handles PUT: every writable field except status is required
func (h *TaskHandler) ReplaceTask(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	// a missing or foreign task answers 404 even when the body is invalid
	if _, err := h.taskService.GetTask(c.Request.Context(), p.UserID, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	var req dto.ReplaceTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	task, err := h.taskService.ReplaceTask(c.Request.Context(), p.UserID, taskID, services.ReplaceTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Status:      req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask handles PATCH: only the fields present are changed
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if _, err := h.taskService.GetTask(c.Request.Context(), p.UserID, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	var req dto.UpdateTaskRequest
	if !bindPartial(c, &req) {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), p.UserID, taskID, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Status:      req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), p.UserID, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// TransitionTask marks a task complete or incomplete and returns it in full
func (h *TaskHandler) TransitionTask(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.TransitionTask(c.Request.Context(), p.UserID, taskID, c.Param("state"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}
