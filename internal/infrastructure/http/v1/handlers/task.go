package handlers

import (
	"github.com/gin-gonic/gin"

	"stockward/internal/domain/task"
	"stockward/internal/infrastructure/http/v1/dto"
)

// TaskHandler exposes the fulfillment task API.
type TaskHandler struct {
	*BaseHandler
	service *task.Service
}

// NewTaskHandler creates a task handler.
func NewTaskHandler(base *BaseHandler, service *task.Service) *TaskHandler {
	return &TaskHandler{BaseHandler: base, service: service}
}

// Get handles GET /tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	raw, ok := h.PathID(c)
	if !ok {
		return
	}
	taskID, err := dto.ParseID("id", raw)
	if err != nil {
		h.Error(c, err)
		return
	}

	t, err := h.service.Get(ctx, taskID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// List handles GET /tasks
func (h *TaskHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListTasksQuery
	if !h.BindQuery(c, &query) {
		return
	}

	state, err := query.StateFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	tasks, err := h.service.ListByAssignee(ctx, query.AssigneeID, state, limit, query.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: tasks, Limit: limit, Offset: query.Offset})
}

// Complete handles POST /tasks/:id/complete
func (h *TaskHandler) Complete(c *gin.Context) {
	ctx := c.Request.Context()

	raw, ok := h.PathID(c)
	if !ok {
		return
	}
	taskID, err := dto.ParseID("id", raw)
	if err != nil {
		h.Error(c, err)
		return
	}

	t, err := h.service.Complete(ctx, taskID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// Dashboard handles GET /tasks/dashboard
func (h *TaskHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	counts, err := h.service.Dashboard(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, counts)
}
