package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/namviet/fieldops/api/transport"
	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/pkg/httpcontext"
	"github.com/namviet/fieldops/repository"
	tasksUC "github.com/namviet/fieldops/usecase/tasks"
)

type TaskHandler struct {
	baseHandler
	uc *tasksUC.UseCase
}

func NewTaskHandler(uc *tasksUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	filter := repository.TaskFilter{
		AssigneeID: string(ctx.QueryArgs().Peek("assignee_id")),
		Status:     string(ctx.QueryArgs().Peek("status")),
		CustomerID: string(ctx.QueryArgs().Peek("customer_id")),
		Limit:      parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		Offset:     parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetTask(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	task, ok := h.parseTask(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	task, ok := h.parseTask(ctx)
	if !ok {
		return
	}

	// The path parameter decides which task is edited; a body-supplied
	// id is ignored.
	if id, ok := ctx.UserValue("id").(string); ok && id != "" {
		task.ID = id
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Schedule task (finalize preparation)
// @Tags tasks
// @Router /api/v1/tasks/{id}/schedule [post]
func (h *TaskHandler) ScheduleTask(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, func(stdCtx context.Context, id, userID string) (*domain.Task, error) {
		return h.uc.ScheduleTask(stdCtx, id, userID)
	})
}

// @Summary Put task on hold
// @Tags tasks
// @Router /api/v1/tasks/{id}/hold [post]
func (h *TaskHandler) HoldTask(ctx *fasthttp.RequestCtx) {
	var req transport.HoldRequest
	_ = json.Unmarshal(ctx.PostBody(), &req)

	h.transition(ctx, func(stdCtx context.Context, id, userID string) (*domain.Task, error) {
		return h.uc.HoldTask(stdCtx, id, userID, req.Reason)
	})
}

// @Summary Resume held task
// @Tags tasks
// @Router /api/v1/tasks/{id}/resume [post]
func (h *TaskHandler) ResumeTask(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, func(stdCtx context.Context, id, userID string) (*domain.Task, error) {
		return h.uc.ResumeTask(stdCtx, id, userID)
	})
}

func (h *TaskHandler) transition(ctx *fasthttp.RequestCtx, op func(stdCtx context.Context, id, userID string) (*domain.Task, error)) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := op(stdCtx, id, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

func (h *TaskHandler) parseTask(ctx *fasthttp.RequestCtx) (*domain.Task, bool) {
	var req transport.TaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return nil, false
	}

	task := &domain.Task{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		AssigneeIDs: req.AssigneeIDs,
	}
	if req.CustomerID != "" {
		task.CustomerID = &req.CustomerID
	}
	if req.LocationID != "" {
		task.LocationID = &req.LocationID
	}
	if req.ExpectedRevenue != nil {
		task.ExpectedRevenue = &domain.Money{
			Amount:   req.ExpectedRevenue.Amount,
			Currency: req.ExpectedRevenue.Currency,
		}
	}
	if req.ScheduledAt != "" {
		if parsed, err := time.Parse(time.RFC3339, req.ScheduledAt); err == nil {
			task.ScheduledAt = &parsed
		}
	}

	return task, true
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
