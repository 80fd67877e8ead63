package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/namviet/fieldops/pkg/httpcontext"
	"github.com/namviet/fieldops/repository"
	auditUC "github.com/namviet/fieldops/usecase/audit"
)

type ActivityHandler struct {
	baseHandler
	uc *auditUC.UseCase
}

func NewActivityHandler(uc *auditUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List audit activities
// @Tags activities
// @Router /api/v1/activities [get]
func (h *ActivityHandler) GetActivities(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	filter := repository.ActivityFilter{
		UserID: string(ctx.QueryArgs().Peek("user_id")),
		Topic:  string(ctx.QueryArgs().Peek("topic")),
		Action: string(ctx.QueryArgs().Peek("action")),
		Limit:  parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		Offset: parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	activities, err := h.uc.ListActivities(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, activities)
}
