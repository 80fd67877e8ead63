package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/namviet/fieldops/api/transport"
	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/pkg/httpcontext"
	checkinUC "github.com/namviet/fieldops/usecase/checkin"
)

type CheckHandler struct {
	baseHandler
	uc *checkinUC.Service
}

func NewCheckHandler(uc *checkinUC.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *CheckHandler {
	return &CheckHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Check in at the task site
// @Tags tasks
// @Router /api/v1/tasks/{id}/checkin [post]
func (h *CheckHandler) CheckIn(ctx *fasthttp.RequestCtx) {
	h.handle(ctx, checkinUC.DirectionCheckIn)
}

// @Summary Check out and complete the task
// @Tags tasks
// @Router /api/v1/tasks/{id}/checkout [post]
func (h *CheckHandler) CheckOut(ctx *fasthttp.RequestCtx) {
	h.handle(ctx, checkinUC.DirectionCheckOut)
}

func (h *CheckHandler) handle(ctx *fasthttp.RequestCtx, direction checkinUC.Direction) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	taskID, _ := ctx.UserValue("id").(string)
	if taskID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	var req transport.CheckRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	ucReq := checkinUC.Request{
		TaskID:       taskID,
		ActingUserID: userID,
		Latitude:     req.Lat,
		Longitude:    req.Lng,
		Direction:    direction,
	}
	if direction == checkinUC.DirectionCheckOut && req.Payment != nil {
		ucReq.Payment = &domain.Payment{
			Amount:   req.Payment.Amount,
			Currency: req.Payment.Currency,
			Note:     req.Payment.Note,
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.VerifyAndRecord(stdCtx, ucReq)
	if err != nil {
		// A rejection is an expected outcome: keep the measured distance
		// in the response so the client can explain it.
		if domain.IsDomainError(err, domain.ErrCodeLocationRejected) && result != nil {
			h.respondJSON(ctx, http.StatusUnprocessableEntity, transport.NewError(
				string(domain.ErrCodeLocationRejected),
				err.Error(),
				transport.CheckResponse{
					Accepted:       false,
					DistanceMeters: result.DistanceMeters,
				},
			))
			return
		}
		h.respondError(ctx, err)
		return
	}

	h.respondSuccess(ctx, http.StatusOK, transport.CheckResponse{
		Accepted:       true,
		DistanceMeters: result.DistanceMeters,
		Warning:        result.Warning,
		NewStatus:      string(result.NewStatus),
	})
}
