package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/namviet/fieldops/api/transport"
	"github.com/namviet/fieldops/pkg/httpcontext"
	accountUC "github.com/namviet/fieldops/usecase/account"
)

type AccountHandler struct {
	baseHandler
	uc *accountUC.Service
}

func NewAccountHandler(uc *accountUC.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Delete own account
// @Tags account
// @Router /api/v1/account/me [delete]
func (h *AccountHandler) DeleteMe(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.DeleteAccount(stdCtx, userID, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	message := "account deleted; historical records are retained without your identity"
	if result.AlreadyDeleted {
		message = "account was already deleted"
	}
	h.respondSuccess(ctx, http.StatusOK, transport.DeletionResponse{
		Success: true,
		Message: message,
	})
}
