package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/namviet/fieldops/api/transport"
	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/pkg/httpcontext"
	directoryUC "github.com/namviet/fieldops/usecase/directory"
)

type DirectoryHandler struct {
	baseHandler
	uc *directoryUC.UseCase
}

func NewDirectoryHandler(uc *directoryUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List geo locations
// @Tags directory
// @Router /api/v1/locations [get]
func (h *DirectoryHandler) GetLocations(ctx *fasthttp.RequestCtx) {
	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 50)
	offset := parseInt(string(ctx.QueryArgs().Peek("offset")), 0)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	locations, err := h.uc.ListLocations(stdCtx, limit, offset)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, locations)
}

// @Summary Create geo location
// @Tags directory
// @Router /api/v1/locations [post]
func (h *DirectoryHandler) CreateLocation(ctx *fasthttp.RequestCtx) {
	var req transport.LocationRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateLocation(stdCtx, &domain.GeoLocation{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary List customers
// @Tags directory
// @Router /api/v1/customers [get]
func (h *DirectoryHandler) GetCustomers(ctx *fasthttp.RequestCtx) {
	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 50)
	offset := parseInt(string(ctx.QueryArgs().Peek("offset")), 0)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	customers, err := h.uc.ListCustomers(stdCtx, limit, offset)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, customers)
}

// @Summary Create customer
// @Tags directory
// @Router /api/v1/customers [post]
func (h *DirectoryHandler) CreateCustomer(ctx *fasthttp.RequestCtx) {
	var req transport.CustomerRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateCustomer(stdCtx, &domain.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}
