package handler

import (
	"net/http"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WaiterRequestInput raises a request for a table
type WaiterRequestInput struct {
	Type        model.WaiterRequestType `json:"request_type"`
	Description string                  `json:"description"`
}

// WaiterStatusInput moves a waiter request forward
type WaiterStatusInput struct {
	Status model.WaiterRequestStatus `json:"status"`
}

// CreateWaiterRequest handles a customer calling for a waiter
func (h *Handler) CreateWaiterRequest(c echo.Context) error {
	log := logger.FromContext(c)
	number, err := tableNumber(c)
	if err != nil {
		return badRequest(c, "Invalid table number", err)
	}

	var req WaiterRequestInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request data", err)
	}

	created, err := h.svc.Waiter.Create(c.Request().Context(), number, req.Type, req.Description)
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Waiter request created", zap.Uint("request_id", created.ID), zap.String("type", string(created.Type)))
	return c.JSON(http.StatusCreated, created)
}

// ListWaiterRequests returns the active request queue, optionally of one ?status=
func (h *Handler) ListWaiterRequests(c echo.Context) error {
	status := model.WaiterRequestStatus(c.QueryParam("status"))
	requests, err := h.svc.Waiter.ListActive(c.Request().Context(), status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, requests)
}

// TableWaiterRequests returns the active requests of a table
func (h *Handler) TableWaiterRequests(c echo.Context) error {
	number, err := tableNumber(c)
	if err != nil {
		return badRequest(c, "Invalid table number", err)
	}

	requests, err := h.svc.Waiter.ByTable(c.Request().Context(), number)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, requests)
}

// UpdateWaiterRequest moves a request to its next status
func (h *Handler) UpdateWaiterRequest(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid request id", err)
	}

	var req WaiterStatusInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request data", err)
	}

	updated, err := h.svc.Waiter.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}
