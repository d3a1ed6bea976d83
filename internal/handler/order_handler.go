package handler

import (
	"net/http"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PlaceOrderRequest converts a table's cart into an order
type PlaceOrderRequest struct {
	TableNumber uint `json:"table_number"`
}

// UpdateStatusRequest moves an order to the next stage
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// PlaceOrder handles order placement
func (h *Handler) PlaceOrder(c echo.Context) error {
	log := logger.FromContext(c)

	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request data", err)
	}

	order, err := h.svc.Orders.PlaceOrder(c.Request().Context(), req.TableNumber)
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Order placed",
		zap.Uint("order_id", order.ID),
		zap.Uint("table_number", req.TableNumber),
		zap.String("total", order.Total.StringFixed(2)))
	return c.JSON(http.StatusCreated, order)
}

// GetOrder returns one order with its items
func (h *Handler) GetOrder(c echo.Context) error {
	id, err := uintParam(c, "order_id")
	if err != nil {
		return badRequest(c, "Invalid order id", err)
	}

	order, err := h.svc.Orders.GetOrder(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// TableOrders returns the active orders of a table
func (h *Handler) TableOrders(c echo.Context) error {
	number, err := tableNumber(c)
	if err != nil {
		return badRequest(c, "Invalid table number", err)
	}

	orders, err := h.svc.Orders.TableOrders(c.Request().Context(), number)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// KitchenOrders returns the orders the kitchen still has to work on
func (h *Handler) KitchenOrders(c echo.Context) error {
	orders, err := h.svc.Orders.KitchenOrders(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// ListOrders returns all orders, optionally filtered by ?status=
func (h *Handler) ListOrders(c echo.Context) error {
	orders, err := h.svc.Orders.ListOrders(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// UpdateOrderStatus handles a staff status change
func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	log := logger.FromContext(c)
	id, err := uintParam(c, "order_id")
	if err != nil {
		return badRequest(c, "Invalid order id", err)
	}

	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request data", err)
	}
	to, ok := model.ParseOrderStatus(req.Status)
	if !ok {
		log.Warn("Unknown order status", zap.String("status", req.Status))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unknown order status"})
	}

	a, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	order, err := h.svc.Orders.UpdateStatus(c.Request().Context(), id, to, a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// MarkServed completes an order
func (h *Handler) MarkServed(c echo.Context) error {
	id, err := uintParam(c, "order_id")
	if err != nil {
		return badRequest(c, "Invalid order id", err)
	}
	a, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	order, err := h.svc.Orders.MarkServed(c.Request().Context(), id, a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}
