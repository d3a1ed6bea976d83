package handler

import (
	"errors"
	"net/http"
	"strconv"

	mid "github.com/MohammedAshfaquem/smatdine-backend/internal/middleware"
	"github.com/MohammedAshfaquem/smatdine-backend/internal/service"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler serves the HTTP API over the ordering services
type Handler struct {
	svc *service.Services
}

// New creates a Handler
func New(svc *service.Services) *Handler {
	return &Handler{svc: svc}
}

// respondError maps a service error to its HTTP status
func respondError(c echo.Context, err error) error {
	log := logger.FromContext(c)

	var (
		insufficient *service.InsufficientStockError
		exceeded     *service.StockExceededError
		transition   *service.InvalidTransitionError
	)

	switch {
	case errors.As(err, &insufficient):
		log.Warn("Insufficient stock", zap.String("item", insufficient.ItemName), zap.Int("available", insufficient.Available))
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     err.Error(),
			"item":      insufficient.ItemName,
			"available": insufficient.Available,
		})
	case errors.As(err, &exceeded):
		log.Warn("Stock exceeded", zap.Int("available", exceeded.Available))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":     err.Error(),
			"available": exceeded.Available,
		})
	case errors.As(err, &transition):
		log.Warn("Invalid order transition", zap.String("from", string(transition.From)), zap.String("to", string(transition.To)))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": err.Error(),
			"from":  transition.From,
			"to":    transition.To,
		})
	case errors.Is(err, service.ErrNotFound):
		log.Info("Resource not found", zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrEmptyCart), errors.Is(err, service.ErrInvalidInput):
		log.Info("Rejected request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		log.Warn("Forbidden", zap.Error(err))
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrTransactionConflict):
		log.Warn("Transaction conflict", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "retryable": true})
	}

	log.Error("Request failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

func badRequest(c echo.Context, msg string, err error) error {
	logger.FromContext(c).Warn(msg, zap.Error(err))
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func uintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

func tableNumber(c echo.Context) (uint, error) {
	return uintParam(c, "table_number")
}

// actor returns the authenticated staff member of a staff route
func actor(c echo.Context) (service.Actor, bool) {
	id, role, ok := mid.Actor(c)
	return service.Actor{UserID: id, Role: role}, ok
}
