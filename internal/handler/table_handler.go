package handler

import (
	"net/http"

	"github.com/MohammedAshfaquem/smatdine-backend/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// GetTable returns a table by its number
func (h *Handler) GetTable(c echo.Context) error {
	number, err := tableNumber(c)
	if err != nil {
		return badRequest(c, "Invalid table number", err)
	}

	table, err := h.svc.Tables.GetTable(c.Request().Context(), number)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, table)
}

// ListTables returns every table
func (h *Handler) ListTables(c echo.Context) error {
	tables, err := h.svc.Tables.ListTables(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tables)
}

// OccupyTable marks a table as occupied
func (h *Handler) OccupyTable(c echo.Context) error {
	number, err := tableNumber(c)
	if err != nil {
		return badRequest(c, "Invalid table number", err)
	}

	table, err := h.svc.Tables.OccupyTable(c.Request().Context(), number)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, table)
}

// ReleaseTable marks a table as available
func (h *Handler) ReleaseTable(c echo.Context) error {
	number, err := tableNumber(c)
	if err != nil {
		return badRequest(c, "Invalid table number", err)
	}

	table, err := h.svc.Tables.ReleaseTable(c.Request().Context(), number)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, table)
}

// ClearTable archives a table and frees it for the next guests
func (h *Handler) ClearTable(c echo.Context) error {
	log := logger.FromContext(c)
	number, err := tableNumber(c)
	if err != nil {
		return badRequest(c, "Invalid table number", err)
	}

	var changedBy *uint
	if a, ok := actor(c); ok {
		changedBy = &a.UserID
	}

	history, err := h.svc.Tables.ClearTable(c.Request().Context(), number, changedBy)
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Table cleared", zap.Uint("table_number", number), zap.Uint("history_id", history.ID))
	return c.JSON(http.StatusOK, history)
}

// TableHistory returns the archived snapshots of a table
func (h *Handler) TableHistory(c echo.Context) error {
	number, err := tableNumber(c)
	if err != nil {
		return badRequest(c, "Invalid table number", err)
	}

	records, err := h.svc.Tables.History(c.Request().Context(), number)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, records)
}
