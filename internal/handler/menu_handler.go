package handler

import (
	"net/http"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListMenu returns the orderable menu, optionally of one category
func (h *Handler) ListMenu(c echo.Context) error {
	log := logger.FromContext(c)
	category := c.QueryParam("category")

	items, err := h.svc.Catalog.ListMenu(c.Request().Context(), category, false)
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Menu retrieved", zap.String("category", category), zap.Int("count", len(items)))
	return c.JSON(http.StatusOK, items)
}

// GetMenuItem returns one menu item
func (h *Handler) GetMenuItem(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid menu item id", err)
	}

	item, err := h.svc.Catalog.GetMenuItem(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// LowStock lists menu items at or below their minimum stock
func (h *Handler) LowStock(c echo.Context) error {
	items, err := h.svc.Catalog.LowStock(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// ListBases returns the custom dish bases
func (h *Handler) ListBases(c echo.Context) error {
	bases, err := h.svc.Catalog.ListBases(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, bases)
}

// ListIngredients returns the custom dish ingredients, optionally of one category
func (h *Handler) ListIngredients(c echo.Context) error {
	category := model.IngredientCategory(c.QueryParam("category"))
	ingredients, err := h.svc.Catalog.ListIngredients(c.Request().Context(), category)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ingredients)
}
