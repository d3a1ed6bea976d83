package handler

import (
	"net/http"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/service"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ReorderRequest adds a copy of a custom dish to a table's cart
type ReorderRequest struct {
	TableNumber uint `json:"table_number"`
	Quantity    int  `json:"quantity"`
}

// UpdateIngredientsRequest replaces the ingredients of a custom dish
type UpdateIngredientsRequest struct {
	Ingredients []service.IngredientSelection `json:"ingredients"`
}

// CreateCustomDish composes a dish for a table
func (h *Handler) CreateCustomDish(c echo.Context) error {
	log := logger.FromContext(c)
	number, err := tableNumber(c)
	if err != nil {
		return badRequest(c, "Invalid table number", err)
	}

	var req service.CreateCustomDishInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request data", err)
	}

	dish, err := h.svc.Composer.CreateCustomDish(c.Request().Context(), number, req)
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Custom dish created",
		zap.Uint("dish_id", dish.ID),
		zap.String("total_price", dish.TotalPrice.StringFixed(2)))
	return c.JSON(http.StatusCreated, dish)
}

// TableCustomDishes returns the custom dishes of a table
func (h *Handler) TableCustomDishes(c echo.Context) error {
	number, err := tableNumber(c)
	if err != nil {
		return badRequest(c, "Invalid table number", err)
	}

	dishes, err := h.svc.Composer.ListByTable(c.Request().Context(), number)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dishes)
}

// ListCustomDishes returns every custom dish
func (h *Handler) ListCustomDishes(c echo.Context) error {
	dishes, err := h.svc.Composer.ListAll(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dishes)
}

// ReorderCustomDish copies a dish into a table's cart
func (h *Handler) ReorderCustomDish(c echo.Context) error {
	id, err := uintParam(c, "custom_dish_id")
	if err != nil {
		return badRequest(c, "Invalid custom dish id", err)
	}

	var req ReorderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request data", err)
	}

	item, err := h.svc.Composer.Reorder(c.Request().Context(), id, req.TableNumber, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// UpdateCustomDishIngredients replaces the ingredient set of a dish
func (h *Handler) UpdateCustomDishIngredients(c echo.Context) error {
	id, err := uintParam(c, "custom_dish_id")
	if err != nil {
		return badRequest(c, "Invalid custom dish id", err)
	}

	var req UpdateIngredientsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request data", err)
	}

	dish, err := h.svc.Composer.UpdateIngredients(c.Request().Context(), id, req.Ingredients)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dish)
}
