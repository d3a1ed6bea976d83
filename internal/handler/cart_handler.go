package handler

import (
	"net/http"
	"strconv"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AddToCartRequest adds a menu item or a custom dish to a table's cart
type AddToCartRequest struct {
	TableNumber         uint   `json:"table_number"`
	MenuItemID          *uint  `json:"menu_item_id"`
	CustomDishID        *uint  `json:"custom_dish_id"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"special_instructions"`
}

// UpdateCartItemRequest replaces the quantity of a cart line
type UpdateCartItemRequest struct {
	TableNumber uint `json:"table_number"`
	CartItemID  uint `json:"cart_item_id"`
	Quantity    int  `json:"quantity"`
}

// GetCart returns the active cart of a table
func (h *Handler) GetCart(c echo.Context) error {
	number, err := tableNumber(c)
	if err != nil {
		return badRequest(c, "Invalid table number", err)
	}

	view, err := h.svc.Cart.GetActiveCart(c.Request().Context(), number)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// AddToCart handles adding a line to a cart
func (h *Handler) AddToCart(c echo.Context) error {
	log := logger.FromContext(c)

	var req AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request data", err)
	}
	ref, err := model.NewLineItemRef(req.MenuItemID, req.CustomDishID)
	if err != nil {
		return badRequest(c, "Exactly one of menu_item_id and custom_dish_id is required", err)
	}

	item, err := h.svc.Cart.AddItem(c.Request().Context(), req.TableNumber, ref, req.Quantity, req.SpecialInstructions)
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Cart item added",
		zap.Uint("table_number", req.TableNumber),
		zap.Stringer("item", ref),
		zap.Int("quantity", item.Quantity))
	return c.JSON(http.StatusOK, item)
}

// UpdateCartItem handles replacing a cart line quantity
func (h *Handler) UpdateCartItem(c echo.Context) error {
	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request data", err)
	}

	item, err := h.svc.Cart.UpdateQuantity(c.Request().Context(), req.TableNumber, req.CartItemID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// RemoveCartItem removes one line from a cart
func (h *Handler) RemoveCartItem(c echo.Context) error {
	number, err := tableNumber(c)
	if err != nil {
		return badRequest(c, "Invalid table number", err)
	}
	itemID, err := uintParam(c, "item_id")
	if err != nil {
		return badRequest(c, "Invalid cart item id", err)
	}

	if err := h.svc.Cart.RemoveItem(c.Request().Context(), number, itemID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearCart empties a cart
func (h *Handler) ClearCart(c echo.Context) error {
	number, err := tableNumber(c)
	if err != nil {
		return badRequest(c, "Invalid table number", err)
	}

	if err := h.svc.Cart.ClearCart(c.Request().Context(), number); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CartCount returns the number of units in a cart
func (h *Handler) CartCount(c echo.Context) error {
	number, err := tableNumber(c)
	if err != nil {
		return badRequest(c, "Invalid table number", err)
	}

	count, err := h.svc.Cart.CartCount(c.Request().Context(), number)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"table_number": number, "count": count})
}

// ItemQuantity returns how many units of a menu item are in a cart
func (h *Handler) ItemQuantity(c echo.Context) error {
	number, err := tableNumber(c)
	if err != nil {
		return badRequest(c, "Invalid table number", err)
	}
	menuItemID, err := strconv.ParseUint(c.QueryParam("menu_item_id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid menu_item_id", err)
	}

	qty, err := h.svc.Cart.ItemQuantity(c.Request().Context(), number, uint(menuItemID))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"menu_item_id": menuItemID, "quantity": qty})
}
