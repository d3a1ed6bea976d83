package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLineItemRef is returned when a line item references both or neither of a menu item and a custom dish
	ErrInvalidLineItemRef = errors.New("line item must reference exactly one of menu item or custom dish")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
)

// LineItemRef identifies what a cart or order line is for: a MenuItem or a CustomDish, never both.
type LineItemRef interface {
	// Columns returns the (menu_item_id, custom_dish_id) pair, exactly one non-nil.
	Columns() (menuItemID, customDishID *uint)
	IsCustom() bool
	String() string
}

// MenuItemRef points at a stock-tracked MenuItem
type MenuItemRef struct {
	ID uint
}

// CustomDishRef points at a CustomDish
type CustomDishRef struct {
	ID uint
}

func (r MenuItemRef) Columns() (*uint, *uint) {
	id := r.ID
	return &id, nil
}

func (r MenuItemRef) IsCustom() bool { return false }

func (r MenuItemRef) String() string { return fmt.Sprintf("menu_item:%d", r.ID) }

func (r CustomDishRef) Columns() (*uint, *uint) {
	id := r.ID
	return nil, &id
}

func (r CustomDishRef) IsCustom() bool { return true }

func (r CustomDishRef) String() string { return fmt.Sprintf("custom_dish:%d", r.ID) }

// NewLineItemRef builds a ref from the two nullable columns
func NewLineItemRef(menuItemID, customDishID *uint) (LineItemRef, error) {
	switch {
	case menuItemID != nil && customDishID == nil:
		return MenuItemRef{ID: *menuItemID}, nil
	case menuItemID == nil && customDishID != nil:
		return CustomDishRef{ID: *customDishID}, nil
	default:
		return nil, ErrInvalidLineItemRef
	}
}
