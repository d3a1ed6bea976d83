package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the per-table staging area for items not yet ordered
type Cart struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TableID   uint      `json:"table_id" gorm:"uniqueIndex;not null"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Table Table      `json:"-" gorm:"foreignKey:TableID;constraint:OnDelete:CASCADE"`
	Items []CartItem `json:"items,omitempty" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// CartItem is one line of a cart. Exactly one of MenuItemID and CustomDishID is set.
type CartItem struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	CartID              uint      `json:"cart_id" gorm:"not null;index;uniqueIndex:idx_cart_items_menu_active,where:is_active;uniqueIndex:idx_cart_items_dish_active,where:is_active"`
	MenuItemID          *uint     `json:"menu_item_id,omitempty" gorm:"uniqueIndex:idx_cart_items_menu_active,where:is_active;check:chk_cart_items_ref,(menu_item_id IS NULL) <> (custom_dish_id IS NULL)"`
	CustomDishID        *uint     `json:"custom_dish_id,omitempty" gorm:"uniqueIndex:idx_cart_items_dish_active,where:is_active"`
	Quantity            int       `json:"quantity" gorm:"not null;default:1;check:chk_cart_items_qty,quantity >= 1"`
	SpecialInstructions string    `json:"special_instructions,omitempty" gorm:"type:text"`
	IsActive            bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	// Relations
	MenuItem   *MenuItem   `json:"menu_item,omitempty" gorm:"foreignKey:MenuItemID"`
	CustomDish *CustomDish `json:"custom_dish,omitempty" gorm:"foreignKey:CustomDishID"`
}

// Ref returns the line item reference of the cart item
func (ci *CartItem) Ref() (LineItemRef, error) {
	return NewLineItemRef(ci.MenuItemID, ci.CustomDishID)
}

// SetRef stores ref into the reference columns
func (ci *CartItem) SetRef(ref LineItemRef) {
	ci.MenuItemID, ci.CustomDishID = ref.Columns()
}

// IsCustom reports whether the item is backed by a custom dish
func (ci *CartItem) IsCustom() bool {
	return ci.CustomDishID != nil
}

// UnitPrice is the current catalog price of the line. Relations must be loaded.
func (ci *CartItem) UnitPrice() decimal.Decimal {
	switch {
	case ci.MenuItem != nil:
		return ci.MenuItem.Price
	case ci.CustomDish != nil:
		return ci.CustomDish.TotalPrice
	}
	return decimal.Zero
}

// Subtotal is computed on read and never stored
func (ci *CartItem) Subtotal() decimal.Decimal {
	return ci.UnitPrice().Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

// Name of the referenced menu item or custom dish. Relations must be loaded.
func (ci *CartItem) Name() string {
	switch {
	case ci.MenuItem != nil:
		return ci.MenuItem.Name
	case ci.CustomDish != nil:
		return ci.CustomDish.Name
	}
	return ""
}

// UnitPrepTime is the current preparation time in minutes of one unit
func (ci *CartItem) UnitPrepTime() int {
	switch {
	case ci.MenuItem != nil:
		return ci.MenuItem.PreparationTime
	case ci.CustomDish != nil:
		return ci.CustomDish.PreparationTime
	}
	return 0
}
