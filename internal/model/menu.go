package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MenuCategory groups menu items on the customer menu
type MenuCategory string

const (
	CategoryStarter MenuCategory = "starter"
	CategoryMain    MenuCategory = "main"
	CategoryDessert MenuCategory = "dessert"
	CategoryDrink   MenuCategory = "drink"
)

// DefaultMinStock is the low-stock threshold applied when none is configured
const DefaultMinStock = 5

// MenuItem is a stock-tracked dish or drink on the menu
type MenuItem struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	Name            string          `json:"name" gorm:"type:varchar(100);not null"`
	Description     string          `json:"description" gorm:"type:text"`
	Price           decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null;check:chk_menu_items_price,price >= 0"`
	Category        MenuCategory    `json:"category" gorm:"type:varchar(20);index"`
	Type            string          `json:"type" gorm:"type:varchar(20)"`
	SpiceLevel      int             `json:"spice_level" gorm:"not null;default:0;check:chk_menu_items_spice,spice_level BETWEEN 0 AND 3"`
	Stock           int             `json:"stock" gorm:"not null;default:0;check:chk_menu_items_stock,stock >= 0"`
	MinStock        int             `json:"min_stock" gorm:"not null"`
	Availability    bool            `json:"availability" gorm:"not null"`
	PreparationTime int             `json:"preparation_time" gorm:"not null;default:0"`
	ImageURL        string          `json:"image_url,omitempty" gorm:"type:varchar(255)"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"-" gorm:"index"`
}

// Orderable reports whether customers can currently order the item
func (m *MenuItem) Orderable() bool {
	return m.Availability && m.Stock > 0
}

// LowStock reports whether the remaining stock is at or below the threshold
func (m *MenuItem) LowStock() bool {
	return m.Stock <= m.MinStock
}

// Base is the foundation of a custom dish (a bowl, a wrap, a smoothie base)
type Base struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	Name            string          `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Price           decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null;check:chk_bases_price,price >= 0"`
	PreparationTime *int            `json:"preparation_time,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// IngredientCategory classifies custom dish ingredients
type IngredientCategory string

const (
	IngredientFruit     IngredientCategory = "fruit"
	IngredientGreen     IngredientCategory = "green"
	IngredientSweetener IngredientCategory = "sweetener"
	IngredientExtra     IngredientCategory = "extra"
	IngredientSpice     IngredientCategory = "spice"
	IngredientCitrus    IngredientCategory = "citrus"
)

// Valid reports whether c is a known ingredient category
func (c IngredientCategory) Valid() bool {
	switch c {
	case IngredientFruit, IngredientGreen, IngredientSweetener, IngredientExtra, IngredientSpice, IngredientCitrus:
		return true
	}
	return false
}

// Ingredient is an add-on that can be combined with a Base
type Ingredient struct {
	ID              uint               `json:"id" gorm:"primaryKey"`
	Name            string             `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Category        IngredientCategory `json:"category" gorm:"type:varchar(20);not null"`
	Price           decimal.Decimal    `json:"price" gorm:"type:numeric(10,2);not null;check:chk_ingredients_price,price >= 0"`
	PreparationTime int                `json:"preparation_time" gorm:"not null;default:0"`
	CreatedAt       time.Time          `json:"created_at"`
}
