package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ImageStatus tracks the asynchronous image enrichment of a custom dish
type ImageStatus string

const (
	ImageNone    ImageStatus = ""
	ImagePending ImageStatus = "pending"
	ImageDone    ImageStatus = "done"
	ImageFailed  ImageStatus = "failed"
)

// CustomDish is a priced composition of a Base plus Ingredients, usable as a line item
type CustomDish struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	Name            string          `json:"name" gorm:"type:varchar(100);not null"`
	BaseID          *uint           `json:"base_id" gorm:"index"`
	TotalPrice      decimal.Decimal `json:"total_price" gorm:"type:numeric(10,2);not null;default:0"`
	PreparationTime int             `json:"preparation_time" gorm:"not null;default:0"`
	TableID         *uint           `json:"table_id" gorm:"index"`
	Notes           string          `json:"notes" gorm:"type:text"`
	SoldCount       int             `json:"sold_count" gorm:"not null;default:0"`
	ImageURL        string          `json:"image_url,omitempty" gorm:"type:varchar(500)"`
	ImageStatus     ImageStatus     `json:"image_status,omitempty" gorm:"type:varchar(10)"`
	IsActive        bool            `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Relations
	Base        *Base                  `json:"base,omitempty" gorm:"foreignKey:BaseID;constraint:OnDelete:SET NULL"`
	Table       *Table                 `json:"-" gorm:"foreignKey:TableID;constraint:OnDelete:SET NULL"`
	Ingredients []CustomDishIngredient `json:"ingredients,omitempty" gorm:"foreignKey:CustomDishID;constraint:OnDelete:CASCADE"`
}

// CustomDishIngredient joins a CustomDish to an Ingredient with a quantity
type CustomDishIngredient struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	CustomDishID uint `json:"custom_dish_id" gorm:"not null;uniqueIndex:idx_dish_ingredient"`
	IngredientID uint `json:"ingredient_id" gorm:"not null;uniqueIndex:idx_dish_ingredient"`
	Quantity     int  `json:"quantity" gorm:"not null;default:1;check:chk_dish_ingredient_qty,quantity >= 1"`

	// Relations
	Ingredient Ingredient `json:"ingredient" gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

// IngredientLine is one priced ingredient selection
type IngredientLine struct {
	Price           decimal.Decimal
	PreparationTime int
	Quantity        int
}

// PriceCustomDish derives the total price and preparation time of a dish from its base and ingredients.
// A nil base contributes nothing; quantities below 1 count as 1.
func PriceCustomDish(base *Base, lines []IngredientLine) (decimal.Decimal, int) {
	total := decimal.Zero
	prep := 0
	if base != nil {
		total = total.Add(base.Price)
		if base.PreparationTime != nil {
			prep += *base.PreparationTime
		}
	}
	for _, l := range lines {
		qty := l.Quantity
		if qty < 1 {
			qty = 1
		}
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(qty))))
		prep += l.PreparationTime * qty
	}
	return total, prep
}

// RecomputeCustomDish re-derives and persists total_price and preparation_time from the current
// ingredient associations. Nothing is written when the values are unchanged.
func RecomputeCustomDish(tx *gorm.DB, dishID uint) error {
	db := tx.Session(&gorm.Session{NewDB: true})

	var dish CustomDish
	if err := db.Preload("Base").Preload("Ingredients.Ingredient").First(&dish, dishID).Error; err != nil {
		return err
	}

	lines := make([]IngredientLine, 0, len(dish.Ingredients))
	for _, di := range dish.Ingredients {
		lines = append(lines, IngredientLine{
			Price:           di.Ingredient.Price,
			PreparationTime: di.Ingredient.PreparationTime,
			Quantity:        di.Quantity,
		})
	}

	price, prep := PriceCustomDish(dish.Base, lines)
	if price.Equal(dish.TotalPrice) && prep == dish.PreparationTime {
		return nil
	}

	return db.Model(&CustomDish{}).Where("id = ?", dishID).Updates(map[string]interface{}{
		"total_price":      price,
		"preparation_time": prep,
	}).Error
}

// BeforeSave clamps the quantity to at least one
func (di *CustomDishIngredient) BeforeSave(tx *gorm.DB) error {
	if di.Quantity < 1 {
		di.Quantity = 1
	}
	return nil
}

// AfterSave keeps the parent dish price in step with its ingredients
func (di *CustomDishIngredient) AfterSave(tx *gorm.DB) error {
	if di.CustomDishID == 0 {
		return nil
	}
	return RecomputeCustomDish(tx, di.CustomDishID)
}

// AfterDelete keeps the parent dish price in step with its ingredients
func (di *CustomDishIngredient) AfterDelete(tx *gorm.DB) error {
	if di.CustomDishID == 0 {
		return nil
	}
	return RecomputeCustomDish(tx, di.CustomDishID)
}
