package model

import (
	"time"
)

// Feedback is a customer rating of an order
type Feedback struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TableID   uint      `json:"table_id" gorm:"not null;index"`
	OrderID   uint      `json:"order_id" gorm:"not null;uniqueIndex"`
	Rating    int       `json:"rating" gorm:"not null;check:chk_feedback_rating,rating BETWEEN 1 AND 5"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Order Order `json:"-" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}
