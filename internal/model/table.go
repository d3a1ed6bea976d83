package model

import (
	"time"
)

// TableStatus is the occupancy state of a dining table
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

// Table represents a physical dining table, the session boundary for carts, orders and waiter requests
type Table struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	TableNumber uint        `json:"table_number" gorm:"uniqueIndex;not null"`
	Seats       int         `json:"seats" gorm:"not null;default:4"`
	Status      TableStatus `json:"status" gorm:"type:varchar(20);not null;default:'available'"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
