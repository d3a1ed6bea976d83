package model

import (
	"time"
)

// User represents a staff member. Accounts are provisioned outside this service.
type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"type:varchar(100)"`
	Email           string    `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Role            string    `json:"role" gorm:"type:varchar(20);not null"`
	OrdersCompleted int       `json:"orders_completed" gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ScoreRole is the capacity in which a staff member earned points
type ScoreRole string

const (
	ScoreChef   ScoreRole = "chef"
	ScoreWaiter ScoreRole = "waiter"
)

// PointsPerOrder is awarded to each of the chef and the waiter of a served order
const PointsPerOrder = 20

// StaffScoreEvent records points earned for serving an order
type StaffScoreEvent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_score_event"`
	OrderID   uint      `json:"order_id" gorm:"not null;uniqueIndex:idx_score_event"`
	Role      ScoreRole `json:"role" gorm:"type:varchar(10);not null;uniqueIndex:idx_score_event"`
	Points    int       `json:"points" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}
