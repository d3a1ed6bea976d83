package model

import "time"

// WaiterRequestType is what the table asked for
type WaiterRequestType string

const (
	RequestWater   WaiterRequestType = "need water"
	RequestBill    WaiterRequestType = "need bill"
	RequestClean   WaiterRequestType = "clean table"
	RequestGeneral WaiterRequestType = "general"
)

// Valid reports whether t is a known request type
func (t WaiterRequestType) Valid() bool {
	switch t {
	case RequestWater, RequestBill, RequestClean, RequestGeneral:
		return true
	}
	return false
}

// WaiterRequestStatus is the handling stage of a waiter request
type WaiterRequestStatus string

const (
	RequestPending    WaiterRequestStatus = "pending"
	RequestInProgress WaiterRequestStatus = "in-progress"
	RequestCompleted  WaiterRequestStatus = "completed"
)

func (s WaiterRequestStatus) rank() int {
	switch s {
	case RequestPending:
		return 0
	case RequestInProgress:
		return 1
	case RequestCompleted:
		return 2
	}
	return -1
}

// Valid reports whether s is a known request status
func (s WaiterRequestStatus) Valid() bool {
	return s.rank() >= 0
}

// Advances reports whether moving from s to to goes forward
func (s WaiterRequestStatus) Advances(to WaiterRequestStatus) bool {
	return s.Valid() && to.Valid() && to.rank() > s.rank()
}

// WaiterRequest is a call for service from a table
type WaiterRequest struct {
	ID          uint                `json:"id" gorm:"primaryKey"`
	TableID     uint                `json:"table_id" gorm:"not null;index"`
	Type        WaiterRequestType   `json:"request_type" gorm:"type:varchar(20);not null"`
	Description string              `json:"description,omitempty" gorm:"type:text"`
	Status      WaiterRequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	IsActive    bool                `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	// Relations
	Table *Table `json:"table,omitempty" gorm:"foreignKey:TableID;constraint:OnDelete:CASCADE"`
}
