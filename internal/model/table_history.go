package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrHistoryImmutable is returned on any attempt to change a TableHistory record
var ErrHistoryImmutable = errors.New("table history records are append-only")

// TableSnapshot is the archived content of a table at clear time
type TableSnapshot struct {
	TableNumber    uint              `json:"table_number"`
	CartItems      []SnapshotLine    `json:"cart_items"`
	OrderItems     []SnapshotLine    `json:"order_items"`
	WaiterRequests []SnapshotRequest `json:"waiter_requests"`
	Total          decimal.Decimal   `json:"total"`
}

// SnapshotLine is one archived cart or order line
type SnapshotLine struct {
	OrderID     uint            `json:"order_id,omitempty"`
	OrderStatus OrderStatus     `json:"order_status,omitempty"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	IsCustom    bool            `json:"is_custom"`
}

// SnapshotRequest is one archived waiter request
type SnapshotRequest struct {
	Type        WaiterRequestType   `json:"type"`
	Description string              `json:"description,omitempty"`
	Status      WaiterRequestStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
}

// TableHistory is an append-only archive of a cleared table
type TableHistory struct {
	ID          uint                              `json:"id" gorm:"primaryKey"`
	TableID     uint                              `json:"table_id" gorm:"not null;index"`
	Status      TableStatus                       `json:"status" gorm:"type:varchar(20);not null"`
	ChangedByID *uint                             `json:"changed_by_id,omitempty" gorm:"index"`
	Timestamp   time.Time                         `json:"timestamp" gorm:"not null;index"`
	Snapshot    datatypes.JSONType[TableSnapshot] `json:"snapshot"`

	// Relations
	Table Table `json:"-" gorm:"foreignKey:TableID;constraint:OnDelete:CASCADE"`
}

// BeforeUpdate rejects changes to archived records
func (h *TableHistory) BeforeUpdate(tx *gorm.DB) error {
	return ErrHistoryImmutable
}

// BeforeDelete rejects removal of archived records
func (h *TableHistory) BeforeDelete(tx *gorm.DB) error {
	return ErrHistoryImmutable
}
