package model

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderStatus is the kitchen/service stage of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderServed    OrderStatus = "served"
)

// OrderCompleted is accepted as a synonym for served on input
const OrderCompleted OrderStatus = "completed"

var orderFlow = []OrderStatus{OrderPending, OrderPreparing, OrderReady, OrderServed}

// ParseOrderStatus normalises user input into a known status
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(s)
	if st == OrderCompleted {
		return OrderServed, true
	}
	for _, known := range orderFlow {
		if known == st {
			return st, true
		}
	}
	return "", false
}

func (s OrderStatus) rank() int {
	for i, known := range orderFlow {
		if known == s {
			return i
		}
	}
	return -1
}

// Next returns the single status reachable from s
func (s OrderStatus) Next() (OrderStatus, bool) {
	r := s.rank()
	if r < 0 || r == len(orderFlow)-1 {
		return "", false
	}
	return orderFlow[r+1], true
}

// CanTransitionTo reports whether to is exactly one step forward from s
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	next, ok := s.Next()
	return ok && next == to
}

// AtLeast reports whether s is at or beyond other in the flow
func (s OrderStatus) AtLeast(other OrderStatus) bool {
	return s.rank() >= other.rank() && other.rank() >= 0
}

// Open reports whether the order is still being worked on
func (s OrderStatus) Open() bool {
	return s != OrderServed && s.rank() >= 0
}

// DefaultMinEstimatedMinutes is the ETA used when an order has no preparation time
const DefaultMinEstimatedMinutes = 10

// Order is a committed, priced set of items moving through the kitchen
type Order struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	TableID            uint            `json:"table_id" gorm:"not null;index"`
	Status             OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Total              decimal.Decimal `json:"total" gorm:"type:numeric(10,2);not null;default:0"`
	EstimatedTime      int             `json:"estimated_time" gorm:"not null;default:0"`
	StartedPreparingAt *time.Time      `json:"started_preparing_at,omitempty"`
	ChefID             *uint           `json:"chef_id,omitempty" gorm:"index"`
	WaiterID           *uint           `json:"waiter_id,omitempty" gorm:"index"`
	IsActive           bool            `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`

	ExpectedReadyTime time.Time `json:"expected_ready_time" gorm:"-"`

	// Relations
	Table *Table      `json:"table,omitempty" gorm:"foreignKey:TableID;constraint:OnDelete:CASCADE"`
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// AfterFind derives the expected ready time
func (o *Order) AfterFind(tx *gorm.DB) error {
	o.setExpectedReadyTime()
	return nil
}

func (o *Order) setExpectedReadyTime() {
	o.ExpectedReadyTime = o.CreatedAt.Add(time.Duration(o.EstimatedTime) * time.Minute)
}

// OrderItem is a price snapshot of one line at order time. Exactly one of MenuItemID and CustomDishID is set.
type OrderItem struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	OrderID      uint            `json:"order_id" gorm:"not null;index"`
	MenuItemID   *uint           `json:"menu_item_id,omitempty" gorm:"index;check:chk_order_items_ref,(menu_item_id IS NULL) <> (custom_dish_id IS NULL)"`
	CustomDishID *uint           `json:"custom_dish_id,omitempty" gorm:"index"`
	Name         string          `json:"name" gorm:"type:varchar(100);not null"`
	Quantity     int             `json:"quantity" gorm:"not null;check:chk_order_items_qty,quantity >= 1"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	PrepTime     int             `json:"prep_time" gorm:"not null;default:0"`
	Subtotal     decimal.Decimal `json:"subtotal" gorm:"type:numeric(10,2);not null"`
	IsActive     bool            `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Relations
	MenuItem   *MenuItem   `json:"-" gorm:"foreignKey:MenuItemID"`
	CustomDish *CustomDish `json:"-" gorm:"foreignKey:CustomDishID"`
}

// Ref returns the line item reference of the order item
func (oi *OrderItem) Ref() (LineItemRef, error) {
	return NewLineItemRef(oi.MenuItemID, oi.CustomDishID)
}

// SetRef stores ref into the reference columns
func (oi *OrderItem) SetRef(ref LineItemRef) {
	oi.MenuItemID, oi.CustomDishID = ref.Columns()
}

// IsCustom reports whether the item is backed by a custom dish
func (oi *OrderItem) IsCustom() bool {
	return oi.CustomDishID != nil
}

// ErrUnsupportedItemUpdate is returned for partial OrderItem updates whose subtotal cannot be derived
var ErrUnsupportedItemUpdate = errors.New("order items must be updated with a column map or one row at a time")

const affectedOrdersKey = "order_items:affected_orders"

// BeforeSave stores subtotal = price x quantity on Create and Save
func (oi *OrderItem) BeforeSave(tx *gorm.DB) error {
	if !wholeRowWrite(tx.Statement) {
		return nil
	}
	if oi.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if _, err := oi.Ref(); err != nil {
		return err
	}
	oi.Subtotal = oi.Price.Mul(decimal.NewFromInt(int64(oi.Quantity)))
	return nil
}

// BeforeUpdate keeps subtotal = price x quantity for column updates, which do not carry the whole row
func (oi *OrderItem) BeforeUpdate(tx *gorm.DB) error {
	stmt := tx.Statement
	if wholeRowWrite(stmt) {
		return nil
	}

	assigned, err := assignedColumns(stmt)
	if err != nil {
		return err
	}
	qty, hasQty := assigned["quantity"]
	price, hasPrice := assigned["price"]
	if !hasQty && !hasPrice {
		return nil
	}
	if n, ok := asInt(qty); hasQty && ok && n < 1 {
		return ErrInvalidQuantity
	}

	if err := recordAffectedOrders(tx, oi); err != nil {
		return err
	}

	if _, ok := stmt.Dest.(map[string]interface{}); ok {
		// SET expressions read the row as it was before the update
		var q, p interface{} = clause.Column{Name: "quantity"}, clause.Column{Name: "price"}
		if hasQty {
			q = qty
		}
		if hasPrice {
			p = price
		}
		stmt.SetColumn("subtotal", gorm.Expr("CAST(? AS numeric) * (?)", p, q))

		if oi.ID != 0 && oi.Quantity >= 1 {
			newQty, newPrice := oi.Quantity, oi.Price
			qtyOK, priceOK := true, true
			if hasQty {
				newQty, qtyOK = asInt(qty)
			}
			if hasPrice {
				newPrice, priceOK = asDecimal(price)
			}
			if qtyOK && priceOK {
				oi.Subtotal = newPrice.Mul(decimal.NewFromInt(int64(newQty)))
			}
		}
		return nil
	}

	if oi.ID == 0 {
		return ErrUnsupportedItemUpdate
	}
	var current OrderItem
	if err := tx.Session(&gorm.Session{NewDB: true}).Select("price", "quantity").First(&current, oi.ID).Error; err != nil {
		return err
	}
	if hasQty {
		current.Quantity, _ = asInt(qty)
	}
	if hasPrice {
		current.Price, _ = asDecimal(price)
	}
	stmt.SetColumn("subtotal", current.Price.Mul(decimal.NewFromInt(int64(current.Quantity))))
	return nil
}

// AfterSave recomputes the parent order so callers never read a stale total
func (oi *OrderItem) AfterSave(tx *gorm.DB) error {
	if oi.OrderID == 0 {
		return nil
	}
	return RecomputeOrder(tx, oi.OrderID)
}

// AfterUpdate recomputes the orders touched by an update issued without a loaded item
func (oi *OrderItem) AfterUpdate(tx *gorm.DB) error {
	v, ok := tx.InstanceGet(affectedOrdersKey)
	if !ok {
		return nil
	}
	for _, id := range v.([]uint) {
		if err := RecomputeOrder(tx, id); err != nil {
			return err
		}
	}
	return nil
}

// wholeRowWrite reports whether the statement writes the model it was given (Create, Save)
func wholeRowWrite(stmt *gorm.Statement) bool {
	if stmt.Dest == nil || stmt.Model == nil {
		return false
	}
	d, m := reflect.ValueOf(stmt.Dest), reflect.ValueOf(stmt.Model)
	return d.Kind() == reflect.Ptr && m.Kind() == reflect.Ptr && d.Pointer() == m.Pointer()
}

// assignedColumns returns the values a partial update assigns, keyed by column name
func assignedColumns(stmt *gorm.Statement) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if values, ok := stmt.Dest.(map[string]interface{}); ok {
		for k, v := range values {
			if f := stmt.Schema.LookUpField(k); f != nil {
				out[f.DBName] = v
			}
		}
		return out, nil
	}

	dest := reflect.ValueOf(stmt.Dest)
	for dest.Kind() == reflect.Ptr {
		dest = dest.Elem()
	}
	if dest.Type() != reflect.TypeOf(OrderItem{}) {
		return nil, ErrUnsupportedItemUpdate
	}
	for _, name := range []string{"quantity", "price"} {
		f := stmt.Schema.LookUpField(name)
		if v, zero := f.ValueOf(stmt.Context, dest); !zero {
			out[name] = v
		}
	}
	return out, nil
}

// recordAffectedOrders remembers which orders an update without a loaded item touches
func recordAffectedOrders(tx *gorm.DB, oi *OrderItem) error {
	if oi.OrderID != 0 {
		return nil
	}

	q := tx.Session(&gorm.Session{NewDB: true}).Model(&OrderItem{})
	if oi.ID != 0 {
		q = q.Where("id = ?", oi.ID)
	} else if where, ok := tx.Statement.Clauses["WHERE"]; ok && where.Expression != nil {
		q = q.Clauses(where.Expression)
	} else {
		return nil
	}

	var ids []uint
	if err := q.Distinct().Pluck("order_id", &ids).Error; err != nil {
		return err
	}
	tx.InstanceSet(affectedOrdersKey, ids)
	return nil
}

func asInt(v interface{}) (int, bool) {
	rv := reflect.ValueOf(v)
	switch {
	case !rv.IsValid():
		return 0, false
	case rv.CanInt():
		return int(rv.Int()), true
	case rv.CanUint():
		return int(rv.Uint()), true
	}
	return 0, false
}

func asDecimal(v interface{}) (decimal.Decimal, bool) {
	switch d := v.(type) {
	case decimal.Decimal:
		return d, true
	case string:
		parsed, err := decimal.NewFromString(d)
		return parsed, err == nil
	case float64:
		return decimal.NewFromFloat(d), true
	}
	if n, ok := asInt(v); ok {
		return decimal.NewFromInt(int64(n)), true
	}
	return decimal.Zero, false
}

type minETAKey struct{}

// WithMinEstimatedMinutes carries the minimum ETA used by order recomputation
func WithMinEstimatedMinutes(ctx context.Context, minutes int) context.Context {
	return context.WithValue(ctx, minETAKey{}, minutes)
}

// MinEstimatedMinutes returns the minimum ETA carried by ctx, or the default
func MinEstimatedMinutes(ctx context.Context) int {
	if ctx != nil {
		if v, ok := ctx.Value(minETAKey{}).(int); ok {
			return v
		}
	}
	return DefaultMinEstimatedMinutes
}

// EstimateMinutes applies the minimum to a summed preparation time
func EstimateMinutes(sum, min int) int {
	if sum <= 0 {
		return min
	}
	return sum
}

// RecomputeOrder sets total and estimated_time of an order from its items
func RecomputeOrder(tx *gorm.DB, orderID uint) error {
	db := tx.Session(&gorm.Session{NewDB: true})

	var agg struct {
		Total decimal.Decimal
		Prep  int
	}
	err := db.Model(&OrderItem{}).
		Select("COALESCE(SUM(subtotal), 0) AS total, COALESCE(SUM(prep_time * quantity), 0) AS prep").
		Where("order_id = ?", orderID).
		Scan(&agg).Error
	if err != nil {
		return err
	}

	return db.Model(&Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"total":          agg.Total,
		"estimated_time": EstimateMinutes(agg.Prep, MinEstimatedMinutes(tx.Statement.Context)),
	}).Error
}
