package model

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderPreparing, true},
		{OrderPreparing, OrderReady, true},
		{OrderReady, OrderServed, true},
		{OrderPending, OrderReady, false},
		{OrderPending, OrderServed, false},
		{OrderReady, OrderPreparing, false},
		{OrderServed, OrderPending, false},
		{OrderPreparing, OrderPreparing, false},
		{OrderStatus("cancelled"), OrderPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestParseOrderStatus(t *testing.T) {
	st, ok := ParseOrderStatus("completed")
	require.True(t, ok)
	assert.Equal(t, OrderServed, st)

	st, ok = ParseOrderStatus("ready")
	require.True(t, ok)
	assert.Equal(t, OrderReady, st)

	_, ok = ParseOrderStatus("cooking")
	assert.False(t, ok)
}

func TestOrderStatusAtLeast(t *testing.T) {
	assert.True(t, OrderReady.AtLeast(OrderPreparing))
	assert.True(t, OrderPreparing.AtLeast(OrderPreparing))
	assert.False(t, OrderPending.AtLeast(OrderPreparing))
	assert.True(t, OrderReady.Open())
	assert.False(t, OrderServed.Open())
}

func TestEstimateMinutes(t *testing.T) {
	assert.Equal(t, 10, EstimateMinutes(0, 10))
	assert.Equal(t, 25, EstimateMinutes(25, 10))
	assert.Equal(t, 3, EstimateMinutes(3, 10), "the minimum only applies to a zero sum")
}

func TestMinEstimatedMinutesFromContext(t *testing.T) {
	assert.Equal(t, DefaultMinEstimatedMinutes, MinEstimatedMinutes(context.Background()))
	assert.Equal(t, 15, MinEstimatedMinutes(WithMinEstimatedMinutes(context.Background(), 15)))
}

func TestOrderItemBeforeSave(t *testing.T) {
	menuID := uint(4)
	oi := &OrderItem{MenuItemID: &menuID, Quantity: 3, Price: decimal.RequireFromString("12.50")}
	require.NoError(t, oi.BeforeSave(createTx(oi)))
	assert.True(t, decimal.RequireFromString("37.50").Equal(oi.Subtotal))

	bad := &OrderItem{Quantity: 1, Price: decimal.NewFromInt(1)}
	assert.ErrorIs(t, bad.BeforeSave(createTx(bad)), ErrInvalidLineItemRef)

	zero := &OrderItem{MenuItemID: &menuID, Quantity: 0}
	assert.ErrorIs(t, zero.BeforeSave(createTx(zero)), ErrInvalidQuantity)

	// column updates are left to BeforeUpdate
	assert.NoError(t, (&OrderItem{}).BeforeSave(&gorm.DB{Statement: &gorm.Statement{
		Dest:  map[string]interface{}{"quantity": 5},
		Model: &OrderItem{},
	}}))
}

func createTx(oi *OrderItem) *gorm.DB {
	return &gorm.DB{Statement: &gorm.Statement{Dest: oi, Model: oi}}
}

func TestOrderExpectedReadyTime(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	o := &Order{CreatedAt: created, EstimatedTime: 25}
	require.NoError(t, o.AfterFind(nil))
	assert.Equal(t, created.Add(25*time.Minute), o.ExpectedReadyTime)
}

func TestWholeRowWrite(t *testing.T) {
	item := OrderItem{}
	items := []OrderItem{}

	assert.True(t, wholeRowWrite(&gorm.Statement{Dest: &item, Model: &item}))
	assert.True(t, wholeRowWrite(&gorm.Statement{Dest: &items, Model: &items}))
	assert.False(t, wholeRowWrite(&gorm.Statement{Dest: map[string]interface{}{"quantity": 2}, Model: &item}))
	assert.False(t, wholeRowWrite(&gorm.Statement{Dest: OrderItem{Quantity: 2}, Model: &item}))
	assert.False(t, wholeRowWrite(&gorm.Statement{Dest: &OrderItem{Quantity: 2}, Model: &item}))
}

func TestAssignedValueConversions(t *testing.T) {
	n, ok := asInt(int64(4))
	assert.True(t, ok)
	assert.Equal(t, 4, n)
	_, ok = asInt(gorm.Expr("quantity + ?", 1))
	assert.False(t, ok)

	d, ok := asDecimal("12.50")
	assert.True(t, ok)
	assert.True(t, decimal.RequireFromString("12.5").Equal(d))
	d, ok = asDecimal(3)
	assert.True(t, ok)
	assert.True(t, decimal.NewFromInt(3).Equal(d))
	_, ok = asDecimal(gorm.Expr("price * 2"))
	assert.False(t, ok)
}
