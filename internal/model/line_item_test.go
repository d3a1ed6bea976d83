package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLineItemRef(t *testing.T) {
	id := uint(9)

	ref, err := NewLineItemRef(&id, nil)
	require.NoError(t, err)
	assert.Equal(t, MenuItemRef{ID: 9}, ref)
	assert.False(t, ref.IsCustom())

	ref, err = NewLineItemRef(nil, &id)
	require.NoError(t, err)
	assert.Equal(t, CustomDishRef{ID: 9}, ref)
	assert.True(t, ref.IsCustom())

	_, err = NewLineItemRef(&id, &id)
	assert.ErrorIs(t, err, ErrInvalidLineItemRef)
	_, err = NewLineItemRef(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidLineItemRef)
}

func TestCartItemSetRef(t *testing.T) {
	var ci CartItem
	ci.SetRef(CustomDishRef{ID: 3})
	assert.Nil(t, ci.MenuItemID)
	require.NotNil(t, ci.CustomDishID)
	assert.Equal(t, uint(3), *ci.CustomDishID)
	assert.True(t, ci.IsCustom())

	ci.SetRef(MenuItemRef{ID: 5})
	assert.Nil(t, ci.CustomDishID)
	require.NotNil(t, ci.MenuItemID)
	assert.Equal(t, uint(5), *ci.MenuItemID)
}

func TestCartItemSubtotal(t *testing.T) {
	ci := CartItem{
		Quantity: 2,
		MenuItem: &MenuItem{Name: "Lemonade", Price: decimal.NewFromInt(50), PreparationTime: 4},
	}
	assert.True(t, decimal.NewFromInt(100).Equal(ci.Subtotal()))
	assert.Equal(t, "Lemonade", ci.Name())
	assert.Equal(t, 4, ci.UnitPrepTime())

	custom := CartItem{Quantity: 3, CustomDish: &CustomDish{Name: "Bowl", TotalPrice: decimal.RequireFromString("60.00")}}
	assert.True(t, decimal.NewFromInt(180).Equal(custom.Subtotal()))
}
