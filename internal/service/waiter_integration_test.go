//go:build integration
// +build integration

package service

import (
	"context"
	"testing"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaiterRequestsMoveForwardOnly(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t, nil)
	createTable(t, 3)

	_, err := svc.Waiter.Create(ctx, 3, model.RequestGeneral, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Waiter.Create(ctx, 3, "juggle", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	bill, err := svc.Waiter.Create(ctx, 3, model.RequestBill, "")
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, bill.Status)
	general, err := svc.Waiter.Create(ctx, 3, model.RequestGeneral, "high chair please")
	require.NoError(t, err)

	pending, err := svc.Waiter.ListActive(ctx, model.RequestPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, bill.ID, pending[0].ID, "oldest first")
	require.NotNil(t, pending[0].Table)
	assert.Equal(t, uint(3), pending[0].Table.TableNumber)

	moved, err := svc.Waiter.UpdateStatus(ctx, bill.ID, model.RequestInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.RequestInProgress, moved.Status)

	_, err = svc.Waiter.UpdateStatus(ctx, bill.ID, model.RequestPending)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Waiter.UpdateStatus(ctx, general.ID, model.RequestCompleted)
	require.NoError(t, err)

	_, err = svc.Waiter.UpdateStatus(ctx, 999, model.RequestCompleted)
	assert.ErrorIs(t, err, ErrNotFound)

	byTable, err := svc.Waiter.ByTable(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, byTable, 2)
}

func TestFeedbackIsOnePerOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t, nil)
	createTable(t, 2)
	tea := createMenuItem(t, "Tea", "20", 10, 2)

	_, err := svc.Cart.AddItem(ctx, 2, model.MenuItemRef{ID: tea.ID}, 1, "")
	require.NoError(t, err)
	order, err := svc.Orders.PlaceOrder(ctx, 2)
	require.NoError(t, err)

	_, err = svc.Feedback.Submit(ctx, order.ID, 6, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Feedback.Submit(ctx, 999, 5, "")
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := svc.Feedback.Submit(ctx, order.ID, 3, "slow")
	require.NoError(t, err)
	second, err := svc.Feedback.Submit(ctx, order.ID, 5, "great after all")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Rating)
	assert.Equal(t, "great after all", second.Comment)
	assert.Equal(t, int64(1), countRows(t, &model.Feedback{}, "order_id = ?", order.ID))
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t, nil)

	two := 2
	seed := func(price string) *CatalogSeed {
		return &CatalogSeed{
			Tables: []model.Table{{TableNumber: 1, Seats: 2}, {TableNumber: 2, Seats: 6}},
			MenuItems: []SeedMenuItem{{MenuItem: model.MenuItem{
				Name: "Lemonade", Category: model.CategoryDrink, Price: dec(price),
				Stock: 10, Availability: true, PreparationTime: 2,
			}, MinStock: &two}},
			Bases:       []model.Base{{Name: "Bowl", Price: dec("30")}},
			Ingredients: []model.Ingredient{{Name: "Egg", Category: model.IngredientExtra, Price: dec("10")}},
			Staff:       []model.User{{Name: "Dora", Email: "dora@smartdine.local", Role: "kitchen"}},
		}
	}

	require.NoError(t, svc.Catalog.Seed(ctx, seed("50")))
	require.NoError(t, svc.Catalog.Seed(ctx, seed("55")))

	assert.Equal(t, int64(2), countRows(t, &model.Table{}, "true"))
	assert.Equal(t, int64(1), countRows(t, &model.MenuItem{}, "true"))
	assert.Equal(t, int64(1), countRows(t, &model.User{}, "true"))

	menu, err := svc.Catalog.ListMenu(ctx, "", false)
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.True(t, dec("55").Equal(menu[0].Price))
	assert.Equal(t, 2, menu[0].MinStock)

	bad := &CatalogSeed{Ingredients: []model.Ingredient{{Name: "Glitter", Category: "sparkle", Price: dec("1")}}}
	assert.ErrorIs(t, svc.Catalog.Seed(ctx, bad), ErrInvalidInput)
}

func TestSeedMinStock(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t, nil)
	zero := 0

	seed := func() *CatalogSeed {
		return &CatalogSeed{MenuItems: []SeedMenuItem{
			{MenuItem: model.MenuItem{Name: "Water", Price: dec("10"), Stock: 3, Availability: true}, MinStock: &zero},
			{MenuItem: model.MenuItem{Name: "Cola", Price: dec("30"), Stock: 3, Availability: true}},
		}}
	}

	for i := 0; i < 2; i++ {
		require.NoError(t, svc.Catalog.Seed(ctx, seed()))

		var water, cola model.MenuItem
		require.NoError(t, testDB.Where("name = ?", "Water").First(&water).Error)
		require.NoError(t, testDB.Where("name = ?", "Cola").First(&cola).Error)
		assert.Equal(t, 0, water.MinStock, "an explicit zero threshold is kept, run %d", i)
		assert.Equal(t, model.DefaultMinStock, cola.MinStock, "a missing threshold gets the default, run %d", i)
	}

	direct := model.MenuItem{Name: "Juice", Price: dec("40"), Stock: 1, MinStock: 0, Availability: true}
	require.NoError(t, testDB.Create(&direct).Error)
	assert.Equal(t, 0, reloadMenuItem(t, direct.ID).MinStock)
}
