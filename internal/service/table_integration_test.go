//go:build integration
// +build integration

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/jwtutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccupyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t, nil)
	createTable(t, 2)

	first, err := svc.Tables.OccupyTable(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, model.TableOccupied, first.Status)

	time.Sleep(10 * time.Millisecond)
	second, err := svc.Tables.OccupyTable(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, first.UpdatedAt.UnixNano(), second.UpdatedAt.UnixNano())

	released, err := svc.Tables.ReleaseTable(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, model.TableAvailable, released.Status)

	_, err = svc.Tables.OccupyTable(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearTableArchivesEverything(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t, nil)
	createTable(t, 7)
	chef := createUser(t, "dora", jwtutil.RoleKitchen)
	admin := createUser(t, "ada", jwtutil.RoleAdmin)
	curry := createMenuItem(t, "Curry", "150", 10, 20)
	naan := createMenuItem(t, "Naan", "25", 10, 5)
	lassi := createMenuItem(t, "Lassi", "60", 10, 3)

	_, err := svc.Cart.AddItem(ctx, 7, model.MenuItemRef{ID: curry.ID}, 1, "")
	require.NoError(t, err)
	order, err := svc.Orders.PlaceOrder(ctx, 7)
	require.NoError(t, err)
	_, err = svc.Orders.UpdateStatus(ctx, order.ID, model.OrderPreparing, Actor{UserID: chef.ID, Role: jwtutil.RoleKitchen})
	require.NoError(t, err)

	_, err = svc.Cart.AddItem(ctx, 7, model.MenuItemRef{ID: naan.ID}, 2, "")
	require.NoError(t, err)
	_, err = svc.Cart.AddItem(ctx, 7, model.MenuItemRef{ID: lassi.ID}, 1, "")
	require.NoError(t, err)
	_, err = svc.Waiter.Create(ctx, 7, model.RequestWater, "")
	require.NoError(t, err)

	history, err := svc.Tables.ClearTable(ctx, 7, &admin.ID)
	require.NoError(t, err)

	snap := history.Snapshot.Data()
	assert.Equal(t, uint(7), snap.TableNumber)
	require.Len(t, snap.CartItems, 2)
	assert.Equal(t, "Naan", snap.CartItems[0].Name)
	assert.True(t, dec("50").Equal(snap.CartItems[0].Subtotal))
	require.Len(t, snap.OrderItems, 1)
	assert.Equal(t, "Curry", snap.OrderItems[0].Name)
	assert.Equal(t, model.OrderPreparing, snap.OrderItems[0].OrderStatus)
	require.Len(t, snap.WaiterRequests, 1)
	assert.Equal(t, model.RequestWater, snap.WaiterRequests[0].Type)
	assert.Equal(t, model.TableOccupied, history.Status)
	require.NotNil(t, history.ChangedByID)
	assert.Equal(t, admin.ID, *history.ChangedByID)

	table, err := svc.Tables.GetTable(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, model.TableAvailable, table.Status)

	view, err := svc.Cart.GetActiveCart(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	orders, err := svc.Orders.TableOrders(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, orders)
	requests, err := svc.Waiter.ByTable(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, requests)

	archived, err := svc.Orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, archived.IsActive)
	assert.True(t, dec("150").Equal(archived.Total), "archiving keeps the order total")

	_, err = svc.Orders.UpdateStatus(ctx, order.ID, model.OrderReady, Actor{UserID: chef.ID, Role: jwtutil.RoleKitchen})
	assert.ErrorIs(t, err, ErrNotFound)

	records, err := svc.Tables.History(ctx, 7)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, history.ID, records[0].ID)
}

func TestClearTableArchivesCustomDishes(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t, nil)
	createTable(t, 8)
	base := createBase(t, "Bowl", "30", nil)
	egg := createIngredient(t, "Egg", "10", 2)

	ordered, err := svc.Composer.CreateCustomDish(ctx, 8, CreateCustomDishInput{
		Name:        "Egg Bowl",
		BaseID:      base.ID,
		Ingredients: []IngredientSelection{{IngredientID: egg.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	_, err = svc.Cart.AddItem(ctx, 8, model.CustomDishRef{ID: ordered.ID}, 1, "")
	require.NoError(t, err)
	_, err = svc.Orders.PlaceOrder(ctx, 8)
	require.NoError(t, err)

	waiting, err := svc.Composer.CreateCustomDish(ctx, 8, CreateCustomDishInput{Name: "Plain Bowl", BaseID: base.ID})
	require.NoError(t, err)
	_, err = svc.Cart.AddItem(ctx, 8, model.CustomDishRef{ID: waiting.ID}, 2, "")
	require.NoError(t, err)

	history, err := svc.Tables.ClearTable(ctx, 8, nil)
	require.NoError(t, err)

	snap := history.Snapshot.Data()
	require.Len(t, snap.CartItems, 1)
	assert.True(t, snap.CartItems[0].IsCustom)
	assert.Equal(t, "Plain Bowl", snap.CartItems[0].Name)
	assert.True(t, dec("60").Equal(snap.CartItems[0].Subtotal))
	require.Len(t, snap.OrderItems, 1)
	assert.True(t, snap.OrderItems[0].IsCustom)
	assert.Equal(t, "Egg Bowl", snap.OrderItems[0].Name)
	assert.True(t, dec("60").Equal(snap.Total))

	assert.Equal(t, int64(0), countRows(t, &model.CustomDish{}, "is_active AND id IN ?", []uint{ordered.ID, waiting.ID}))
	dishes, err := svc.Composer.ListByTable(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, dishes)
}

func TestTableHistoryIsAppendOnly(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t, nil)
	createTable(t, 1)

	history, err := svc.Tables.ClearTable(ctx, 1, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, testDB.Model(history).Update("status", model.TableReserved).Error, model.ErrHistoryImmutable)
	assert.ErrorIs(t, testDB.Delete(history).Error, model.ErrHistoryImmutable)
}

func TestClearTableRacingPlaceOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t, nil)
	createTable(t, 9)
	soup := createMenuItem(t, "Soup", "75", 20, 15)

	for i := 0; i < 10; i++ {
		_, err := svc.Cart.AddItem(ctx, 9, model.MenuItemRef{ID: soup.ID}, 1, "")
		require.NoError(t, err)

		var (
			wg       sync.WaitGroup
			placeErr error
			clearErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, placeErr = svc.Orders.PlaceOrder(ctx, 9)
		}()
		go func() {
			defer wg.Done()
			_, clearErr = svc.Tables.ClearTable(ctx, 9, nil)
		}()
		wg.Wait()

		require.NoError(t, clearErr)
		if placeErr != nil {
			assert.True(t, errors.Is(placeErr, ErrEmptyCart) || errors.Is(placeErr, ErrTransactionConflict), "unexpected %v", placeErr)
		}

		assert.Equal(t, int64(0), countRows(t, &model.Order{}, "is_active"), "no order survives as active")
		assert.Equal(t, int64(0), countRows(t, &model.OrderItem{}, "is_active AND order_id IN (SELECT id FROM orders WHERE NOT is_active)"))
	}
}
