//go:build integration
// +build integration

package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/imagegen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImages struct {
	mu   sync.Mutex
	url  string
	err  error
	seen []imagegen.GenerateRequest
}

func (f *fakeImages) Generate(_ context.Context, req imagegen.GenerateRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, req)
	return f.url, f.err
}

func TestCustomDishSnapshotSurvivesIngredientChange(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t, nil)
	createTable(t, 4)
	base := createBase(t, "Rice Bowl", "30", nil)
	egg := createIngredient(t, "Egg", "10", 2)
	tofu := createIngredient(t, "Tofu", "25", 4)

	dish, err := svc.Composer.CreateCustomDish(ctx, 4, CreateCustomDishInput{
		Name:        "My Bowl",
		BaseID:      base.ID,
		Ingredients: []IngredientSelection{{IngredientID: egg.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.True(t, dec("60").Equal(dish.TotalPrice), "got %s", dish.TotalPrice)
	assert.Equal(t, 6, dish.PreparationTime)

	_, err = svc.Cart.AddItem(ctx, 4, model.CustomDishRef{ID: dish.ID}, 1, "")
	require.NoError(t, err)
	order, err := svc.Orders.PlaceOrder(ctx, 4)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.True(t, dec("60").Equal(order.Items[0].Price))

	updated, err := svc.Composer.UpdateIngredients(ctx, dish.ID, []IngredientSelection{
		{IngredientID: egg.ID, Quantity: 1},
		{IngredientID: tofu.ID, Quantity: 2},
	})
	require.NoError(t, err)
	assert.True(t, dec("90").Equal(updated.TotalPrice), "got %s", updated.TotalPrice)
	assert.Equal(t, 10, updated.PreparationTime)
	assert.Len(t, updated.Ingredients, 2)

	reloaded, err := svc.Orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, dec("60").Equal(reloaded.Items[0].Price), "order keeps the price at placement")
	assert.True(t, dec("60").Equal(reloaded.Total))

	var sold model.CustomDish
	require.NoError(t, testDB.First(&sold, dish.ID).Error)
	assert.Equal(t, 1, sold.SoldCount)
}

func TestUpdateIngredientsToEmptyLeavesBaseOnly(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t, nil)
	createTable(t, 1)
	prep := 5
	base := createBase(t, "Wrap", "40", &prep)
	cheese := createIngredient(t, "Cheese", "15", 1)

	dish, err := svc.Composer.CreateCustomDish(ctx, 1, CreateCustomDishInput{
		Name:        "Cheesy",
		BaseID:      base.ID,
		Ingredients: []IngredientSelection{{IngredientID: cheese.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.True(t, dec("70").Equal(dish.TotalPrice))

	emptied, err := svc.Composer.UpdateIngredients(ctx, dish.ID, nil)
	require.NoError(t, err)
	assert.True(t, dec("40").Equal(emptied.TotalPrice))
	assert.Equal(t, 5, emptied.PreparationTime)
	assert.Empty(t, emptied.Ingredients)
}

func TestCreateCustomDishValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t, nil)
	createTable(t, 1)
	base := createBase(t, "Bowl", "30", nil)

	_, err := svc.Composer.CreateCustomDish(ctx, 1, CreateCustomDishInput{Name: " ", BaseID: base.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Composer.CreateCustomDish(ctx, 1, CreateCustomDishInput{Name: "x", BaseID: 999})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Composer.CreateCustomDish(ctx, 1, CreateCustomDishInput{
		Name: "x", BaseID: base.ID,
		Ingredients: []IngredientSelection{{IngredientID: 999, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Composer.CreateCustomDish(ctx, 77, CreateCustomDishInput{Name: "x", BaseID: base.ID})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReorderCopiesAtCurrentPrices(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t, nil)
	createTable(t, 1)
	createTable(t, 2)
	base := createBase(t, "Bowl", "30", nil)
	egg := createIngredient(t, "Egg", "10", 2)

	dish, err := svc.Composer.CreateCustomDish(ctx, 1, CreateCustomDishInput{
		Name:        "Egg Bowl",
		BaseID:      base.ID,
		Ingredients: []IngredientSelection{{IngredientID: egg.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.NoError(t, testDB.Model(egg).Update("price", dec("12")).Error)

	item, err := svc.Composer.Reorder(ctx, dish.ID, 2, 2)
	require.NoError(t, err)
	require.NotNil(t, item.CustomDishID)
	assert.NotEqual(t, dish.ID, *item.CustomDishID)
	assert.Equal(t, 2, item.Quantity)

	copies, err := svc.Composer.ListByTable(ctx, 2)
	require.NoError(t, err)
	require.Len(t, copies, 1)
	assert.True(t, dec("54").Equal(copies[0].TotalPrice), "got %s", copies[0].TotalPrice)
	assert.Equal(t, "Egg Bowl", copies[0].Name)

	view, err := svc.Cart.GetActiveCart(ctx, 2)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, dec("108").Equal(view.Total))

	_, err = svc.Composer.Reorder(ctx, 999, 2, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddCustomDishOfAnotherTableIsForbidden(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t, nil)
	createTable(t, 1)
	createTable(t, 2)
	base := createBase(t, "Bowl", "30", nil)

	dish, err := svc.Composer.CreateCustomDish(ctx, 1, CreateCustomDishInput{Name: "Plain", BaseID: base.ID})
	require.NoError(t, err)

	_, err = svc.Cart.AddItem(ctx, 2, model.CustomDishRef{ID: dish.ID}, 1, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestImageEnrichment(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		images *fakeImages
		status model.ImageStatus
		url    string
	}{
		{"done", &fakeImages{url: "https://img.local/1.png"}, model.ImageDone, "https://img.local/1.png"},
		{"failed", &fakeImages{err: errors.New("boom")}, model.ImageFailed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestServices(t, tt.images)
			createTable(t, 1)
			base := createBase(t, "Bowl", "30", nil)
			egg := createIngredient(t, "Egg", "10", 2)

			dish, err := svc.Composer.CreateCustomDish(ctx, 1, CreateCustomDishInput{
				Name:        "Egg Bowl",
				BaseID:      base.ID,
				Ingredients: []IngredientSelection{{IngredientID: egg.ID, Quantity: 1}},
			})
			require.NoError(t, err, "image generation never fails creation")
			assert.Equal(t, model.ImagePending, dish.ImageStatus)

			svc.Composer.Wait()

			var stored model.CustomDish
			require.NoError(t, testDB.First(&stored, dish.ID).Error)
			assert.Equal(t, tt.status, stored.ImageStatus)
			assert.Equal(t, tt.url, stored.ImageURL)

			require.Len(t, tt.images.seen, 1)
			assert.Equal(t, "Bowl", tt.images.seen[0].Base)
			assert.Equal(t, []string{"Egg"}, tt.images.seen[0].Ingredients)
		})
	}
}
