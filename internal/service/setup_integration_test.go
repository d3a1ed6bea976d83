//go:build integration
// +build integration

package service

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("smartdine"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		fmt.Printf("Failed to start PostgreSQL container: %v\n", err)
		os.Exit(1)
	}

	code := func() int {
		defer func() {
			if err := pgContainer.Terminate(ctx); err != nil {
				fmt.Printf("Failed to terminate container: %v\n", err)
			}
		}()

		connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Printf("Failed to get connection string: %v\n", err)
			return 1
		}
		testDB, err = database.Open(connStr, logger.Silent)
		if err != nil {
			fmt.Printf("Failed to open database: %v\n", err)
			return 1
		}
		if err := database.MigrateModels(testDB); err != nil {
			fmt.Printf("Failed to migrate: %v\n", err)
			return 1
		}
		return m.Run()
	}()
	os.Exit(code)
}

// newTestServices truncates every table and returns fresh services
func newTestServices(t *testing.T, images ImageGenerator) *Services {
	t.Helper()
	err := testDB.Exec(`TRUNCATE users, tables, menu_items, bases, ingredients, custom_dishes,
		custom_dish_ingredients, carts, cart_items, orders, order_items, table_histories,
		waiter_requests, feedbacks, staff_score_events RESTART IDENTITY CASCADE`).Error
	require.NoError(t, err)

	return New(testDB, nil, Options{MinEstimatedMinutes: 10, LockTimeout: 2 * time.Second}, images)
}

func createTable(t *testing.T, number uint) *model.Table {
	t.Helper()
	table := &model.Table{TableNumber: number, Seats: 4, Status: model.TableAvailable}
	require.NoError(t, testDB.Create(table).Error)
	return table
}

func createMenuItem(t *testing.T, name string, price string, stock, prep int) *model.MenuItem {
	t.Helper()
	item := &model.MenuItem{
		Name:            name,
		Price:           decimal.RequireFromString(price),
		Category:        model.CategoryDrink,
		Stock:           stock,
		MinStock:        model.DefaultMinStock,
		Availability:    true,
		PreparationTime: prep,
	}
	require.NoError(t, testDB.Create(item).Error)
	return item
}

func createBase(t *testing.T, name, price string, prep *int) *model.Base {
	t.Helper()
	base := &model.Base{Name: name, Price: decimal.RequireFromString(price), PreparationTime: prep}
	require.NoError(t, testDB.Create(base).Error)
	return base
}

func createIngredient(t *testing.T, name, price string, prep int) *model.Ingredient {
	t.Helper()
	in := &model.Ingredient{Name: name, Category: model.IngredientExtra, Price: decimal.RequireFromString(price), PreparationTime: prep}
	require.NoError(t, testDB.Create(in).Error)
	return in
}

func createUser(t *testing.T, name, role string) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@smartdine.local", Role: role}
	require.NoError(t, testDB.Create(u).Error)
	return u
}

func reloadMenuItem(t *testing.T, id uint) model.MenuItem {
	t.Helper()
	var item model.MenuItem
	require.NoError(t, testDB.First(&item, id).Error)
	return item
}

func countRows(t *testing.T, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, testDB.Model(m).Where(query, args...).Count(&n).Error)
	return n
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
