package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, ErrTransactionConflict},
		{"deadlock", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "40P01"}), ErrTransactionConflict},
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, ErrTransactionConflict},
		{"duplicate active cart line", &pgconn.PgError{Code: "23505"}, ErrTransactionConflict},
		{"check violation", &pgconn.PgError{Code: "23514"}, ErrInvalidInput},
		{"bad line item", model.ErrInvalidLineItemRef, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translateError(tt.in), tt.want)
		})
	}

	assert.NoError(t, translateError(nil))

	other := errors.New("boom")
	assert.Equal(t, other, translateError(other))

	var insufficient *InsufficientStockError
	assert.ErrorAs(t, translateError(&InsufficientStockError{ItemName: "Lemonade", Available: 1}), &insufficient)
	assert.Equal(t, 1, insufficient.Available)
}

func TestAlreadyAssignedIsForbidden(t *testing.T) {
	assert.ErrorIs(t, ErrAlreadyAssigned, ErrForbidden)
}

func TestTypedErrorMessages(t *testing.T) {
	assert.Equal(t, `insufficient stock for "Lemonade": 1 available`, (&InsufficientStockError{ItemName: "Lemonade", Available: 1}).Error())
	assert.Equal(t, "cannot move order from pending to ready", (&InvalidTransitionError{From: model.OrderPending, To: model.OrderReady}).Error())
	assert.Contains(t, (&StockExceededError{Available: 2}).Error(), "at most 2")
	assert.ErrorIs(t, notFound("table", 5), ErrNotFound)
	assert.EqualError(t, notFound("table", 5), "table 5: not found")
}
