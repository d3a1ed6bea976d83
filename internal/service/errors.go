package service

import (
	"errors"
	"fmt"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyCart    = errors.New("cart is empty")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyAssigned is a Forbidden raised when another chef owns the order
	ErrAlreadyAssigned = fmt.Errorf("%w: order is already assigned to another chef", ErrForbidden)
	// ErrTransactionConflict means a concurrent writer won. The whole operation may be retried once.
	ErrTransactionConflict = errors.New("transaction conflict")
)

// InsufficientStockError aborts an order placement
type InsufficientStockError struct {
	ItemName  string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available", e.ItemName, e.Available)
}

// StockExceededError rejects a cart quantity above the remaining stock
type StockExceededError struct {
	Available int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("requested quantity exceeds stock, you can add at most %d more", e.Available)
}

// InvalidTransitionError rejects an order status change outside the forward flow
type InvalidTransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func notFound(what string, key interface{}) error {
	return fmt.Errorf("%s %v: %w", what, key, ErrNotFound)
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// postgres error codes treated as lost races
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgForeignKeyViolation  = "23503"
)

// translateError maps persistence errors onto the typed errors of this package
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if errors.Is(err, model.ErrInvalidLineItemRef) || errors.Is(err, model.ErrInvalidQuantity) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable, pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrTransactionConflict, pgErr.Message)
		case pgCheckViolation, pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrInvalidInput, pgErr.Message)
		}
	}

	return err
}
