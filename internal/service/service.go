package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/config"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/imagegen"
	"github.com/MohammedAshfaquem/smatdine-backend/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options tunes the transactional core
type Options struct {
	MinEstimatedMinutes int
	LockTimeout         time.Duration
}

// OptionsFromConfig builds Options from the order configuration
func OptionsFromConfig(cfg *config.OrderConfig) Options {
	return Options{
		MinEstimatedMinutes: cfg.MinEstimatedMinutes,
		LockTimeout:         cfg.LockTimeout,
	}
}

// ImageGenerator renders a picture for a custom dish
type ImageGenerator interface {
	Generate(ctx context.Context, req imagegen.GenerateRequest) (string, error)
}

// Services bundles every component of the ordering core
type Services struct {
	Catalog     *CatalogService
	Composer    *ComposerService
	Cart        *CartService
	Orders      *OrderService
	Tables      *TableService
	Waiter      *WaiterService
	Feedback    *FeedbackService
	Leaderboard *LeaderboardService
}

// New wires the services over db. images may be nil to disable image generation.
func New(db *gorm.DB, log *zap.Logger, opts Options, images ImageGenerator) *Services {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MinEstimatedMinutes <= 0 {
		opts.MinEstimatedMinutes = model.DefaultMinEstimatedMinutes
	}
	c := &core{db: db, log: log, opts: opts}

	cart := &CartService{core: c}
	return &Services{
		Catalog:     &CatalogService{core: c},
		Composer:    &ComposerService{core: c, images: images},
		Cart:        cart,
		Orders:      &OrderService{core: c},
		Tables:      &TableService{core: c},
		Waiter:      &WaiterService{core: c},
		Feedback:    &FeedbackService{core: c},
		Leaderboard: &LeaderboardService{core: c},
	}
}

type core struct {
	db   *gorm.DB
	log  *zap.Logger
	opts Options
}

func (c *core) context(ctx context.Context) context.Context {
	return model.WithMinEstimatedMinutes(ctx, c.opts.MinEstimatedMinutes)
}

// read returns a session for non-transactional queries
func (c *core) read(ctx context.Context) *gorm.DB {
	return c.db.WithContext(c.context(ctx))
}

// withTx runs fn in one transaction bounded by the configured lock timeout and translates its error
func (c *core) withTx(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	defer prometheus.TrackDBOperation(op)(time.Now())

	err := c.db.WithContext(c.context(ctx)).Transaction(func(tx *gorm.DB) error {
		if c.opts.LockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", c.opts.LockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(tx)
	})

	err = translateError(err)
	if errors.Is(err, ErrTransactionConflict) {
		prometheus.RecordTransactionConflict()
		c.log.Warn("Transaction lost to a concurrent writer", zap.String("operation", op), zap.Error(err))
	}
	return err
}

// forUpdate locks the selected rows until the transaction ends
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// skipHooks is used for bulk flag updates that must not re-run item recomputation
func skipHooks(tx *gorm.DB) *gorm.DB {
	return tx.Session(&gorm.Session{SkipHooks: true})
}

func findTable(tx *gorm.DB, tableNumber uint) (*model.Table, error) {
	var table model.Table
	if err := tx.Where("table_number = ?", tableNumber).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("table", tableNumber)
		}
		return nil, err
	}
	return &table, nil
}

// lockTable serialises all cart, order and clear operations of one table
func lockTable(tx *gorm.DB, tableNumber uint) (*model.Table, error) {
	return findTable(forUpdate(tx), tableNumber)
}
