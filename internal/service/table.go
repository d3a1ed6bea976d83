package service

import (
	"context"
	"errors"
	"time"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"
	"github.com/MohammedAshfaquem/smatdine-backend/prometheus"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TableService tracks table occupancy and archives tables when they are cleared
type TableService struct {
	*core
}

// GetTable returns one table by number
func (s *TableService) GetTable(ctx context.Context, tableNumber uint) (*model.Table, error) {
	return findTable(s.read(ctx), tableNumber)
}

// ListTables returns every table ordered by number
func (s *TableService) ListTables(ctx context.Context) ([]model.Table, error) {
	var tables []model.Table
	if err := s.read(ctx).Order("table_number").Find(&tables).Error; err != nil {
		return nil, translateError(err)
	}
	return tables, nil
}

// OccupyTable marks a table occupied. Nothing is written if it already is.
func (s *TableService) OccupyTable(ctx context.Context, tableNumber uint) (*model.Table, error) {
	return s.setStatus(ctx, tableNumber, model.TableOccupied)
}

// ReleaseTable marks a table available. Nothing is written if it already is.
func (s *TableService) ReleaseTable(ctx context.Context, tableNumber uint) (*model.Table, error) {
	return s.setStatus(ctx, tableNumber, model.TableAvailable)
}

func (s *TableService) setStatus(ctx context.Context, tableNumber uint, status model.TableStatus) (*model.Table, error) {
	var table *model.Table
	err := s.withTx(ctx, "set_table_status", func(tx *gorm.DB) error {
		var err error
		table, err = lockTable(tx, tableNumber)
		if err != nil || table.Status == status {
			return err
		}
		return tx.Model(table).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// ClearTable archives the active cart, orders and waiter requests of a table into a history
// record, deactivates them and makes the table available, in one transaction.
func (s *TableService) ClearTable(ctx context.Context, tableNumber uint, changedBy *uint) (*model.TableHistory, error) {
	var history *model.TableHistory
	err := s.withTx(ctx, "clear_table", func(tx *gorm.DB) error {
		table, err := lockTable(tx, tableNumber)
		if err != nil {
			return err
		}

		snapshot := model.TableSnapshot{
			TableNumber:    table.TableNumber,
			CartItems:      []model.SnapshotLine{},
			OrderItems:     []model.SnapshotLine{},
			WaiterRequests: []model.SnapshotRequest{},
			Total:          decimal.Zero,
		}

		var cart model.Cart
		err = forUpdate(tx).Where("table_id = ?", table.ID).First(&cart).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		hasCart := err == nil
		if hasCart {
			items, err := activeCartItems(tx, cart.ID)
			if err != nil {
				return err
			}
			for i := range items {
				ci := &items[i]
				snapshot.CartItems = append(snapshot.CartItems, model.SnapshotLine{
					Name:     ci.Name(),
					Quantity: ci.Quantity,
					Subtotal: ci.Subtotal(),
					IsCustom: ci.IsCustom(),
				})
			}
		}

		var orders []model.Order
		err = forUpdate(tx).Where("table_id = ? AND is_active", table.ID).Order("id").Find(&orders).Error
		if err != nil {
			return err
		}
		orderIDs := make([]uint, 0, len(orders))
		for _, o := range orders {
			orderIDs = append(orderIDs, o.ID)
		}
		if len(orderIDs) > 0 {
			var items []model.OrderItem
			if err := tx.Where("order_id IN ? AND is_active", orderIDs).Order("order_id, id").Find(&items).Error; err != nil {
				return err
			}
			status := make(map[uint]model.OrderStatus, len(orders))
			for _, o := range orders {
				status[o.ID] = o.Status
			}
			for _, oi := range items {
				snapshot.OrderItems = append(snapshot.OrderItems, model.SnapshotLine{
					OrderID:     oi.OrderID,
					OrderStatus: status[oi.OrderID],
					Name:        oi.Name,
					Quantity:    oi.Quantity,
					Subtotal:    oi.Subtotal,
					IsCustom:    oi.IsCustom(),
				})
				snapshot.Total = snapshot.Total.Add(oi.Subtotal)
			}
		}

		var requests []model.WaiterRequest
		if err := tx.Where("table_id = ? AND is_active", table.ID).Order("created_at").Find(&requests).Error; err != nil {
			return err
		}
		for _, r := range requests {
			snapshot.WaiterRequests = append(snapshot.WaiterRequests, model.SnapshotRequest{
				Type:        r.Type,
				Description: r.Description,
				Status:      r.Status,
				CreatedAt:   r.CreatedAt,
			})
		}

		history = &model.TableHistory{
			TableID:     table.ID,
			Status:      table.Status,
			ChangedByID: changedBy,
			Timestamp:   time.Now(),
			Snapshot:    datatypes.NewJSONType(snapshot),
		}
		if err := tx.Omit("Table").Create(history).Error; err != nil {
			return err
		}

		if err := archiveTable(tx, table, hasCart, cart.ID, orderIDs); err != nil {
			return err
		}
		if table.Status != model.TableAvailable {
			return tx.Model(table).Update("status", model.TableAvailable).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordTableCleared()
	snap := history.Snapshot.Data()
	s.log.Info("Table cleared",
		zap.Uint("table_number", tableNumber),
		zap.Uint("history_id", history.ID),
		zap.Int("cart_items", len(snap.CartItems)),
		zap.Int("order_items", len(snap.OrderItems)),
		zap.Int("waiter_requests", len(snap.WaiterRequests)))
	return history, nil
}

// archiveTable is the single place where table-scoped records are deactivated
func archiveTable(tx *gorm.DB, table *model.Table, hasCart bool, cartID uint, orderIDs []uint) error {
	if hasCart {
		if err := tx.Model(&model.CartItem{}).Where("cart_id = ? AND is_active", cartID).Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Cart{}).Where("id = ?", cartID).Update("is_active", false).Error; err != nil {
			return err
		}
	}
	if len(orderIDs) > 0 {
		// totals stay as archived, so item hooks are not re-run
		if err := skipHooks(tx).Model(&model.OrderItem{}).Where("order_id IN ?", orderIDs).Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Order{}).Where("id IN ?", orderIDs).Update("is_active", false).Error; err != nil {
			return err
		}
	}
	if err := tx.Model(&model.CustomDish{}).Where("table_id = ? AND is_active", table.ID).Update("is_active", false).Error; err != nil {
		return err
	}
	return tx.Model(&model.WaiterRequest{}).Where("table_id = ? AND is_active", table.ID).Update("is_active", false).Error
}

// History returns the archived snapshots of a table, newest first
func (s *TableService) History(ctx context.Context, tableNumber uint) ([]model.TableHistory, error) {
	db := s.read(ctx)
	table, err := findTable(db, tableNumber)
	if err != nil {
		return nil, err
	}

	var records []model.TableHistory
	if err := db.Where("table_id = ?", table.ID).Order("timestamp DESC, id DESC").Find(&records).Error; err != nil {
		return nil, translateError(err)
	}
	return records, nil
}
