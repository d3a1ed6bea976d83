package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/jwtutil"
	"github.com/MohammedAshfaquem/smatdine-backend/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Actor is the authenticated staff member driving an operation
type Actor struct {
	UserID uint
	Role   string
}

// OrderService converts carts into orders and drives them through the kitchen
type OrderService struct {
	*core
}

type stockChange struct {
	id       uint
	name     string
	stock    int
	minStock int
}

// PlaceOrder turns the table's active cart into a pending order and decrements stock, all or nothing
func (s *OrderService) PlaceOrder(ctx context.Context, tableNumber uint) (*model.Order, error) {
	var (
		order   *model.Order
		changes []stockChange
	)

	err := s.withTx(ctx, "place_order", func(tx *gorm.DB) error {
		table, err := lockTable(tx, tableNumber)
		if err != nil {
			return err
		}

		var cart model.Cart
		err = forUpdate(tx).Where("table_id = ? AND is_active", table.ID).First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return err
		}

		items, err := activeCartItems(tx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		// lock the touched menu items in ascending id order
		required := make(map[uint]int)
		for _, ci := range items {
			if ci.MenuItemID != nil {
				required[*ci.MenuItemID] += ci.Quantity
			}
		}
		ids := make([]uint, 0, len(required))
		for id := range required {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		stock := make(map[uint]model.MenuItem, len(ids))
		if len(ids) > 0 {
			var locked []model.MenuItem
			if err := forUpdate(tx.Unscoped()).Where("id IN ?", ids).Order("id").Find(&locked).Error; err != nil {
				return err
			}
			for _, m := range locked {
				stock[m.ID] = m
			}
		}

		for _, ci := range items {
			if ci.MenuItemID == nil {
				if ci.CustomDish == nil || !ci.CustomDish.IsActive {
					return notFound("custom dish", *ci.CustomDishID)
				}
				continue
			}
			m, ok := stock[*ci.MenuItemID]
			if !ok || m.DeletedAt.Valid || !m.Availability {
				return &InsufficientStockError{ItemName: ci.Name(), Available: 0}
			}
			if m.Stock < required[m.ID] {
				return &InsufficientStockError{ItemName: m.Name, Available: m.Stock}
			}
		}

		order = &model.Order{TableID: table.ID, Status: model.OrderPending, IsActive: true}
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}

		for _, ci := range items {
			oi := model.OrderItem{
				OrderID:  order.ID,
				Quantity: ci.Quantity,
				IsActive: true,
			}
			if ci.MenuItemID != nil {
				m := stock[*ci.MenuItemID]
				oi.SetRef(model.MenuItemRef{ID: m.ID})
				oi.Name = m.Name
				oi.Price = m.Price
				oi.PrepTime = m.PreparationTime
			} else {
				oi.SetRef(model.CustomDishRef{ID: ci.CustomDish.ID})
				oi.Name = ci.CustomDish.Name
				oi.Price = ci.CustomDish.TotalPrice
				oi.PrepTime = ci.CustomDish.PreparationTime

				err := tx.Model(&model.CustomDish{}).Where("id = ?", ci.CustomDish.ID).
					Update("sold_count", gorm.Expr("sold_count + ?", ci.Quantity)).Error
				if err != nil {
					return err
				}
			}
			if err := tx.Omit(clause.Associations).Create(&oi).Error; err != nil {
				return err
			}
		}

		for _, id := range ids {
			res := tx.Model(&model.MenuItem{}).
				Where("id = ? AND stock >= ?", id, required[id]).
				Update("stock", gorm.Expr("stock - ?", required[id]))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				m := stock[id]
				return &InsufficientStockError{ItemName: m.Name, Available: m.Stock}
			}
			m := stock[id]
			changes = append(changes, stockChange{id: id, name: m.Name, stock: m.Stock - required[id], minStock: m.MinStock})
		}

		if err := tx.Model(&model.CartItem{}).Where("cart_id = ? AND is_active", cart.ID).Update("is_active", false).Error; err != nil {
			return err
		}
		if table.Status == model.TableAvailable {
			if err := tx.Model(table).Update("status", model.TableOccupied).Error; err != nil {
				return err
			}
		}

		order, err = loadOrder(tx, order.ID)
		return err
	})
	if err != nil {
		var insufficient *InsufficientStockError
		if errors.As(err, &insufficient) {
			prometheus.RecordStockRejection("order")
			s.log.Info("Order rejected for stock",
				zap.Uint("table_number", tableNumber),
				zap.String("item", insufficient.ItemName),
				zap.Int("available", insufficient.Available))
		}
		return nil, err
	}

	prometheus.RecordOrderPlaced()
	for _, c := range changes {
		prometheus.UpdateMenuItemStock(c.id, c.name, c.stock)
		if c.stock <= c.minStock {
			prometheus.RecordLowStock(c.id)
			s.log.Warn("Menu item stock is low",
				zap.Uint("menu_item_id", c.id),
				zap.String("name", c.name),
				zap.Int("stock", c.stock),
				zap.Int("min_stock", c.minStock))
		}
	}
	s.log.Info("Order placed",
		zap.Uint("order_id", order.ID),
		zap.Uint("table_number", tableNumber),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Int("estimated_time", order.EstimatedTime))
	return order, nil
}

// UpdateStatus moves an order one step forward, enforcing role and chef ownership
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, to model.OrderStatus, actor Actor) (*model.Order, error) {
	var (
		order *model.Order
		from  model.OrderStatus
	)

	err := s.withTx(ctx, "update_order_status", func(tx *gorm.DB) error {
		var locked model.Order
		if err := forUpdate(tx).Where("is_active").First(&locked, orderID).Error; err != nil {
			return lookupError(err, "order", orderID)
		}
		from = locked.Status

		// ownership is checked before the stage so a losing chef sees Forbidden
		if to == model.OrderPreparing || to == model.OrderReady {
			if actor.Role != jwtutil.RoleKitchen && actor.Role != jwtutil.RoleAdmin {
				return ErrForbidden
			}
			if locked.ChefID != nil && *locked.ChefID != actor.UserID {
				return ErrAlreadyAssigned
			}
		}

		if !locked.Status.CanTransitionTo(to) {
			return &InvalidTransitionError{From: locked.Status, To: to}
		}

		updates := map[string]interface{}{"status": to}
		switch to {
		case model.OrderPreparing, model.OrderReady:
			if err := claimOrder(tx, &locked, actor); err != nil {
				return err
			}
			if to == model.OrderPreparing && locked.StartedPreparingAt == nil {
				updates["started_preparing_at"] = time.Now()
			}

		case model.OrderServed:
			isChef := locked.ChefID != nil && *locked.ChefID == actor.UserID
			if !isChef && actor.Role != jwtutil.RoleWaiter && actor.Role != jwtutil.RoleAdmin {
				return ErrForbidden
			}
			if locked.WaiterID == nil {
				locked.WaiterID = &actor.UserID
				updates["waiter_id"] = actor.UserID
			}
		}

		if err := tx.Model(&locked).Updates(updates).Error; err != nil {
			return err
		}

		if to == model.OrderServed {
			if err := recordServed(tx, &locked); err != nil {
				return err
			}
		}

		var err error
		order, err = loadOrder(tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordOrderTransition(string(from), string(to))
	s.log.Info("Order status updated",
		zap.Uint("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Uint("actor_id", actor.UserID),
		zap.String("actor_role", actor.Role))
	return order, nil
}

// MarkServed completes an order
func (s *OrderService) MarkServed(ctx context.Context, orderID uint, actor Actor) (*model.Order, error) {
	return s.UpdateStatus(ctx, orderID, model.OrderServed, actor)
}

// claimOrder assigns the chef exactly once. The order row must be locked.
func claimOrder(tx *gorm.DB, order *model.Order, actor Actor) error {
	if order.ChefID != nil {
		if *order.ChefID != actor.UserID {
			return ErrAlreadyAssigned
		}
		return nil
	}

	res := tx.Model(&model.Order{}).Where("id = ? AND chef_id IS NULL", order.ID).Update("chef_id", actor.UserID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyAssigned
	}
	order.ChefID = &actor.UserID
	return nil
}

// recordServed awards points to the chef and the waiter of a served order. Each award is recorded once.
func recordServed(tx *gorm.DB, order *model.Order) error {
	type award struct {
		userID *uint
		role   model.ScoreRole
	}
	credited := make(map[uint]bool)

	for _, a := range []award{{order.ChefID, model.ScoreChef}, {order.WaiterID, model.ScoreWaiter}} {
		if a.userID == nil {
			continue
		}
		event := model.StaffScoreEvent{UserID: *a.userID, OrderID: order.ID, Role: a.role, Points: model.PointsPerOrder}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&event)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 || credited[*a.userID] {
			continue
		}
		credited[*a.userID] = true

		err := tx.Model(&model.User{}).Where("id = ?", *a.userID).
			Update("orders_completed", gorm.Expr("orders_completed + 1")).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func loadOrder(tx *gorm.DB, id uint) (*model.Order, error) {
	var order model.Order
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Table").
		First(&order, id).Error
	if err != nil {
		return nil, lookupError(err, "order", id)
	}
	return &order, nil
}

// GetOrder returns an order with its items
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	return loadOrder(s.read(ctx), id)
}

// TableOrders returns the active orders of a table, newest first
func (s *OrderService) TableOrders(ctx context.Context, tableNumber uint) ([]model.Order, error) {
	db := s.read(ctx)
	table, err := findTable(db, tableNumber)
	if err != nil {
		return nil, err
	}
	return s.findOrders(db.Where("table_id = ? AND is_active", table.ID).Order("created_at DESC"))
}

// KitchenOrders returns active orders still being worked on, oldest first
func (s *OrderService) KitchenOrders(ctx context.Context) ([]model.Order, error) {
	open := []model.OrderStatus{model.OrderPending, model.OrderPreparing, model.OrderReady}
	return s.findOrders(s.read(ctx).Where("is_active AND status IN ?", open).Order("created_at"))
}

// ListOrders returns every order, optionally filtered by status, newest first
func (s *OrderService) ListOrders(ctx context.Context, status string) ([]model.Order, error) {
	q := s.read(ctx)
	if status != "" {
		st, ok := model.ParseOrderStatus(status)
		if !ok {
			return nil, invalidInput("unknown order status %q", status)
		}
		q = q.Where("status = ?", st)
	}
	return s.findOrders(q.Order("created_at DESC"))
}

func (s *OrderService) findOrders(q *gorm.DB) ([]model.Order, error) {
	var orders []model.Order
	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Table").
		Find(&orders).Error
	if err != nil {
		return nil, translateError(err)
	}
	return orders, nil
}
