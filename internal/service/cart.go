package service

import (
	"context"
	"errors"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"
	"github.com/MohammedAshfaquem/smatdine-backend/prometheus"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartService is the per-table staging area for items not yet ordered
type CartService struct {
	*core
}

// CartLine is a cart item priced against the current catalog
type CartLine struct {
	ID                  uint            `json:"id"`
	MenuItemID          *uint           `json:"menu_item_id,omitempty"`
	CustomDishID        *uint           `json:"custom_dish_id,omitempty"`
	IsCustom            bool            `json:"is_custom"`
	Name                string          `json:"name"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	Quantity            int             `json:"quantity"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
}

// CartView is the active content of a table's cart
type CartView struct {
	CartID      uint            `json:"cart_id"`
	TableNumber uint            `json:"table_number"`
	Items       []CartLine      `json:"items"`
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
}

// GetOrCreateCart returns the table's cart, creating or reactivating it
func (s *CartService) GetOrCreateCart(ctx context.Context, tableNumber uint) (*model.Cart, error) {
	var cart *model.Cart
	err := s.withTx(ctx, "get_or_create_cart", func(tx *gorm.DB) error {
		table, err := lockTable(tx, tableNumber)
		if err != nil {
			return err
		}
		cart, err = getOrCreateCart(tx, table)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// GetActiveCart returns the priced active items of the table's cart
func (s *CartService) GetActiveCart(ctx context.Context, tableNumber uint) (*CartView, error) {
	var view *CartView
	err := s.withTx(ctx, "get_active_cart", func(tx *gorm.DB) error {
		table, err := lockTable(tx, tableNumber)
		if err != nil {
			return err
		}
		cart, err := getOrCreateCart(tx, table)
		if err != nil {
			return err
		}
		items, err := activeCartItems(tx, cart.ID)
		if err != nil {
			return err
		}
		view = newCartView(table, cart, items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AddItem adds quantity of ref to the table's cart, merging with an existing line for the same item
func (s *CartService) AddItem(ctx context.Context, tableNumber uint, ref model.LineItemRef, quantity int, instructions string) (*model.CartItem, error) {
	if ref == nil {
		return nil, invalidInput("%v", model.ErrInvalidLineItemRef)
	}
	if quantity < 1 {
		return nil, invalidInput("quantity must be at least 1")
	}

	var item *model.CartItem
	err := s.withTx(ctx, "cart_add_item", func(tx *gorm.DB) error {
		table, err := lockTable(tx, tableNumber)
		if err != nil {
			return err
		}
		cart, err := getOrCreateCart(tx, table)
		if err != nil {
			return err
		}
		item, err = addToCart(tx, table, cart, ref, quantity, instructions)
		return err
	})
	if err != nil {
		var exceeded *StockExceededError
		if errors.As(err, &exceeded) {
			prometheus.RecordStockRejection("cart")
		}
		return nil, err
	}

	s.log.Info("Item added to cart",
		zap.Uint("table_number", tableNumber),
		zap.String("ref", ref.String()),
		zap.Int("quantity", item.Quantity))
	return item, nil
}

// UpdateQuantity replaces the quantity of a cart line, checked against current stock
func (s *CartService) UpdateQuantity(ctx context.Context, tableNumber, itemID uint, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, invalidInput("quantity must be at least 1")
	}

	var item model.CartItem
	err := s.withTx(ctx, "cart_update_item", func(tx *gorm.DB) error {
		table, err := lockTable(tx, tableNumber)
		if err != nil {
			return err
		}
		if err := findActiveCartItem(tx, table, itemID, &item); err != nil {
			return err
		}

		if item.MenuItemID != nil {
			var menuItem model.MenuItem
			if err := tx.First(&menuItem, *item.MenuItemID).Error; err != nil {
				return lookupError(err, "menu item", *item.MenuItemID)
			}
			if quantity > menuItem.Stock {
				return &StockExceededError{Available: menuItem.Stock}
			}
			item.MenuItem = &menuItem
		}

		item.Quantity = quantity
		return tx.Model(&item).Update("quantity", quantity).Error
	})
	if err != nil {
		var exceeded *StockExceededError
		if errors.As(err, &exceeded) {
			prometheus.RecordStockRejection("cart")
		}
		return nil, err
	}
	return &item, nil
}

// RemoveItem deactivates one cart line
func (s *CartService) RemoveItem(ctx context.Context, tableNumber, itemID uint) error {
	return s.withTx(ctx, "cart_remove_item", func(tx *gorm.DB) error {
		table, err := lockTable(tx, tableNumber)
		if err != nil {
			return err
		}
		var item model.CartItem
		if err := findActiveCartItem(tx, table, itemID, &item); err != nil {
			return err
		}
		return tx.Model(&item).Update("is_active", false).Error
	})
}

// ClearCart deactivates every active line of the table's cart
func (s *CartService) ClearCart(ctx context.Context, tableNumber uint) error {
	return s.withTx(ctx, "cart_clear", func(tx *gorm.DB) error {
		table, err := lockTable(tx, tableNumber)
		if err != nil {
			return err
		}
		return tx.Model(&model.CartItem{}).
			Where("is_active AND cart_id IN (?)", tx.Model(&model.Cart{}).Select("id").Where("table_id = ?", table.ID)).
			Update("is_active", false).Error
	})
}

// CartCount returns the total quantity of active items in the table's cart
func (s *CartService) CartCount(ctx context.Context, tableNumber uint) (int, error) {
	return s.sumQuantity(ctx, tableNumber, nil)
}

// ItemQuantity returns how many of a menu item are in the table's cart
func (s *CartService) ItemQuantity(ctx context.Context, tableNumber, menuItemID uint) (int, error) {
	return s.sumQuantity(ctx, tableNumber, &menuItemID)
}

func (s *CartService) sumQuantity(ctx context.Context, tableNumber uint, menuItemID *uint) (int, error) {
	db := s.read(ctx)
	table, err := findTable(db, tableNumber)
	if err != nil {
		return 0, err
	}

	q := db.Model(&model.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.table_id = ? AND carts.is_active AND cart_items.is_active", table.ID)
	if menuItemID != nil {
		q = q.Where("cart_items.menu_item_id = ?", *menuItemID)
	}

	var total int
	if err := q.Select("COALESCE(SUM(cart_items.quantity), 0)").Scan(&total).Error; err != nil {
		return 0, translateError(err)
	}
	return total, nil
}

// getOrCreateCart must run with the table row locked
func getOrCreateCart(tx *gorm.DB, table *model.Table) (*model.Cart, error) {
	cart := model.Cart{TableID: table.ID, IsActive: true}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "table_id"}},
		DoNothing: true,
	}).Create(&cart).Error
	if err != nil {
		return nil, err
	}

	if err := forUpdate(tx).Where("table_id = ?", table.ID).First(&cart).Error; err != nil {
		return nil, err
	}
	if !cart.IsActive {
		if err := tx.Model(&cart).Update("is_active", true).Error; err != nil {
			return nil, err
		}
	}
	return &cart, nil
}

func activeCartItems(tx *gorm.DB, cartID uint) ([]model.CartItem, error) {
	var items []model.CartItem
	err := tx.Where("cart_id = ? AND is_active", cartID).
		Preload("MenuItem", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("CustomDish").
		Order("id").
		Find(&items).Error
	return items, err
}

func findActiveCartItem(tx *gorm.DB, table *model.Table, itemID uint, item *model.CartItem) error {
	err := tx.Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND cart_items.is_active AND carts.table_id = ?", itemID, table.ID).
		First(item).Error
	return lookupError(err, "cart item", itemID)
}

// addToCart merges quantity into the active line for ref, creating it if needed
func addToCart(tx *gorm.DB, table *model.Table, cart *model.Cart, ref model.LineItemRef, quantity int, instructions string) (*model.CartItem, error) {
	var existing model.CartItem
	q := tx.Where("cart_id = ? AND is_active", cart.ID)

	switch r := ref.(type) {
	case model.MenuItemRef:
		var menuItem model.MenuItem
		if err := tx.First(&menuItem, r.ID).Error; err != nil {
			return nil, lookupError(err, "menu item", r.ID)
		}
		if !menuItem.Availability {
			return nil, invalidInput("%s is not available", menuItem.Name)
		}

		err := q.Where("menu_item_id = ?", r.ID).First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		inCart := 0
		if err == nil {
			inCart = existing.Quantity
		}
		if inCart+quantity > menuItem.Stock {
			remaining := menuItem.Stock - inCart
			if remaining < 0 {
				remaining = 0
			}
			return nil, &StockExceededError{Available: remaining}
		}
		existing.MenuItem = &menuItem

	case model.CustomDishRef:
		var dish model.CustomDish
		if err := tx.Where("is_active").First(&dish, r.ID).Error; err != nil {
			return nil, lookupError(err, "custom dish", r.ID)
		}
		if dish.TableID != nil && *dish.TableID != table.ID {
			return nil, ErrForbidden
		}

		err := q.Where("custom_dish_id = ?", r.ID).First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		existing.CustomDish = &dish

	default:
		return nil, invalidInput("%v", model.ErrInvalidLineItemRef)
	}

	if existing.ID != 0 {
		existing.Quantity += quantity
		updates := map[string]interface{}{"quantity": existing.Quantity}
		if instructions != "" {
			existing.SpecialInstructions = instructions
			updates["special_instructions"] = instructions
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}

	item := model.CartItem{
		CartID:              cart.ID,
		Quantity:            quantity,
		SpecialInstructions: instructions,
		IsActive:            true,
		MenuItem:            existing.MenuItem,
		CustomDish:          existing.CustomDish,
	}
	item.SetRef(ref)
	if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func newCartView(table *model.Table, cart *model.Cart, items []model.CartItem) *CartView {
	view := &CartView{
		CartID:      cart.ID,
		TableNumber: table.TableNumber,
		Items:       make([]CartLine, 0, len(items)),
		Total:       decimal.Zero,
	}
	for i := range items {
		ci := &items[i]
		line := CartLine{
			ID:                  ci.ID,
			MenuItemID:          ci.MenuItemID,
			CustomDishID:        ci.CustomDishID,
			IsCustom:            ci.IsCustom(),
			Name:                ci.Name(),
			UnitPrice:           ci.UnitPrice(),
			Quantity:            ci.Quantity,
			Subtotal:            ci.Subtotal(),
			SpecialInstructions: ci.SpecialInstructions,
		}
		view.Items = append(view.Items, line)
		view.Count += ci.Quantity
		view.Total = view.Total.Add(line.Subtotal)
	}
	return view
}
