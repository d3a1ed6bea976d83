package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/imagegen"
	"github.com/MohammedAshfaquem/smatdine-backend/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngredientSelection is one requested ingredient of a custom dish
type IngredientSelection struct {
	IngredientID uint `json:"ingredient_id"`
	Quantity     int  `json:"quantity"`
}

// CreateCustomDishInput describes a new custom dish
type CreateCustomDishInput struct {
	Name        string                `json:"name"`
	BaseID      uint                  `json:"base_id"`
	Ingredients []IngredientSelection `json:"ingredients"`
	Notes       string                `json:"notes"`
}

// ComposerService builds priced custom dishes from a base and ingredients
type ComposerService struct {
	*core
	images ImageGenerator
	wg     sync.WaitGroup
}

// normalizeSelections clamps quantities to at least one and merges repeated ingredients
func normalizeSelections(selections []IngredientSelection) []IngredientSelection {
	merged := make(map[uint]int, len(selections))
	for _, sel := range selections {
		qty := sel.Quantity
		if qty < 1 {
			qty = 1
		}
		merged[sel.IngredientID] += qty
	}

	out := make([]IngredientSelection, 0, len(merged))
	for id, qty := range merged {
		out = append(out, IngredientSelection{IngredientID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IngredientID < out[j].IngredientID })
	return out
}

// loadIngredients fails with NotFound if any selected ingredient is missing
func loadIngredients(tx *gorm.DB, selections []IngredientSelection) (map[uint]model.Ingredient, error) {
	ids := make([]uint, 0, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.IngredientID)
	}

	byID := make(map[uint]model.Ingredient, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	var ingredients []model.Ingredient
	if err := tx.Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	for _, in := range ingredients {
		byID[in.ID] = in
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, notFound("ingredient", id)
		}
	}
	return byID, nil
}

func priceSelections(base *model.Base, selections []IngredientSelection, byID map[uint]model.Ingredient) (*model.CustomDish, []model.CustomDishIngredient) {
	lines := make([]model.IngredientLine, 0, len(selections))
	joins := make([]model.CustomDishIngredient, 0, len(selections))
	for _, sel := range selections {
		in := byID[sel.IngredientID]
		lines = append(lines, model.IngredientLine{Price: in.Price, PreparationTime: in.PreparationTime, Quantity: sel.Quantity})
		joins = append(joins, model.CustomDishIngredient{IngredientID: in.ID, Quantity: sel.Quantity})
	}

	price, prep := model.PriceCustomDish(base, lines)
	return &model.CustomDish{TotalPrice: price, PreparationTime: prep}, joins
}

// insertDish persists the dish then its ingredient rows
func insertDish(tx *gorm.DB, dish *model.CustomDish, joins []model.CustomDishIngredient) error {
	if err := tx.Omit(clause.Associations).Create(dish).Error; err != nil {
		return err
	}
	for i := range joins {
		joins[i].CustomDishID = dish.ID
		if err := tx.Omit(clause.Associations).Create(&joins[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func loadDish(tx *gorm.DB, id uint) (*model.CustomDish, error) {
	var dish model.CustomDish
	err := tx.Preload("Base").Preload("Ingredients.Ingredient").First(&dish, id).Error
	if err != nil {
		return nil, lookupError(err, "custom dish", id)
	}
	return &dish, nil
}

// CreateCustomDish composes, prices and persists a dish for a table
func (s *ComposerService) CreateCustomDish(ctx context.Context, tableNumber uint, in CreateCustomDishInput) (*model.CustomDish, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalidInput("name is required")
	}
	selections := normalizeSelections(in.Ingredients)

	var dish *model.CustomDish
	err := s.withTx(ctx, "create_custom_dish", func(tx *gorm.DB) error {
		table, err := findTable(tx, tableNumber)
		if err != nil {
			return err
		}

		var base model.Base
		if err := tx.First(&base, in.BaseID).Error; err != nil {
			return lookupError(err, "base", in.BaseID)
		}
		byID, err := loadIngredients(tx, selections)
		if err != nil {
			return err
		}

		priced, joins := priceSelections(&base, selections, byID)
		priced.Name = name
		priced.BaseID = &base.ID
		priced.TableID = &table.ID
		priced.Notes = in.Notes
		priced.IsActive = true
		if s.images != nil {
			priced.ImageStatus = model.ImagePending
		}

		if err := insertDish(tx, priced, joins); err != nil {
			return err
		}
		dish, err = loadDish(tx, priced.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordCustomDishCreated()
	s.log.Info("Custom dish created",
		zap.Uint("dish_id", dish.ID),
		zap.Uint("table_number", tableNumber),
		zap.String("total_price", dish.TotalPrice.StringFixed(2)),
		zap.Int("preparation_time", dish.PreparationTime))

	s.enrichImage(dish)
	return dish, nil
}

// UpdateIngredients replaces the ingredient set of a dish. Price and preparation time follow through the model hooks.
func (s *ComposerService) UpdateIngredients(ctx context.Context, dishID uint, selections []IngredientSelection) (*model.CustomDish, error) {
	selections = normalizeSelections(selections)

	var dish *model.CustomDish
	err := s.withTx(ctx, "update_custom_dish_ingredients", func(tx *gorm.DB) error {
		var locked model.CustomDish
		if err := forUpdate(tx).First(&locked, dishID).Error; err != nil {
			return lookupError(err, "custom dish", dishID)
		}
		if _, err := loadIngredients(tx, selections); err != nil {
			return err
		}

		var current []model.CustomDishIngredient
		if err := tx.Where("custom_dish_id = ?", dishID).Find(&current).Error; err != nil {
			return err
		}

		wanted := make(map[uint]int, len(selections))
		for _, sel := range selections {
			wanted[sel.IngredientID] = sel.Quantity
		}

		var removed []model.CustomDishIngredient
		for i := range current {
			row := current[i]
			qty, keep := wanted[row.IngredientID]
			switch {
			case !keep:
				removed = append(removed, row)
			case qty != row.Quantity:
				row.Quantity = qty
				if err := tx.Omit(clause.Associations).Save(&row).Error; err != nil {
					return err
				}
			}
			delete(wanted, row.IngredientID)
		}
		if len(removed) > 0 {
			if err := tx.Delete(&removed).Error; err != nil {
				return err
			}
		}
		for _, sel := range selections {
			if _, isNew := wanted[sel.IngredientID]; !isNew {
				continue
			}
			row := model.CustomDishIngredient{CustomDishID: dishID, IngredientID: sel.IngredientID, Quantity: sel.Quantity}
			if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
				return err
			}
		}

		// an emptied dish has no row left to trigger the hooks
		if len(selections) == 0 {
			if err := model.RecomputeCustomDish(tx, dishID); err != nil {
				return err
			}
		}

		var err error
		dish, err = loadDish(tx, dishID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return dish, nil
}

// ListByTable returns the active custom dishes of a table
func (s *ComposerService) ListByTable(ctx context.Context, tableNumber uint) ([]model.CustomDish, error) {
	db := s.read(ctx)
	table, err := findTable(db, tableNumber)
	if err != nil {
		return nil, err
	}

	var dishes []model.CustomDish
	err = db.Preload("Base").Preload("Ingredients.Ingredient").
		Where("table_id = ? AND is_active", table.ID).
		Order("created_at DESC").
		Find(&dishes).Error
	if err != nil {
		return nil, translateError(err)
	}
	return dishes, nil
}

// ListAll returns every custom dish, newest first
func (s *ComposerService) ListAll(ctx context.Context) ([]model.CustomDish, error) {
	var dishes []model.CustomDish
	err := s.read(ctx).Preload("Base").Preload("Ingredients.Ingredient").
		Order("created_at DESC").
		Find(&dishes).Error
	if err != nil {
		return nil, translateError(err)
	}
	return dishes, nil
}

// Reorder copies a dish for a table at current catalog prices and adds it to that table's cart
func (s *ComposerService) Reorder(ctx context.Context, dishID, tableNumber uint, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	var item *model.CartItem
	err := s.withTx(ctx, "reorder_custom_dish", func(tx *gorm.DB) error {
		table, err := lockTable(tx, tableNumber)
		if err != nil {
			return err
		}
		source, err := loadDish(tx, dishID)
		if err != nil {
			return err
		}

		selections := make([]IngredientSelection, 0, len(source.Ingredients))
		byID := make(map[uint]model.Ingredient, len(source.Ingredients))
		for _, di := range source.Ingredients {
			selections = append(selections, IngredientSelection{IngredientID: di.IngredientID, Quantity: di.Quantity})
			byID[di.IngredientID] = di.Ingredient
		}

		copied, joins := priceSelections(source.Base, selections, byID)
		copied.Name = source.Name
		copied.BaseID = source.BaseID
		copied.TableID = &table.ID
		copied.Notes = source.Notes
		copied.ImageURL = source.ImageURL
		copied.ImageStatus = source.ImageStatus
		copied.IsActive = true
		if err := insertDish(tx, copied, joins); err != nil {
			return err
		}

		cart, err := getOrCreateCart(tx, table)
		if err != nil {
			return err
		}
		item, err = addToCart(tx, table, cart, model.CustomDishRef{ID: copied.ID}, quantity, "")
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Custom dish reordered",
		zap.Uint("source_dish_id", dishID),
		zap.Uint("dish_id", *item.CustomDishID),
		zap.Uint("table_number", tableNumber))
	return item, nil
}

// enrichImage renders the dish picture in the background. Failures only mark the dish.
func (s *ComposerService) enrichImage(dish *model.CustomDish) {
	if s.images == nil {
		return
	}

	req := imagegen.GenerateRequest{DishID: dish.ID, Name: dish.Name}
	if dish.Base != nil {
		req.Base = dish.Base.Name
	}
	for _, di := range dish.Ingredients {
		req.Ingredients = append(req.Ingredients, di.Ingredient.Name)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		updates := map[string]interface{}{"image_status": model.ImageDone}
		url, err := s.images.Generate(context.Background(), req)
		if err != nil {
			s.log.Warn("Custom dish image generation failed", zap.Uint("dish_id", req.DishID), zap.Error(err))
			updates["image_status"] = model.ImageFailed
			prometheus.RecordImageGeneration(string(model.ImageFailed))
		} else {
			updates["image_url"] = url
			prometheus.RecordImageGeneration(string(model.ImageDone))
		}

		if err := s.db.Model(&model.CustomDish{}).Where("id = ?", req.DishID).Updates(updates).Error; err != nil {
			s.log.Error("Failed to store custom dish image status", zap.Uint("dish_id", req.DishID), zap.Error(err))
		}
	}()
}

// Wait blocks until background image generations have finished
func (s *ComposerService) Wait() {
	s.wg.Wait()
}
