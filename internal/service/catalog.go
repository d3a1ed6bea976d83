package service

import (
	"context"
	"errors"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"
	"github.com/MohammedAshfaquem/smatdine-backend/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogService is the read side of menu items, bases and ingredients
type CatalogService struct {
	*core
}

// ListMenu returns the menu, optionally filtered by category. Customers only see orderable items.
func (s *CatalogService) ListMenu(ctx context.Context, category string, includeUnavailable bool) ([]model.MenuItem, error) {
	q := s.read(ctx).Model(&model.MenuItem{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if !includeUnavailable {
		q = q.Where("availability = ? AND stock > 0", true)
	}

	var items []model.MenuItem
	if err := q.Order("category, name").Find(&items).Error; err != nil {
		return nil, translateError(err)
	}
	return items, nil
}

// GetMenuItem returns one menu item
func (s *CatalogService) GetMenuItem(ctx context.Context, id uint) (*model.MenuItem, error) {
	var item model.MenuItem
	if err := s.read(ctx).First(&item, id).Error; err != nil {
		return nil, lookupError(err, "menu item", id)
	}
	return &item, nil
}

// LowStock lists menu items at or below their minimum stock
func (s *CatalogService) LowStock(ctx context.Context) ([]model.MenuItem, error) {
	var items []model.MenuItem
	if err := s.read(ctx).Where("stock <= min_stock").Order("stock, name").Find(&items).Error; err != nil {
		return nil, translateError(err)
	}
	return items, nil
}

// ListBases returns every custom dish base
func (s *CatalogService) ListBases(ctx context.Context) ([]model.Base, error) {
	var bases []model.Base
	if err := s.read(ctx).Order("name").Find(&bases).Error; err != nil {
		return nil, translateError(err)
	}
	return bases, nil
}

// GetBase returns one base
func (s *CatalogService) GetBase(ctx context.Context, id uint) (*model.Base, error) {
	var base model.Base
	if err := s.read(ctx).First(&base, id).Error; err != nil {
		return nil, lookupError(err, "base", id)
	}
	return &base, nil
}

// ListIngredients returns ingredients, optionally of one category
func (s *CatalogService) ListIngredients(ctx context.Context, category model.IngredientCategory) ([]model.Ingredient, error) {
	q := s.read(ctx).Model(&model.Ingredient{})
	if category != "" {
		if !category.Valid() {
			return nil, invalidInput("unknown ingredient category %q", category)
		}
		q = q.Where("category = ?", category)
	}

	var ingredients []model.Ingredient
	if err := q.Order("category, name").Find(&ingredients).Error; err != nil {
		return nil, translateError(err)
	}
	return ingredients, nil
}

// GetIngredient returns one ingredient
func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	if err := s.read(ctx).First(&ingredient, id).Error; err != nil {
		return nil, lookupError(err, "ingredient", id)
	}
	return &ingredient, nil
}

// SeedMenuItem is a menu item as written in a seed file. A missing min_stock means model.DefaultMinStock.
type SeedMenuItem struct {
	model.MenuItem
	MinStock *int `json:"min_stock"`
}

// Item returns the menu item with its low-stock threshold resolved
func (s SeedMenuItem) Item() model.MenuItem {
	item := s.MenuItem
	item.MinStock = model.DefaultMinStock
	if s.MinStock != nil {
		item.MinStock = *s.MinStock
	}
	return item
}

// CatalogSeed is the reference data loaded by the seed command
type CatalogSeed struct {
	Tables      []model.Table      `json:"tables"`
	MenuItems   []SeedMenuItem     `json:"menu_items"`
	Bases       []model.Base       `json:"bases"`
	Ingredients []model.Ingredient `json:"ingredients"`
	Staff       []model.User       `json:"staff"`
}

// Seed loads reference data idempotently, matching rows by their natural key
func (s *CatalogService) Seed(ctx context.Context, seed *CatalogSeed) error {
	err := s.withTx(ctx, "seed_catalog", func(tx *gorm.DB) error {
		for i := range seed.Tables {
			t := seed.Tables[i]
			if t.Status == "" {
				t.Status = model.TableAvailable
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "table_number"}},
				DoUpdates: clause.AssignmentColumns([]string{"seats", "updated_at"}),
			}).Create(&t).Error
			if err != nil {
				return err
			}
		}

		for i := range seed.Bases {
			b := seed.Bases[i]
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"price", "preparation_time"}),
			}).Create(&b).Error
			if err != nil {
				return err
			}
		}

		for i := range seed.Ingredients {
			in := seed.Ingredients[i]
			if !in.Category.Valid() {
				return invalidInput("ingredient %q has unknown category %q", in.Name, in.Category)
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"category", "price", "preparation_time"}),
			}).Create(&in).Error
			if err != nil {
				return err
			}
		}

		for i := range seed.Staff {
			u := seed.Staff[i]
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "email"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "role", "updated_at"}),
			}).Create(&u).Error
			if err != nil {
				return err
			}
		}

		for i := range seed.MenuItems {
			item := seed.MenuItems[i].Item()
			var existing model.MenuItem
			err := tx.Where("name = ?", item.Name).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				err = tx.Create(&item).Error
			case err == nil:
				item.ID = existing.ID
				item.CreatedAt = existing.CreatedAt
				err = tx.Save(&item).Error
			}
			if err != nil {
				return err
			}
			seed.MenuItems[i].MenuItem = item
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, item := range seed.MenuItems {
		prometheus.UpdateMenuItemStock(item.ID, item.Name, item.Stock)
	}
	s.log.Info("Catalog seeded",
		zap.Int("tables", len(seed.Tables)),
		zap.Int("menu_items", len(seed.MenuItems)),
		zap.Int("bases", len(seed.Bases)),
		zap.Int("ingredients", len(seed.Ingredients)),
		zap.Int("staff", len(seed.Staff)))
	return nil
}

func lookupError(err error, what string, key interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what, key)
	}
	return translateError(err)
}
