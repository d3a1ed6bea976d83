package service

import (
	"context"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeedbackService stores customer ratings, one per order
type FeedbackService struct {
	*core
}

// Submit records or replaces the feedback of an order
func (s *FeedbackService) Submit(ctx context.Context, orderID uint, rating int, comment string) (*model.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, invalidInput("rating must be between 1 and 5")
	}

	var fb model.Feedback
	err := s.withTx(ctx, "submit_feedback", func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return lookupError(err, "order", orderID)
		}

		fb = model.Feedback{TableID: order.TableID, OrderID: order.ID, Rating: rating, Comment: comment}
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
		}).Create(&fb).Error
		if err != nil {
			return err
		}
		return tx.Where("order_id = ?", order.ID).First(&fb).Error
	})
	if err != nil {
		return nil, err
	}
	return &fb, nil
}
