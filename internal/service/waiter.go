package service

import (
	"context"
	"strings"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WaiterService is the queue of service requests raised by tables
type WaiterService struct {
	*core
}

// Create raises a request for a table. General requests need a description.
func (s *WaiterService) Create(ctx context.Context, tableNumber uint, kind model.WaiterRequestType, description string) (*model.WaiterRequest, error) {
	if !kind.Valid() {
		return nil, invalidInput("unknown request type %q", kind)
	}
	description = strings.TrimSpace(description)
	if kind == model.RequestGeneral && description == "" {
		return nil, invalidInput("a general request needs a description")
	}

	var req *model.WaiterRequest
	err := s.withTx(ctx, "create_waiter_request", func(tx *gorm.DB) error {
		table, err := findTable(tx, tableNumber)
		if err != nil {
			return err
		}
		req = &model.WaiterRequest{
			TableID:     table.ID,
			Type:        kind,
			Description: description,
			Status:      model.RequestPending,
			IsActive:    true,
		}
		if err := tx.Omit("Table").Create(req).Error; err != nil {
			return err
		}
		req.Table = table
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Waiter requested",
		zap.Uint("request_id", req.ID),
		zap.Uint("table_number", tableNumber),
		zap.String("type", string(kind)))
	return req, nil
}

// ListActive returns active requests oldest first, optionally of one status
func (s *WaiterService) ListActive(ctx context.Context, status model.WaiterRequestStatus) ([]model.WaiterRequest, error) {
	q := s.read(ctx).Where("is_active")
	if status != "" {
		if !status.Valid() {
			return nil, invalidInput("unknown request status %q", status)
		}
		q = q.Where("status = ?", status)
	}
	return findRequests(q)
}

// ByTable returns the active requests of one table, oldest first
func (s *WaiterService) ByTable(ctx context.Context, tableNumber uint) ([]model.WaiterRequest, error) {
	db := s.read(ctx)
	table, err := findTable(db, tableNumber)
	if err != nil {
		return nil, err
	}
	return findRequests(db.Where("table_id = ? AND is_active", table.ID))
}

func findRequests(q *gorm.DB) ([]model.WaiterRequest, error) {
	var requests []model.WaiterRequest
	if err := q.Preload("Table").Order("created_at, id").Find(&requests).Error; err != nil {
		return nil, translateError(err)
	}
	return requests, nil
}

// UpdateStatus moves a request forward: pending, in-progress, completed
func (s *WaiterService) UpdateStatus(ctx context.Context, id uint, status model.WaiterRequestStatus) (*model.WaiterRequest, error) {
	if !status.Valid() {
		return nil, invalidInput("unknown request status %q", status)
	}

	var req model.WaiterRequest
	err := s.withTx(ctx, "update_waiter_request", func(tx *gorm.DB) error {
		if err := forUpdate(tx).Where("is_active").First(&req, id).Error; err != nil {
			return lookupError(err, "waiter request", id)
		}
		if !req.Status.Advances(status) {
			return invalidInput("cannot move request from %s to %s", req.Status, status)
		}
		req.Status = status
		return tx.Model(&req).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}
