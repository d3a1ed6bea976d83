package service

import (
	"context"

	"github.com/MohammedAshfaquem/smatdine-backend/internal/model"
)

// LeaderboardEntry is the standing of one staff member
type LeaderboardEntry struct {
	UserID          uint   `json:"user_id"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	OrdersCompleted int    `json:"orders_completed"`
	Points          int    `json:"points"`
}

// LeaderboardService ranks staff by points earned on served orders
type LeaderboardService struct {
	*core
}

// Leaderboard sums score events per staff member, highest first
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	err := s.read(ctx).Model(&model.StaffScoreEvent{}).
		Select(`staff_score_events.user_id,
			COALESCE(users.name, '') AS name,
			COALESCE(users.role, '') AS role,
			COUNT(DISTINCT staff_score_events.order_id) AS orders_completed,
			SUM(staff_score_events.points) AS points`).
		Joins("LEFT JOIN users ON users.id = staff_score_events.user_id").
		Group("staff_score_events.user_id, users.name, users.role").
		Order("points DESC, staff_score_events.user_id").
		Scan(&entries).Error
	if err != nil {
		return nil, translateError(err)
	}
	return entries, nil
}
