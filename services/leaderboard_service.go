// services/leaderboard_service.go
package services

import (
	"errors"
	"fmt"

	"match-stake-system/models"

	"gorm.io/gorm"
)

// LeaderboardService is the read-only query surface over aggregator state and
// the raw event log.
type LeaderboardService struct {
	DB         *gorm.DB
	Events     *EventService
	Aggregator *AggregatorService
}

func NewLeaderboardService(db *gorm.DB, events *EventService, agg *AggregatorService) *LeaderboardService {
	return &LeaderboardService{DB: db, Events: events, Aggregator: agg}
}

// Leaderboard returns the top players by total winnings. Ties break on wins,
// then address, so the ordering is fully deterministic.
func (s *LeaderboardService) Leaderboard(limit int) ([]models.PlayerRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var players []models.PlayerRecord
	err := s.DB.Order("total_won DESC, wins DESC, address ASC").
		Limit(limit).
		Find(&players).Error
	return players, err
}

// PlayerStats returns a single player's record.
func (s *LeaderboardService) PlayerStats(address string) (*models.PlayerRecord, error) {
	var player models.PlayerRecord
	if err := s.DB.First(&player, "address = ?", address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: player %s", ErrNotFound, address)
		}
		return nil, err
	}
	return &player, nil
}

// RecentEvents returns the newest raw events, by sequence descending.
func (s *LeaderboardService) RecentEvents(limit int) ([]models.MatchEvent, error) {
	return s.Events.RecentEvents(limit)
}

// HealthReport summarizes consumer progress for the health endpoint.
type HealthReport struct {
	EventCount  int64  `json:"event_count"`
	PlayerCount int64  `json:"player_count"`
	Watermark   uint64 `json:"watermark"`
}

func (s *LeaderboardService) Health() (*HealthReport, error) {
	eventCount, err := s.Events.Count()
	if err != nil {
		return nil, err
	}
	var playerCount int64
	if err := s.DB.Model(&models.PlayerRecord{}).Count(&playerCount).Error; err != nil {
		return nil, err
	}
	watermark, err := s.Aggregator.Watermark()
	if err != nil {
		return nil, err
	}
	return &HealthReport{
		EventCount:  eventCount,
		PlayerCount: playerCount,
		Watermark:   watermark,
	}, nil
}
