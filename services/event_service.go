// services/event_service.go
package services

import (
	"fmt"
	"time"

	"match-stake-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const eventLogHead = "events"

// EventService is the append-only event log. Each append claims the next
// monotonic sequence position from the log head row; prior entries are never
// mutated or removed. It is the sole channel between the match engine /
// purchase source and downstream consumers — the aggregator never reads
// engine state directly.
type EventService struct {
	DB *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

// Append writes an event inside the caller's transaction so the state
// mutation and its event land atomically (the log shares the store, so the
// events table is its own outbox).
func (s *EventService) Append(tx *gorm.DB, ev *models.MatchEvent) error {
	if ev.Type == "" {
		return fmt.Errorf("%w: event type is required", ErrInvalidArgument)
	}
	seq, err := s.nextSeq(tx)
	if err != nil {
		return err
	}
	ev.Seq = seq
	if ev.EmittedAt.IsZero() {
		ev.EmittedAt = time.Now().UTC()
	}
	return tx.Create(ev).Error
}

// nextSeq claims the next sequence position by incrementing the head row.
// The row's write lock is held until the surrounding transaction commits, so
// two appends cannot commit out of sequence order and a reader never sees a
// gap that a later commit would fill. An aborted append releases its position
// back with the rollback.
func (s *EventService) nextSeq(tx *gorm.DB) (uint64, error) {
	res := tx.Model(&models.EventLogHead{}).
		Where("name = ?", eventLogHead).
		Update("last_seq", gorm.Expr("last_seq + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		// First append ever: seed the head row, then claim again.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.EventLogHead{Name: eventLogHead}).Error; err != nil {
			return 0, err
		}
		res = tx.Model(&models.EventLogHead{}).
			Where("name = ?", eventLogHead).
			Update("last_seq", gorm.Expr("last_seq + 1"))
		if res.Error != nil {
			return 0, res.Error
		}
	}
	var head models.EventLogHead
	if err := tx.First(&head, "name = ?", eventLogHead).Error; err != nil {
		return 0, err
	}
	return head.LastSeq, nil
}

// ReadFrom returns up to limit events at or after pos, in sequence order.
// Restartable: calling again with the last seq + 1 continues the scan.
func (s *EventService) ReadFrom(pos uint64, limit int) ([]models.MatchEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []models.MatchEvent
	err := s.DB.Where("seq >= ?", pos).
		Order("seq ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// RecentEvents returns the most recent limit events, newest first.
func (s *EventService) RecentEvents(limit int) ([]models.MatchEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var events []models.MatchEvent
	err := s.DB.Order("seq DESC").Limit(limit).Find(&events).Error
	return events, err
}

// Count returns the total number of events on the log.
func (s *EventService) Count() (int64, error) {
	var n int64
	err := s.DB.Model(&models.MatchEvent{}).Count(&n).Error
	return n, err
}
