package models

import "time"

// EventType classifies a domain event on the append-only log.
type EventType string

const (
	EventMatchCreated EventType = "match_created"
	EventStaked       EventType = "staked"
	EventSettled      EventType = "settled"
	EventRefunded     EventType = "refunded"
	EventPurchase     EventType = "purchase"
)

// MatchEvent is an immutable record of a state transition. Seq is the origin
// sequence position, the total order of the log, claimed from EventLogHead on
// append and never reused. Rows are never updated or deleted.
//
// Address is the primary subject (initiator, staker, winner, refunded player,
// purchaser). Counterparty carries the second player on match_created.
type MatchEvent struct {
	Seq          uint64    `gorm:"primaryKey;autoIncrement:false" json:"seq"`
	Type         EventType `gorm:"type:varchar(24);not null;index" json:"type"`
	MatchID      *string   `gorm:"index;type:varchar(128)" json:"match_id,omitempty"` // nil for purchase
	Address      string    `gorm:"index;not null;type:varchar(128)" json:"address"`
	Counterparty string    `gorm:"type:varchar(128)" json:"counterparty,omitempty"`
	Amount       int64     `json:"amount"`
	EmittedAt    time.Time `gorm:"not null;autoCreateTime" json:"emitted_at"`
}

// EventLogHead is the single row every append increments to claim its Seq.
// The row lock it takes holds until the appending transaction commits, so
// events become visible in sequence order with no reorderable gaps.
type EventLogHead struct {
	Name    string `gorm:"primaryKey;type:varchar(32)" json:"name"`
	LastSeq uint64 `gorm:"not null;default:0" json:"last_seq"`
}

// AggregatorCursor is the durable watermark of an event consumer: the highest
// sequence position it has applied. One row per consumer name.
type AggregatorCursor struct {
	Consumer    string    `gorm:"primaryKey;type:varchar(64)" json:"consumer"`
	LastApplied uint64    `gorm:"not null;default:0" json:"last_applied"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
