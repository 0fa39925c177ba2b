package models

import "time"

// PlayerRecord is the aggregator's per-address accumulation, derivable purely
// as a fold over the event log. Replaying the full history from an empty table
// must reproduce these values exactly.
type PlayerRecord struct {
	Address       string    `gorm:"primaryKey;type:varchar(128)" json:"address"`
	Wins          int64     `gorm:"not null;default:0;index" json:"wins"`
	TotalWon      int64     `gorm:"not null;default:0;index" json:"total_won"`
	MatchesPlayed int64     `gorm:"not null;default:0" json:"matches_played"`
	LastUpdated   time.Time `json:"last_updated"`
}
