package models

import (
	"time"

	"gorm.io/gorm"
)

// MatchStatus is the lifecycle state of a staked match.
// Transitions are one-directional: created → staked → settled | refunded.
type MatchStatus string

const (
	MatchStatusCreated  MatchStatus = "created"
	MatchStatusStaked   MatchStatus = "staked"
	MatchStatusSettled  MatchStatus = "settled"
	MatchStatusRefunded MatchStatus = "refunded"
)

// Terminal reports whether no further transition can leave this status.
func (s MatchStatus) Terminal() bool {
	return s == MatchStatusSettled || s == MatchStatusRefunded
}

// Match is a two-party staking match with escrow accounting.
// The escrow held for a match always equals Stake × (number of staked players)
// and lives in the custody account "custody:<id>".
type Match struct {
	ID      string `gorm:"primaryKey;type:varchar(128)" json:"id"`
	Player1 string `gorm:"index;not null;type:varchar(128)" json:"player1"`
	Player2 string `gorm:"index;not null;type:varchar(128)" json:"player2"`

	// Stake is fixed at creation; settlement pays exactly 2× this amount.
	Stake  int64       `gorm:"not null" json:"stake"`
	Status MatchStatus `gorm:"type:varchar(16);not null;default:'created';index" json:"status"`

	Player1Staked bool `gorm:"not null;default:false" json:"player1_staked"`
	Player2Staked bool `gorm:"not null;default:false" json:"player2_staked"`

	// StakeStartTime is set exactly once, on the transition to staked
	// (both players in). The refund timeout counts from here.
	StakeStartTime *time.Time `json:"stake_start_time,omitempty"`

	// Winner is set on settlement, kept for audit.
	Winner *string `gorm:"type:varchar(128)" json:"winner,omitempty"`

	Timestamps
}

// IsPlayer reports whether addr is one of the two match players.
func (m *Match) IsPlayer(addr string) bool {
	return addr == m.Player1 || addr == m.Player2
}

// HasStaked reports whether the given player already staked.
func (m *Match) HasStaked(addr string) bool {
	switch addr {
	case m.Player1:
		return m.Player1Staked
	case m.Player2:
		return m.Player2Staked
	}
	return false
}

// StakedCount is the number of players currently staked (0..2).
func (m *Match) StakedCount() int {
	n := 0
	if m.Player1Staked {
		n++
	}
	if m.Player2Staked {
		n++
	}
	return n
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
