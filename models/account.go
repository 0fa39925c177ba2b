package models

import "time"

// Account holds a fungible balance keyed by an opaque address.
// Balances are integers in the token's smallest unit — never floats.
// Custody accounts for match escrow live in the same table under a
// "custody:<match_id>" address.
type Account struct {
	Address   string    `gorm:"primaryKey;type:varchar(128)" json:"address"`
	Balance   int64     `gorm:"not null;default:0;check:balance >= 0" json:"balance"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// CustodyAddress returns the escrow holding account for a match.
func CustodyAddress(matchID string) string {
	return "custody:" + matchID
}
