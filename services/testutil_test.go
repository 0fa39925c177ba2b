package services

import (
	"testing"
	"time"

	"match-stake-system/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testOperator = "0xoperator"
	testPlayer1  = "0xp1"
	testPlayer2  = "0xp2"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection so every session sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.Match{},
		&models.MatchEvent{},
		&models.EventLogHead{},
		&models.PlayerRecord{},
		&models.AggregatorCursor{},
	))
	return db
}

type testEnv struct {
	DB          *gorm.DB
	Events      *EventService
	Ledger      *LedgerService
	Matches     *MatchService
	Aggregator  *AggregatorService
	Leaderboard *LeaderboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	events := NewEventService(db)
	ledger := NewLedgerService(db, events)
	roles := RoleConfig{OperatorAddress: testOperator, CreatorAddress: testOperator}
	matches := NewMatchService(db, ledger, events, roles, time.Hour)
	agg := NewAggregatorService(db, events)
	return &testEnv{
		DB:          db,
		Events:      events,
		Ledger:      ledger,
		Matches:     matches,
		Aggregator:  agg,
		Leaderboard: NewLeaderboardService(db, events, agg),
	}
}

// fund credits an account directly, without emitting a purchase event.
func (e *testEnv) fund(t *testing.T, address string, amount int64) {
	t.Helper()
	require.NoError(t, e.Ledger.creditTx(e.DB, address, amount))
}

// backdateStake rewinds a match's stake start so the refund timeout has passed.
func (e *testEnv) backdateStake(t *testing.T, matchID string, age time.Duration) {
	t.Helper()
	past := time.Now().UTC().Add(-age)
	require.NoError(t, e.DB.Model(&models.Match{}).
		Where("id = ?", matchID).
		Update("stake_start_time", past).Error)
}

// drain runs the aggregator until it has applied every pending event.
func (e *testEnv) drain(t *testing.T) int {
	t.Helper()
	total := 0
	for {
		applied, err := e.Aggregator.ProcessOnce(t.Context())
		require.NoError(t, err)
		if applied == 0 {
			return total
		}
		total += applied
	}
}
