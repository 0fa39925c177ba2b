package services

import (
	"testing"
	"time"

	"match-stake-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPlayer(t *testing.T, env *testEnv, address string, wins, totalWon, played int64) {
	t.Helper()
	require.NoError(t, env.DB.Create(&models.PlayerRecord{
		Address:       address,
		Wins:          wins,
		TotalWon:      totalWon,
		MatchesPlayed: played,
		LastUpdated:   time.Now().UTC(),
	}).Error)
}

func TestLeaderboardOrderingAndTieBreaks(t *testing.T) {
	env := newTestEnv(t)
	seedPlayer(t, env, "0xcc", 1, 500, 2)
	seedPlayer(t, env, "0xaa", 2, 300, 3)
	seedPlayer(t, env, "0xbb", 3, 300, 4) // same totalWon as 0xaa, more wins
	seedPlayer(t, env, "0xdd", 2, 300, 2) // ties 0xaa on totalWon and wins → address
	seedPlayer(t, env, "0xee", 0, 0, 0)

	players, err := env.Leaderboard.Leaderboard(10)
	require.NoError(t, err)
	require.Len(t, players, 5)

	got := make([]string, len(players))
	for i, p := range players {
		got[i] = p.Address
	}
	assert.Equal(t, []string{"0xcc", "0xbb", "0xaa", "0xdd", "0xee"}, got)
}

func TestLeaderboardLimit(t *testing.T) {
	env := newTestEnv(t)
	seedPlayer(t, env, "0xaa", 1, 100, 1)
	seedPlayer(t, env, "0xbb", 2, 200, 2)
	seedPlayer(t, env, "0xcc", 3, 300, 3)

	players, err := env.Leaderboard.Leaderboard(2)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "0xcc", players[0].Address)

	// Out-of-range limits fall back to the default.
	players, err = env.Leaderboard.Leaderboard(-1)
	require.NoError(t, err)
	assert.Len(t, players, 3)
}

func TestPlayerStatsNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Leaderboard.PlayerStats("0xghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHealthCounts(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.Ledger.Purchase("0xbuyer", 100))
	require.NoError(t, env.Ledger.Purchase("0xother", 100))
	env.drain(t)

	report, err := env.Leaderboard.Health()
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.EventCount)
	assert.Equal(t, int64(2), report.PlayerCount)
	assert.Equal(t, uint64(2), report.Watermark)
}
