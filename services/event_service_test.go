package services

import (
	"errors"
	"testing"

	"match-stake-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func appendTestEvents(t *testing.T, env *testEnv, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, env.Events.Append(env.DB, &models.MatchEvent{
			Type:    models.EventPurchase,
			Address: testPlayer1,
			Amount:  int64(i + 1),
		}))
	}
}

func TestAppendAssignsMonotonicSequence(t *testing.T) {
	env := newTestEnv(t)
	appendTestEvents(t, env, 5)

	events, err := env.Events.ReadFrom(0, 10)
	require.NoError(t, err)
	require.Len(t, events, 5)
	for i, ev := range events {
		assert.Equal(t, uint64(i+1), ev.Seq)
		assert.False(t, ev.EmittedAt.IsZero())
	}
}

func TestAppendClaimsSequenceFromHead(t *testing.T) {
	env := newTestEnv(t)
	appendTestEvents(t, env, 3)

	var head models.EventLogHead
	require.NoError(t, env.DB.First(&head, "name = ?", "events").Error)
	assert.Equal(t, uint64(3), head.LastSeq)
}

func TestAbortedAppendLeavesNoSequenceGap(t *testing.T) {
	env := newTestEnv(t)
	appendTestEvents(t, env, 1)

	// A rolled-back append must release its claimed position.
	err := env.DB.Transaction(func(tx *gorm.DB) error {
		if err := env.Events.Append(tx, &models.MatchEvent{
			Type:    models.EventPurchase,
			Address: testPlayer1,
			Amount:  1,
		}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	appendTestEvents(t, env, 1)

	events, err := env.Events.ReadFrom(0, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(1), events[0].Seq)
	assert.Equal(t, uint64(2), events[1].Seq)
}

func TestReadFromIsRestartable(t *testing.T) {
	env := newTestEnv(t)
	appendTestEvents(t, env, 7)

	first, err := env.Events.ReadFrom(1, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)

	// Continue exactly where the last page ended.
	second, err := env.Events.ReadFrom(first[len(first)-1].Seq+1, 10)
	require.NoError(t, err)
	require.Len(t, second, 4)
	assert.Equal(t, uint64(4), second[0].Seq)

	// Re-reading an old position replays the same events.
	replay, err := env.Events.ReadFrom(1, 3)
	require.NoError(t, err)
	assert.Equal(t, first, replay)
}

func TestRecentEventsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	appendTestEvents(t, env, 4)

	recent, err := env.Events.RecentEvents(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, uint64(4), recent[0].Seq)
	assert.Equal(t, uint64(3), recent[1].Seq)
}

func TestAppendRejectsMissingType(t *testing.T) {
	env := newTestEnv(t)
	err := env.Events.Append(env.DB, &models.MatchEvent{Address: testPlayer1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCount(t *testing.T) {
	env := newTestEnv(t)
	appendTestEvents(t, env, 3)

	n, err := env.Events.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
