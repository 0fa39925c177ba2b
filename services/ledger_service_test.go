package services

import (
	"testing"

	"match-stake-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceOfUnknownAccountIsZero(t *testing.T) {
	env := newTestEnv(t)

	balance, err := env.Ledger.BalanceOf("0xnobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestPurchaseCreditsAndEmitsEvent(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.Ledger.Purchase(testPlayer1, 500))

	balance, err := env.Ledger.BalanceOf(testPlayer1)
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)

	events, err := env.Events.ReadFrom(0, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventPurchase, events[0].Type)
	assert.Equal(t, testPlayer1, events[0].Address)
	assert.Equal(t, int64(500), events[0].Amount)
	assert.Nil(t, events[0].MatchID)
}

func TestRepeatedCreditsAccumulate(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.Ledger.Purchase(testPlayer1, 100))
	require.NoError(t, env.Ledger.Purchase(testPlayer1, 250))

	balance, err := env.Ledger.BalanceOf(testPlayer1)
	require.NoError(t, err)
	assert.Equal(t, int64(350), balance)
}

func TestPurchaseRejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv(t)

	assert.ErrorIs(t, env.Ledger.Purchase(testPlayer1, 0), ErrInvalidArgument)
	assert.ErrorIs(t, env.Ledger.Purchase(testPlayer1, -5), ErrInvalidArgument)

	count, err := env.Events.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "no event lands for a rejected purchase")
}

func TestWithdrawGuardsBalance(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, testPlayer1, 100)

	require.NoError(t, env.Ledger.Withdraw(testPlayer1, 60))

	err := env.Ledger.Withdraw(testPlayer1, 41)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	balance, err := env.Ledger.BalanceOf(testPlayer1)
	require.NoError(t, err)
	assert.Equal(t, int64(40), balance)
}

func TestTransferMovesExactAmount(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, testPlayer1, 300)

	require.NoError(t, env.Ledger.TransferInto(testPlayer1, "custody:m1", 300))

	from, _ := env.Ledger.BalanceOf(testPlayer1)
	to, _ := env.Ledger.BalanceOf("custody:m1")
	assert.Equal(t, int64(0), from)
	assert.Equal(t, int64(300), to)

	require.NoError(t, env.Ledger.TransferOut("custody:m1", testPlayer2, 300))
	back, _ := env.Ledger.BalanceOf(testPlayer2)
	assert.Equal(t, int64(300), back)
}

func TestTransferFailureLeavesBalancesUntouched(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, testPlayer1, 50)

	err := env.Ledger.TransferInto(testPlayer1, "custody:m1", 100)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	from, _ := env.Ledger.BalanceOf(testPlayer1)
	to, _ := env.Ledger.BalanceOf("custody:m1")
	assert.Equal(t, int64(50), from, "debit must not partially apply")
	assert.Equal(t, int64(0), to)
}

func TestTransferRejectsBadArguments(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, testPlayer1, 50)

	assert.ErrorIs(t, env.Ledger.TransferInto(testPlayer1, "custody:m1", 0), ErrInvalidArgument)
	assert.ErrorIs(t, env.Ledger.TransferInto(testPlayer1, "custody:m1", -1), ErrInvalidArgument)
	assert.ErrorIs(t, env.Ledger.TransferInto(testPlayer1, testPlayer1, 10), ErrInvalidArgument)
}
