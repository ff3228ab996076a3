// pkg/ledger/funds_test.go
package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiprojects789/drmbackend/pkg/models"
)

func TestMemoryBankDeposit(t *testing.T) {
	bank := NewMemoryBank()

	require.NoError(t, bank.Deposit("alice", 100))
	require.NoError(t, bank.Deposit("alice", 50))
	assert.Equal(t, int64(150), bank.BalanceOf("alice"))
	assert.Equal(t, int64(0), bank.BalanceOf("nobody"))

	assert.ErrorIs(t, bank.Deposit("alice", -1), models.ErrInvalidAmount)
	assert.ErrorIs(t, bank.Deposit("", 10), models.ErrInvalidIdentity)
}

func TestMemoryBankTransferBatch(t *testing.T) {
	bank := NewMemoryBank()
	require.NoError(t, bank.Deposit("alice", 100))

	err := bank.Transfer([]models.Transfer{
		{From: "alice", To: "bob", Amount: 60},
		{From: "alice", To: "carol", Amount: 40},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), bank.BalanceOf("alice"))
	assert.Equal(t, int64(60), bank.BalanceOf("bob"))
	assert.Equal(t, int64(40), bank.BalanceOf("carol"))
}

func TestMemoryBankTransferAllOrNothing(t *testing.T) {
	bank := NewMemoryBank()
	require.NoError(t, bank.Deposit("alice", 100))

	// Second leg overdraws; the first must not apply either.
	err := bank.Transfer([]models.Transfer{
		{From: "alice", To: "bob", Amount: 60},
		{From: "alice", To: "carol", Amount: 60},
	})
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	assert.Equal(t, int64(100), bank.BalanceOf("alice"))
	assert.Equal(t, int64(0), bank.BalanceOf("bob"))
	assert.Equal(t, int64(0), bank.BalanceOf("carol"))
}

func TestMemoryBankTransferNetsWithinBatch(t *testing.T) {
	bank := NewMemoryBank()
	require.NoError(t, bank.Deposit("alice", 50))

	// bob starts empty but nets +20 across the batch, so it clears.
	err := bank.Transfer([]models.Transfer{
		{From: "alice", To: "bob", Amount: 50},
		{From: "bob", To: "carol", Amount: 30},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), bank.BalanceOf("alice"))
	assert.Equal(t, int64(20), bank.BalanceOf("bob"))
	assert.Equal(t, int64(30), bank.BalanceOf("carol"))
}

func TestMemoryBankTransferValidation(t *testing.T) {
	bank := NewMemoryBank()
	require.NoError(t, bank.Deposit("alice", 100))

	err := bank.Transfer([]models.Transfer{{From: "alice", To: "bob", Amount: -1}})
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	err = bank.Transfer([]models.Transfer{{From: "", To: "bob", Amount: 1}})
	assert.ErrorIs(t, err, models.ErrInvalidIdentity)

	assert.Equal(t, int64(100), bank.BalanceOf("alice"))
}
