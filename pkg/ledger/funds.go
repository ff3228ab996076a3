// pkg/ledger/funds.go
package ledger

import (
	"fmt"
	"sync"

	"github.com/aiprojects789/drmbackend/pkg/models"
)

// FundsBackend executes the fund movements a settlement produces. Transfer
// must apply the whole batch atomically: on error no balance may have moved.
// Implementations must not call back into the Ledger; such calls are rejected.
type FundsBackend interface {
	Transfer(transfers []models.Transfer) error
}

// MemoryBank is the in-process FundsBackend: a balance table keyed by
// identity. Credits create accounts implicitly; debits require sufficient
// funds across the whole batch.
type MemoryBank struct {
	mu       sync.Mutex
	balances map[models.Identity]int64
}

func NewMemoryBank() *MemoryBank {
	return &MemoryBank{
		balances: make(map[models.Identity]int64),
	}
}

func (b *MemoryBank) Deposit(account models.Identity, amount int64) error {
	if account.IsZero() {
		return models.ErrInvalidIdentity
	}
	if amount < 0 {
		return models.ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[account] += amount
	return nil
}

func (b *MemoryBank) BalanceOf(account models.Identity) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[account]
}

// Transfer applies the batch all-or-nothing: net deltas are computed first
// and checked against every debited account before any balance changes.
func (b *MemoryBank) Transfer(transfers []models.Transfer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	deltas := make(map[models.Identity]int64, len(transfers)*2)
	for _, t := range transfers {
		if t.From.IsZero() || t.To.IsZero() {
			return models.ErrInvalidIdentity
		}
		if t.Amount < 0 {
			return models.ErrInvalidAmount
		}
		deltas[t.From] -= t.Amount
		deltas[t.To] += t.Amount
	}

	for account, delta := range deltas {
		if b.balances[account]+delta < 0 {
			return fmt.Errorf("account %s: %w", account, models.ErrInsufficientFunds)
		}
	}

	for account, delta := range deltas {
		b.balances[account] += delta
	}
	return nil
}
