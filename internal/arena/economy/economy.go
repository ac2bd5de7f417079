// Package economy defines the collaborator contracts for entry fees and
// prize settlement, plus in-memory implementations used by tests and the
// simulator. The engine only ever talks to the interfaces; a production
// deployment wires real account services behind them.
package economy

import (
	"context"
	"sync"

	"github.com/louisbranch/gridfall/internal/platform/errors"
)

// Service moves funds between participant accounts and session prize
// pools. Amounts are in minor units and never negative.
type Service interface {
	// CanAfford reports whether the account covers the amount.
	CanAfford(ctx context.Context, accountID string, amount int64) (bool, error)
	// Deduct removes the amount from the account.
	Deduct(ctx context.Context, accountID string, amount int64) error
	// Refund returns the amount to the account.
	Refund(ctx context.Context, accountID string, amount int64) error
	// Distribute pays the amount out to the account.
	Distribute(ctx context.Context, accountID string, amount int64) error
}

// Identity resolves delivery-channel ids to stable account ids.
type Identity interface {
	AccountID(ctx context.Context, channelID string) (string, error)
}

// InMemoryLedger is a Service backed by a map. Safe for concurrent use.
type InMemoryLedger struct {
	mu       sync.Mutex
	balances map[string]int64
}

// NewInMemoryLedger returns an empty ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{balances: make(map[string]int64)}
}

// SetBalance seeds an account.
func (l *InMemoryLedger) SetBalance(accountID string, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[accountID] = amount
}

// Balance reads an account.
func (l *InMemoryLedger) Balance(accountID string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[accountID]
}

// CanAfford reports whether the account covers the amount.
func (l *InMemoryLedger) CanAfford(_ context.Context, accountID string, amount int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[accountID] >= amount, nil
}

// Deduct removes the amount, failing on insufficient funds.
func (l *InMemoryLedger) Deduct(_ context.Context, accountID string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[accountID] < amount {
		return errors.New(errors.CodeInsufficientFunds, "balance below entry fee")
	}
	l.balances[accountID] -= amount
	return nil
}

// Refund returns the amount to the account.
func (l *InMemoryLedger) Refund(_ context.Context, accountID string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[accountID] += amount
	return nil
}

// Distribute pays the amount out to the account.
func (l *InMemoryLedger) Distribute(_ context.Context, accountID string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[accountID] += amount
	return nil
}

// StaticIdentity maps channel ids to themselves, the default when no
// identity provider is configured.
type StaticIdentity struct{}

// AccountID returns the channel id unchanged.
func (StaticIdentity) AccountID(_ context.Context, channelID string) (string, error) {
	return channelID, nil
}
