package bank

import (
	"context"
	"sync"

	"BlackJack/internal/game/money"
)

type memBank struct {
	mu       sync.Mutex
	balances map[string]money.Money
}

// NewMemoryBank returns an in-process Bank for tests and local runs.
func NewMemoryBank() Bank {
	return &memBank{balances: make(map[string]money.Money)}
}

func (m *memBank) CreateAccount(ctx context.Context, playerID string, starting money.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.balances[playerID]; ok {
		return nil
	}
	m.balances[playerID] = starting
	return nil
}

func (m *memBank) LoadBalance(ctx context.Context, playerID string) (money.Money, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal, ok := m.balances[playerID]
	if !ok {
		return money.Zero, ErrUnknownPlayer
	}
	return bal, nil
}

func (m *memBank) AdjustBalance(ctx context.Context, playerID string, delta money.Money) (money.Money, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal, ok := m.balances[playerID]
	if !ok {
		return money.Zero, ErrUnknownPlayer
	}
	next := bal.Add(delta)
	if next.IsNegative() {
		return money.Zero, ErrInsufficientFunds
	}
	m.balances[playerID] = next
	return next, nil
}
