package bank

import (
	"context"
	"errors"

	"BlackJack/internal/game/money"
)

var (
	ErrUnknownPlayer     = errors.New("no account for player")
	ErrInsufficientFunds = errors.New("balance too low for this debit")
)

// Bank 玩家余额目录。引擎在下注时扣款、结算时入账；
// 账户身份本身由外部认证层负责，这里只见 opaque player id。
type Bank interface {
	// CreateAccount opens an account with a starting balance. Opening an
	// existing account is a no-op.
	CreateAccount(ctx context.Context, playerID string, starting money.Money) error
	// LoadBalance returns the player's current balance.
	LoadBalance(ctx context.Context, playerID string) (money.Money, error)
	// AdjustBalance applies a signed delta and returns the new balance.
	// A debit below zero fails with ErrInsufficientFunds and leaves the
	// balance untouched.
	AdjustBalance(ctx context.Context, playerID string, delta money.Money) (money.Money, error)
}
