package money

import "errors"

var ErrInvalidBetAmount = errors.New("bet amount must be positive")

// Bet is an immutable positive stake held by one seat for one round.
type Bet struct {
	amount Money
}

// NewBet validates and wraps a stake.
func NewBet(amount Money) (Bet, error) {
	if !amount.IsPositive() {
		return Bet{}, ErrInvalidBetAmount
	}
	return Bet{amount: amount}, nil
}

// Amount returns the staked amount.
func (b Bet) Amount() Money {
	return b.amount
}

// WithinLimits reports min <= amount <= max, bounds inclusive.
func (b Bet) WithinLimits(min, max Money) bool {
	return b.amount.Cmp(min) >= 0 && b.amount.Cmp(max) <= 0
}
