package money

import "fmt"

// Outcome of one seat's hand against the dealer.
type Outcome string

const (
	PlayerBlackjack Outcome = "player_blackjack"
	PlayerWins      Outcome = "player_wins"
	Push            Outcome = "push"
	DealerWins      Outcome = "dealer_wins"
)

// PayoutTable maps outcomes to total-return multipliers (stake included).
// 默认：blackjack 2.5×、赢 2×、平局退注、输全失。
type PayoutTable struct {
	blackjack Money
}

// NewPayoutTable builds a payout table with the given blackjack multiplier
// (e.g. 2.5 for 3:2 tables, 2.2 for 6:5 tables).
func NewPayoutTable(blackjackMultiplier Money) PayoutTable {
	return PayoutTable{blackjack: blackjackMultiplier}
}

// DefaultPayouts is the standard 3:2 table.
var DefaultPayouts = NewPayoutTable(MustParse("2.5"))

// Calculate returns the total amount returned to the bettor for the given
// outcome. The outcome set is closed; an unknown value is a programming
// error and panics.
func (p PayoutTable) Calculate(bet Bet, outcome Outcome) Money {
	switch outcome {
	case PlayerBlackjack:
		return bet.Amount().Mul(p.blackjack)
	case PlayerWins:
		return bet.Amount().Mul(New(2))
	case Push:
		return bet.Amount()
	case DealerWins:
		return Zero
	default:
		panic(fmt.Sprintf("money: unmapped payout outcome %q", outcome))
	}
}
