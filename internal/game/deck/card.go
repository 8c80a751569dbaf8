package deck

import "fmt"

// Suit 0-3: clubs, diamonds, hearts, spades
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// Rank 2-14, J=11 Q=12 K=13 A=14
type Rank int

const (
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

// Card 定义 (suit 0-3, rank 2-14)
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// BaseValue returns the blackjack value of the card before any ace
// adjustment: face value for 2-10, 10 for J/Q/K, 11 for an ace.
func (c Card) BaseValue() int {
	switch {
	case c.Rank == Ace:
		return 11
	case c.Rank >= Jack:
		return 10
	default:
		return int(c.Rank)
	}
}

// IsAce reports whether the card is an ace.
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

func (c Card) String() string {
	suits := []string{"♣", "♦", "♥", "♠"}
	ranks := map[Rank]string{
		Jack: "J", Queen: "Q", King: "K", Ace: "A",
	}
	rankStr, ok := ranks[c.Rank]
	if !ok {
		rankStr = fmt.Sprintf("%d", c.Rank)
	}
	suitStr := "?"
	if c.Suit >= 0 && int(c.Suit) < len(suits) {
		suitStr = suits[c.Suit]
	}
	return rankStr + suitStr
}
