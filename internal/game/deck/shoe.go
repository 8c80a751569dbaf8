package deck

import (
	"errors"
	"math/rand"
)

var (
	ErrEmptyShoe         = errors.New("shoe is empty")
	ErrInsufficientCards = errors.New("not enough cards remaining in shoe")
)

const deckSize = 52

// Shoe 一张桌子独占的牌靴，可由多副 52 张标准牌组成。
// rnd 注入以便测试确定性（固定 seed 可复现发牌序列）。
type Shoe struct {
	cards       []Card
	numDecks    int
	penetration float64
	rnd         *rand.Rand
}

// NewShoe builds a shuffled shoe of numDecks standard decks. Reshuffle is
// signalled once the remaining fraction drops below penetration (e.g. 0.25).
func NewShoe(numDecks int, penetration float64, rnd *rand.Rand) *Shoe {
	if numDecks < 1 {
		numDecks = 1
	}
	s := &Shoe{
		numDecks:    numDecks,
		penetration: penetration,
		rnd:         rnd,
	}
	s.Reset()
	return s
}

// Reset rebuilds the full shoe and shuffles it.
func (s *Shoe) Reset() {
	s.cards = s.makeCards()
	s.shuffle()
}

func (s *Shoe) makeCards() []Card {
	cards := make([]Card, 0, deckSize*s.numDecks)
	for d := 0; d < s.numDecks; d++ {
		for suit := Clubs; suit <= Spades; suit++ {
			for r := Rank(2); r <= Ace; r++ {
				cards = append(cards, Card{Suit: suit, Rank: r})
			}
		}
	}
	return cards
}

// Fisher–Yates: 从末位走到 1，与 [0,i] 均匀随机位置交换。
func (s *Shoe) shuffle() {
	for i := len(s.cards) - 1; i >= 1; i-- {
		j := s.rnd.Intn(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

// Draw removes and returns the front card.
func (s *Shoe) Draw() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrEmptyShoe
	}
	c := s.cards[0]
	s.cards = s.cards[1:]
	return c, nil
}

// DrawMany removes and returns n cards in draw order. The shoe is left
// untouched when fewer than n cards remain.
func (s *Shoe) DrawMany(n int) ([]Card, error) {
	if n < 0 || n > len(s.cards) {
		return nil, ErrInsufficientCards
	}
	out := make([]Card, n)
	copy(out, s.cards[:n])
	s.cards = s.cards[n:]
	return out, nil
}

// Remaining returns the number of undrawn cards.
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// FullSize returns the card count of a freshly reset shoe.
func (s *Shoe) FullSize() int {
	return deckSize * s.numDecks
}

// ShouldReshuffle reports whether the shoe has been dealt past its
// penetration threshold and must be reset before the next round.
func (s *Shoe) ShouldReshuffle() bool {
	return float64(len(s.cards)) < s.penetration*float64(s.FullSize())
}
