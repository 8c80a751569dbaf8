package hand

import (
	"errors"

	"BlackJack/internal/game/deck"
)

var ErrInvalidHandState = errors.New("hand is not in a state that allows this action")

// Status is the lifecycle state of a single hand.
type Status string

const (
	StatusPlaying     Status = "playing"
	StatusStand       Status = "stand"
	StatusBust        Status = "bust"
	StatusBlackjack   Status = "blackjack"
	StatusDoubleDown  Status = "double_down"
	StatusSurrendered Status = "surrendered"
)

// Hand 一名玩家（或庄家）的当前手牌。
// Value/IsSoft/状态全部由 cards 推导，绝不单独存储，避免与牌面脱节。
type Hand struct {
	cards  []deck.Card
	status Status
}

// New returns an empty hand in the playing state.
func New() *Hand {
	return &Hand{status: StatusPlaying}
}

// AddCard appends the card and recomputes the hand's status. Cards can only
// be added while the hand is still playing (or doubling down, which takes
// exactly one more card).
func (h *Hand) AddCard(c deck.Card) error {
	if h.status != StatusPlaying && h.status != StatusDoubleDown {
		return ErrInvalidHandState
	}
	if h.status == StatusDoubleDown && len(h.cards) > 2 {
		// the doubled hand already received its single extra card
		return ErrInvalidHandState
	}
	h.cards = append(h.cards, c)

	switch {
	case h.Value() > 21:
		h.status = StatusBust
	case h.Value() == 21 && len(h.cards) == 2:
		h.status = StatusBlackjack
	}
	return nil
}

// Value computes the best total ≤ 21: every ace counts 11 first, then aces
// are reduced to 1 one at a time while the total busts.
func (h *Hand) Value() int {
	total, _ := h.valueAndSoft()
	return total
}

// IsSoft reports whether at least one ace is still counted as 11.
func (h *Hand) IsSoft() bool {
	_, soft := h.valueAndSoft()
	return soft
}

func (h *Hand) valueAndSoft() (int, bool) {
	total := 0
	acesAsEleven := 0
	for _, c := range h.cards {
		total += c.BaseValue()
		if c.IsAce() {
			acesAsEleven++
		}
	}
	for total > 21 && acesAsEleven > 0 {
		total -= 10
		acesAsEleven--
	}
	return total, acesAsEleven > 0
}

// Stand ends the hand voluntarily.
func (h *Hand) Stand() error {
	if h.status != StatusPlaying {
		return ErrInvalidHandState
	}
	h.status = StatusStand
	return nil
}

// DoubleDown is only legal as the first action, i.e. with exactly the two
// initially dealt cards. The caller deals exactly one more card afterwards
// and the hand is terminal.
func (h *Hand) DoubleDown() error {
	if h.status != StatusPlaying || len(h.cards) != 2 {
		return ErrInvalidHandState
	}
	h.status = StatusDoubleDown
	return nil
}

// Surrender forfeits the hand.
func (h *Hand) Surrender() error {
	if h.status != StatusPlaying {
		return ErrInvalidHandState
	}
	h.status = StatusSurrendered
	return nil
}

// Status returns the hand's current lifecycle state.
func (h *Hand) Status() Status {
	return h.status
}

// Cards returns a copy of the hand's cards in deal order.
func (h *Hand) Cards() []deck.Card {
	out := make([]deck.Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Size returns the number of cards held.
func (h *Hand) Size() int {
	return len(h.cards)
}

// IsBlackjack reports a natural: 21 from exactly two cards.
func (h *Hand) IsBlackjack() bool {
	return len(h.cards) == 2 && h.Value() == 21
}

// IsBust reports a total above 21.
func (h *Hand) IsBust() bool {
	return h.Value() > 21
}

// IsComplete reports whether the hand reached any terminal state.
func (h *Hand) IsComplete() bool {
	return h.status != StatusPlaying
}
