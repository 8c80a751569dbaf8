package engine

import (
	"BlackJack/internal/game/deck"
	"BlackJack/internal/game/money"
	"BlackJack/internal/game/room"
	"BlackJack/internal/game/table"
)

// SeatView is one seat as seen from outside the engine.
type SeatView struct {
	Position  int          `json:"position"`
	PlayerID  string       `json:"playerId,omitempty"`
	Name      string       `json:"name,omitempty"`
	Cards     []deck.Card  `json:"cards,omitempty"`
	HandValue int          `json:"handValue,omitempty"`
	IsSoft    bool         `json:"isSoft,omitempty"`
	Status    string       `json:"status,omitempty"`
	Bet       *money.Money `json:"bet,omitempty"`
}

// DealerView hides the hole card until the dealer's hand is resolved.
type DealerView struct {
	Cards     []deck.Card `json:"cards"`
	HandValue int         `json:"handValue"`
	Revealed  bool        `json:"revealed"`
}

// Snapshot is a read-only view of the whole room for REST polling.
type Snapshot struct {
	Code          string       `json:"code"`
	RoomStatus    room.Status  `json:"roomStatus"`
	TableStatus   table.Status `json:"tableStatus"`
	HostID        string       `json:"hostId"`
	RoundNumber   int          `json:"roundNumber"`
	CurrentPlayer string       `json:"currentPlayer,omitempty"`
	Seats         []SeatView   `json:"seats"`
	Dealer        *DealerView  `json:"dealer,omitempty"`
	Spectators    []string     `json:"spectators,omitempty"`
	MinBet        money.Money  `json:"minBet"`
	MaxBet        money.Money  `json:"maxBet"`
}

// Snapshot assembles a consistent view under the engine lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	min, max := e.Table.BetLimits()
	snap := Snapshot{
		Code:        e.Room.Code(),
		RoomStatus:  e.Room.Status(),
		TableStatus: e.Table.Status(),
		HostID:      e.Room.HostID(),
		RoundNumber: e.Table.RoundNumber(),
		Spectators:  e.Room.Spectators(),
		MinBet:      min,
		MaxBet:      max,
	}
	if p, ok := e.Room.CurrentPlayer(); ok && e.Room.Status() == room.StatusInProgress {
		snap.CurrentPlayer = p.ID
	}

	names := make(map[string]string, e.Room.PlayerCount())
	for _, p := range e.Room.Players() {
		names[p.ID] = p.Name
	}

	for _, seat := range e.Table.Seats() {
		sv := SeatView{Position: seat.Position, PlayerID: seat.PlayerID, Name: names[seat.PlayerID]}
		if seat.Hand != nil {
			sv.Cards = seat.Hand.Cards()
			sv.HandValue = seat.Hand.Value()
			sv.IsSoft = seat.Hand.IsSoft()
			sv.Status = string(seat.Hand.Status())
		}
		if seat.Bet != nil {
			amt := seat.Bet.Amount()
			sv.Bet = &amt
		}
		snap.Seats = append(snap.Seats, sv)
	}

	if dealer := e.Table.DealerHand(); dealer != nil {
		dv := DealerView{Revealed: dealer.IsComplete()}
		cards := dealer.Cards()
		if dv.Revealed {
			dv.Cards = cards
			dv.HandValue = dealer.Value()
		} else if len(cards) > 0 {
			// upcard only
			dv.Cards = cards[:1]
			dv.HandValue = cards[0].BaseValue()
		}
		snap.Dealer = &dv
	}
	return snap
}
