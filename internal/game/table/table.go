package table

import (
	"errors"
	"math/rand"

	"BlackJack/internal/game/deck"
	"BlackJack/internal/game/hand"
	"BlackJack/internal/game/money"
)

var (
	ErrInvalidSeatPosition = errors.New("seat position out of range")
	ErrSeatOccupied        = errors.New("seat already occupied")
	ErrPlayerAlreadySeated = errors.New("player already holds a seat at this table")
	ErrPlayerNotSeated     = errors.New("player has no seat at this table")
	ErrInvalidLimits       = errors.New("bet limits must be positive and min <= max")
	ErrBetOutOfRange       = errors.New("bet amount outside table limits")
	ErrNoBetPlaced         = errors.New("seat has no bet for this round")
	ErrBettingClosed       = errors.New("bets can only be placed between rounds")
	ErrCannotStartRound    = errors.New("round cannot start in current table state")
	ErrRoundNotInProgress  = errors.New("no round in progress")
	ErrRoundNotEnded       = errors.New("round has not ended")
	ErrTableNotPaused      = errors.New("table is not paused")
	ErrDealerNotDone       = errors.New("dealer hand not resolved")
	ErrSeatsUnresolved     = errors.New("not every seat has finished its hand")
)

// Status is the table's round lifecycle state.
type Status string

const (
	StatusWaitingForPlayers Status = "waiting_for_players"
	StatusInProgress        Status = "in_progress"
	StatusRoundEnded        Status = "round_ended"
	StatusPaused            Status = "paused"
)

// Seat 固定桌位。持有玩家 id（非反向指针），本轮的手牌与注。
// Hand/Bet 为 nil 表示"本轮尚未开始/尚未下注"，生命周期显式可见。
type Seat struct {
	Position int
	PlayerID string
	Hand     *hand.Hand
	Bet      *money.Bet
}

// Occupied reports whether a player holds this seat.
func (s *Seat) Occupied() bool {
	return s.PlayerID != ""
}

// Rules are the per-table house rules, sourced from configuration.
type Rules struct {
	SeatCount   int
	Decks       int
	Penetration float64
	MinBet      money.Money
	MaxBet      money.Money
	Payouts     money.PayoutTable
}

// DefaultRules is a single-deck 3:2 table with limits [10, 500].
func DefaultRules() Rules {
	return Rules{
		SeatCount:   6,
		Decks:       1,
		Penetration: 0.25,
		MinBet:      money.New(10),
		MaxBet:      money.New(500),
		Payouts:     money.DefaultPayouts,
	}
}

// Table owns its seats, one shoe and the dealer hand. All mutating calls
// are serialized by the owning engine goroutine; nothing here locks.
type Table struct {
	seats       []Seat
	shoe        *deck.Shoe
	dealer      *hand.Hand
	rules       Rules
	roundNumber int
	status      Status
}

// New builds an empty table with the given rules and random source.
func New(rules Rules, rnd *rand.Rand) *Table {
	if rules.SeatCount <= 0 {
		rules.SeatCount = 6
	}
	t := &Table{
		seats:  make([]Seat, rules.SeatCount),
		shoe:   deck.NewShoe(rules.Decks, rules.Penetration, rnd),
		rules:  rules,
		status: StatusWaitingForPlayers,
	}
	for i := range t.seats {
		t.seats[i].Position = i
	}
	return t
}

// Status returns the current lifecycle state.
func (t *Table) Status() Status { return t.status }

// RoundNumber returns the number of the last started round.
func (t *Table) RoundNumber() int { return t.roundNumber }

// Shoe exposes the table's shoe for inspection.
func (t *Table) Shoe() *deck.Shoe { return t.shoe }

// DealerHand returns the dealer's hand, nil between rounds.
func (t *Table) DealerHand() *hand.Hand { return t.dealer }

// Seats returns the seat slice; callers must not mutate through it.
func (t *Table) Seats() []Seat { return t.seats }

// SeatedPlayerCount returns the number of occupied seats.
func (t *Table) SeatedPlayerCount() int {
	n := 0
	for i := range t.seats {
		if t.seats[i].Occupied() {
			n++
		}
	}
	return n
}

// SeatOf returns the seat position held by the player.
func (t *Table) SeatOf(playerID string) (int, bool) {
	for i := range t.seats {
		if t.seats[i].PlayerID == playerID {
			return i, true
		}
	}
	return -1, false
}

// SeatPlayer places a player at the given position.
func (t *Table) SeatPlayer(playerID string, position int) error {
	if position < 0 || position >= len(t.seats) {
		return ErrInvalidSeatPosition
	}
	if t.seats[position].Occupied() {
		return ErrSeatOccupied
	}
	if _, ok := t.SeatOf(playerID); ok {
		return ErrPlayerAlreadySeated
	}
	t.seats[position].PlayerID = playerID
	return nil
}

// LeaveSeat vacates the player's seat along with its hand and bet.
func (t *Table) LeaveSeat(playerID string) error {
	pos, ok := t.SeatOf(playerID)
	if !ok {
		return ErrPlayerNotSeated
	}
	t.seats[pos] = Seat{Position: pos}
	return nil
}

// SetBetLimits replaces the table limits.
func (t *Table) SetBetLimits(min, max money.Money) error {
	if !min.IsPositive() || !max.IsPositive() || min.Cmp(max) > 0 {
		return ErrInvalidLimits
	}
	t.rules.MinBet = min
	t.rules.MaxBet = max
	return nil
}

// BetLimits returns the current [min, max] limits.
func (t *Table) BetLimits() (money.Money, money.Money) {
	return t.rules.MinBet, t.rules.MaxBet
}

// ValidateBetAmount reports min <= amount <= max.
func (t *Table) ValidateBetAmount(amount money.Money) bool {
	return amount.Cmp(t.rules.MinBet) >= 0 && amount.Cmp(t.rules.MaxBet) <= 0
}

// PlaceBet stakes a bet on the player's seat for the upcoming round.
func (t *Table) PlaceBet(playerID string, amount money.Money) error {
	if t.status != StatusWaitingForPlayers {
		return ErrBettingClosed
	}
	pos, ok := t.SeatOf(playerID)
	if !ok {
		return ErrPlayerNotSeated
	}
	bet, err := money.NewBet(amount)
	if err != nil {
		return err
	}
	if !bet.WithinLimits(t.rules.MinBet, t.rules.MaxBet) {
		return ErrBetOutOfRange
	}
	t.seats[pos].Bet = &bet
	return nil
}

// StartRound begins a new round: fresh hands, two cards to every occupied
// seat and the dealer. Requires at least one seated player. Hard-fails
// without touching state when preconditions are unmet.
func (t *Table) StartRound() error {
	if t.status != StatusWaitingForPlayers {
		return ErrCannotStartRound
	}
	if t.SeatedPlayerCount() < 1 {
		return ErrCannotStartRound
	}
	// 2 per seat + 2 for dealer; checked up front so a mid-deal
	// exhaustion cannot leave a half-dealt round behind
	if t.shoe.Remaining() < 2*(t.SeatedPlayerCount()+1) {
		return deck.ErrInsufficientCards
	}

	t.roundNumber++
	t.dealer = hand.New()
	for i := range t.seats {
		if t.seats[i].Occupied() {
			t.seats[i].Hand = hand.New()
		} else {
			t.seats[i].Hand = nil
		}
	}

	// deal order: one card to each occupied seat, dealer last, twice over
	for pass := 0; pass < 2; pass++ {
		for i := range t.seats {
			if !t.seats[i].Occupied() {
				continue
			}
			c, err := t.shoe.Draw()
			if err != nil {
				return err
			}
			if err := t.seats[i].Hand.AddCard(c); err != nil {
				return err
			}
		}
		c, err := t.shoe.Draw()
		if err != nil {
			return err
		}
		if err := t.dealer.AddCard(c); err != nil {
			return err
		}
	}

	t.status = StatusInProgress
	return nil
}

// DealCard draws the next card from the shoe. Exhaustion mid-round means
// the round-boundary reshuffle check was defeated and the caller must
// abort the round.
func (t *Table) DealCard() (deck.Card, error) {
	return t.shoe.Draw()
}

// seatInRound returns the playing seat for an action, validating state.
func (t *Table) seatInRound(playerID string) (*Seat, error) {
	if t.status != StatusInProgress {
		return nil, ErrRoundNotInProgress
	}
	pos, ok := t.SeatOf(playerID)
	if !ok {
		return nil, ErrPlayerNotSeated
	}
	return &t.seats[pos], nil
}

// Hit deals one card to the player's hand.
func (t *Table) Hit(playerID string) (deck.Card, error) {
	seat, err := t.seatInRound(playerID)
	if err != nil {
		return deck.Card{}, err
	}
	if seat.Hand == nil || seat.Hand.IsComplete() {
		return deck.Card{}, hand.ErrInvalidHandState
	}
	c, err := t.shoe.Draw()
	if err != nil {
		return deck.Card{}, err
	}
	if err := seat.Hand.AddCard(c); err != nil {
		return deck.Card{}, err
	}
	return c, nil
}

// Stand ends the player's hand.
func (t *Table) Stand(playerID string) error {
	seat, err := t.seatInRound(playerID)
	if err != nil {
		return err
	}
	if seat.Hand == nil {
		return hand.ErrInvalidHandState
	}
	return seat.Hand.Stand()
}

// DoubleDown doubles the seat's bet, deals exactly one card and seals the
// hand. Only legal as the first action of the hand.
func (t *Table) DoubleDown(playerID string) (deck.Card, error) {
	seat, err := t.seatInRound(playerID)
	if err != nil {
		return deck.Card{}, err
	}
	if seat.Hand == nil {
		return deck.Card{}, hand.ErrInvalidHandState
	}
	if seat.Bet == nil {
		return deck.Card{}, ErrNoBetPlaced
	}
	// legality checked before the draw so a dry shoe leaves the seat untouched
	if seat.Hand.Status() != hand.StatusPlaying || seat.Hand.Size() != 2 {
		return deck.Card{}, hand.ErrInvalidHandState
	}
	c, err := t.shoe.Draw()
	if err != nil {
		return deck.Card{}, err
	}
	if err := seat.Hand.DoubleDown(); err != nil {
		return deck.Card{}, err
	}
	doubled, err := money.NewBet(seat.Bet.Amount().Mul(money.New(2)))
	if err != nil {
		return deck.Card{}, err
	}
	seat.Bet = &doubled
	if err := seat.Hand.AddCard(c); err != nil {
		return deck.Card{}, err
	}
	return c, nil
}

// Surrender forfeits the player's hand; half the stake comes back at
// settlement.
func (t *Table) Surrender(playerID string) error {
	seat, err := t.seatInRound(playerID)
	if err != nil {
		return err
	}
	if seat.Hand == nil {
		return hand.ErrInvalidHandState
	}
	return seat.Hand.Surrender()
}

// AllSeatsResolved reports whether every occupied seat reached a terminal
// hand state.
func (t *Table) AllSeatsResolved() bool {
	for i := range t.seats {
		if t.seats[i].Occupied() && t.seats[i].Hand != nil && !t.seats[i].Hand.IsComplete() {
			return false
		}
	}
	return true
}

// PlayDealer reveals the dealer and hits until the hand reaches 17 or
// more (stands on all 17s). Returns the cards drawn.
func (t *Table) PlayDealer() ([]deck.Card, error) {
	if t.status != StatusInProgress {
		return nil, ErrRoundNotInProgress
	}
	if !t.AllSeatsResolved() {
		return nil, ErrSeatsUnresolved
	}
	drawn := []deck.Card{}
	for t.dealer.Value() < 17 {
		c, err := t.shoe.Draw()
		if err != nil {
			return drawn, err
		}
		if err := t.dealer.AddCard(c); err != nil {
			return drawn, err
		}
		drawn = append(drawn, c)
	}
	if !t.dealer.IsComplete() {
		_ = t.dealer.Stand()
	}
	return drawn, nil
}

// SeatResult is one seat's settlement for the round.
type SeatResult struct {
	Position    int
	PlayerID    string
	Outcome     money.Outcome
	Surrendered bool
	Bet         money.Money
	Payout      money.Money
	HandValue   int
}

// Settle compares every staked seat against the dealer and transitions the
// table to RoundEnded. Surrendered hands recover half their stake.
func (t *Table) Settle() ([]SeatResult, error) {
	if t.status != StatusInProgress {
		return nil, ErrRoundNotInProgress
	}
	if !t.AllSeatsResolved() {
		return nil, ErrSeatsUnresolved
	}
	if t.dealer == nil || !t.dealer.IsComplete() {
		return nil, ErrDealerNotDone
	}

	results := make([]SeatResult, 0, t.SeatedPlayerCount())
	for i := range t.seats {
		seat := &t.seats[i]
		if !seat.Occupied() || seat.Hand == nil || seat.Bet == nil {
			continue
		}
		res := SeatResult{
			Position:  seat.Position,
			PlayerID:  seat.PlayerID,
			Bet:       seat.Bet.Amount(),
			HandValue: seat.Hand.Value(),
		}
		if seat.Hand.Status() == hand.StatusSurrendered {
			res.Outcome = money.DealerWins
			res.Surrendered = true
			res.Payout = seat.Bet.Amount().Mul(money.MustParse("0.5"))
		} else {
			res.Outcome = outcomeAgainstDealer(seat.Hand, t.dealer)
			res.Payout = t.rules.Payouts.Calculate(*seat.Bet, res.Outcome)
		}
		results = append(results, res)
	}

	t.status = StatusRoundEnded
	return results, nil
}

func outcomeAgainstDealer(player, dealer *hand.Hand) money.Outcome {
	switch {
	case player.IsBust():
		return money.DealerWins
	case player.IsBlackjack() && dealer.IsBlackjack():
		return money.Push
	case player.IsBlackjack():
		return money.PlayerBlackjack
	case dealer.IsBlackjack():
		return money.DealerWins
	case dealer.IsBust():
		return money.PlayerWins
	case player.Value() > dealer.Value():
		return money.PlayerWins
	case player.Value() == dealer.Value():
		return money.Push
	default:
		return money.DealerWins
	}
}

// EndRound clears bets and hands, reinitializes the shoe once penetration
// is crossed, and returns the table to WaitingForPlayers.
func (t *Table) EndRound() error {
	if t.status != StatusRoundEnded {
		return ErrRoundNotEnded
	}
	for i := range t.seats {
		t.seats[i].Hand = nil
		t.seats[i].Bet = nil
	}
	t.dealer = nil
	if t.shoe.ShouldReshuffle() {
		t.shoe.Reset()
	}
	t.status = StatusWaitingForPlayers
	return nil
}

// Pause suspends an in-progress round.
func (t *Table) Pause() error {
	if t.status != StatusInProgress {
		return ErrRoundNotInProgress
	}
	t.status = StatusPaused
	return nil
}

// Resume continues a paused round.
func (t *Table) Resume() error {
	if t.status != StatusPaused {
		return ErrTableNotPaused
	}
	t.status = StatusInProgress
	return nil
}

// AbortRound abandons a round after an invariant violation (e.g. the shoe
// ran dry mid-deal): hands and bets are dropped, the shoe is rebuilt.
func (t *Table) AbortRound() {
	for i := range t.seats {
		t.seats[i].Hand = nil
		t.seats[i].Bet = nil
	}
	t.dealer = nil
	t.shoe.Reset()
	t.status = StatusWaitingForPlayers
}
