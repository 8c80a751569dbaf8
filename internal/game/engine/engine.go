package engine

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"BlackJack/internal/bank"
	"BlackJack/internal/game/deck"
	"BlackJack/internal/game/money"
	"BlackJack/internal/game/room"
	"BlackJack/internal/game/table"
	"BlackJack/internal/utils"
	"BlackJack/internal/websocket"
)

var (
	ErrNotHost    = errors.New("only the host can start the game")
	ErrNoFreeSeat = errors.New("no free seat at the table")
	ErrBadAction  = errors.New("unknown player action")
	ErrEngineBusy = errors.New("action queue full")
	ErrUnknownBet = errors.New("bet amount missing or malformed")
)

// ---------------------
//   ACTION DEFINITION
// ---------------------

type Action struct {
	Player  string
	Kind    string
	Payload map[string]any
}

// CardDealtPayload is pushed for every card that leaves the shoe.
type CardDealtPayload struct {
	PlayerID string     `json:"playerId"` // "dealer" for the house
	Card     *deck.Card `json:"card,omitempty"`
	Display  string     `json:"display,omitempty"`
	Hidden   bool       `json:"hidden"`
	Value    int        `json:"value,omitempty"`
}

// SettlementEntry is one seat's line in the round summary.
type SettlementEntry struct {
	PlayerID    string        `json:"playerId"`
	Outcome     money.Outcome `json:"outcome"`
	Surrendered bool          `json:"surrendered,omitempty"`
	Bet         money.Money   `json:"bet"`
	Payout      money.Money   `json:"payout"`
	HandValue   int           `json:"handValue"`
	Balance     money.Money   `json:"balance"`
}

// RoundSummary is the RoundEnded payload.
type RoundSummary struct {
	RoundNumber int               `json:"roundNumber"`
	DealerValue int               `json:"dealerValue"`
	DealerCards []deck.Card       `json:"dealerCards"`
	Results     []SettlementEntry `json:"results"`
}

// ---------------------
//       ENGINE
// ---------------------

// Engine 单写者：一个房间的全部状态变更都经由它串行执行。
// 动作来自 action channel（WebSocket）或直接方法调用（REST），
// 两条路径共用同一把锁。
type Engine struct {
	mu    sync.Mutex
	Room  *room.Room
	Table *table.Table

	hub  websocket.HubInterface
	bank bank.Bank

	actionChan  chan Action
	quit        chan struct{}
	turnTimeout time.Duration
	turnEpoch   int
	turnTimer   *time.Timer
}

// New wires an engine for one room/table pair. turnTimeout 0 disables the
// forced-stand timer.
func New(r *room.Room, t *table.Table, hub websocket.HubInterface, b bank.Bank, turnTimeout time.Duration) *Engine {
	return &Engine{
		Room:        r,
		Table:       t,
		hub:         hub,
		bank:        b,
		actionChan:  make(chan Action, 32), // 防止死锁
		quit:        make(chan struct{}),
		turnTimeout: turnTimeout,
	}
}

// Start launches the action loop.
func (e *Engine) Start() {
	go e.actionLoop()
}

// Stop terminates the action loop and any pending turn timer.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.stopTurnTimerLocked()
	e.mu.Unlock()
	close(e.quit)
}

func (e *Engine) actionLoop() {
	for {
		select {
		case act := <-e.actionChan:
			e.handleAction(act)
		case <-e.quit:
			return
		}
	}
}

// EnqueueAction is the WebSocket entry point (called by GameManager).
func (e *Engine) EnqueueAction(player, kind string, payload map[string]any) error {
	select {
	case e.actionChan <- Action{Player: player, Kind: kind, Payload: payload}:
		return nil
	default:
		return ErrEngineBusy
	}
}

func (e *Engine) handleAction(a Action) {
	var err error
	switch a.Kind {
	case "place_bet":
		amt, perr := betAmount(a.Payload)
		if perr != nil {
			err = perr
			break
		}
		err = e.PlaceBet(a.Player, amt)
	case "start_game":
		err = e.StartGame(a.Player)
	case "hit":
		err = e.Hit(a.Player)
	case "stand":
		err = e.Stand(a.Player)
	case "double_down":
		err = e.DoubleDown(a.Player)
	case "surrender":
		err = e.Surrender(a.Player)
	case "ready":
		err = e.SetReady(a.Player, true)
	case "pause":
		err = e.Pause(a.Player)
	case "resume":
		err = e.Resume(a.Player)
	case "end_game":
		err = e.EndGame(a.Player)
	case "turn_timeout":
		e.handleTurnTimeout(a)
		return
	default:
		err = ErrBadAction
	}
	if err != nil {
		// 错误只回给动作发起者，不广播
		e.hub.SendToPlayer(a.Player, websocket.OutgoingMessage{
			Event: "error",
			Data:  map[string]any{"action": a.Kind, "error": err.Error()},
		})
	}
}

func betAmount(payload map[string]any) (money.Money, error) {
	raw, ok := payload["amount"]
	if !ok {
		return money.Zero, ErrUnknownBet
	}
	switch v := raw.(type) {
	case string:
		return money.Parse(v)
	case float64:
		// JSON numbers decode as float64; route through the string form
		// to avoid binary-float dust in the decimal
		return money.Parse(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return money.Zero, ErrUnknownBet
	}
}

// ---------------------
//    PLAYER ENTRY
// ---------------------

// JoinPlayer admits a player into the room and seats them at the lowest
// free position.
func (e *Engine) JoinPlayer(playerID, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos := -1
	for _, seat := range e.Table.Seats() {
		if !seat.Occupied() {
			pos = seat.Position
			break
		}
	}
	if pos == -1 {
		return ErrNoFreeSeat
	}

	events, err := e.Room.AddPlayer(playerID, name)
	if err != nil {
		return err
	}
	if err := e.Table.SeatPlayer(playerID, pos); err != nil {
		// roster and seats move together; roll the roster back
		_, _ = e.Room.RemovePlayer(playerID)
		return err
	}
	e.emitLocked(events)
	return nil
}

// LeavePlayer removes a player from roster and seat, refunding any
// still-staked bet for an unfinished round.
func (e *Engine) LeavePlayer(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if pos, ok := e.Table.SeatOf(playerID); ok {
		seat := e.Table.Seats()[pos]
		// a stake placed before the deal comes back; leaving mid-round
		// forfeits the bet
		if seat.Bet != nil && e.Table.Status() == table.StatusWaitingForPlayers {
			if _, err := e.bank.AdjustBalance(context.Background(), playerID, seat.Bet.Amount()); err != nil {
				utils.Error.Printf("refund on leave failed for %s: %v", playerID, err)
			}
		}
		_ = e.Table.LeaveSeat(playerID)
	}

	wasCurrent := e.Room.IsPlayersTurn(playerID)
	events, err := e.Room.RemovePlayer(playerID)
	if err != nil {
		return err
	}
	e.emitLocked(events)

	if e.Room.Status() == room.StatusInProgress {
		if e.Room.PlayerCount() == 0 {
			e.stopTurnTimerLocked()
			e.Table.AbortRound()
			return nil
		}
		if wasCurrent {
			// the index already moved on during removal
			e.advanceToPlayableLocked(false)
		}
	}
	return nil
}

// JoinSpectator admits a watcher; duplicates are ignored.
func (e *Engine) JoinSpectator(playerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitLocked(e.Room.AddSpectator(playerID))
}

// LeaveSpectator removes a watcher; unknown ids are ignored.
func (e *Engine) LeaveSpectator(playerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitLocked(e.Room.RemoveSpectator(playerID))
}

// SetReady flags a roster entry.
func (e *Engine) SetReady(playerID string, ready bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Room.SetReady(playerID, ready)
}

// ---------------------
//    ROUND FLOW
// ---------------------

// PlaceBet validates, debits the player's balance and stakes the bet.
func (e *Engine) PlaceBet(playerID string, amount money.Money) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Table.Status() != table.StatusWaitingForPlayers {
		return table.ErrBettingClosed
	}
	pos, ok := e.Table.SeatOf(playerID)
	if !ok {
		return table.ErrPlayerNotSeated
	}
	b, err := money.NewBet(amount)
	if err != nil {
		return err
	}
	min, max := e.Table.BetLimits()
	if !b.WithinLimits(min, max) {
		return table.ErrBetOutOfRange
	}

	// 换注：已落的旧注折进本次差额，单次过账保证不会吞掉旧注
	prev := money.Zero
	if cur := e.Table.Seats()[pos].Bet; cur != nil {
		prev = cur.Amount()
	}
	delta := prev.Sub(amount)
	if _, err := e.bank.AdjustBalance(context.Background(), playerID, delta); err != nil {
		return err
	}
	if err := e.Table.PlaceBet(playerID, amount); err != nil {
		_, _ = e.bank.AdjustBalance(context.Background(), playerID, delta.Neg())
		return err
	}
	e.emitLocked([]room.Event{{
		Kind:    "bet_placed",
		Payload: map[string]any{"playerId": playerID, "amount": amount},
	}})
	return nil
}

// StartGame begins a round. Host only.
func (e *Engine) StartGame(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if playerID != e.Room.HostID() {
		return ErrNotHost
	}

	roomEvents, err := e.Room.StartGame(e.Room.Code())
	if err != nil {
		return err
	}
	if err := e.Table.StartRound(); err != nil {
		// roster state must not drift from the table; rewind the room
		_ = e.Room.ReopenForNextRound()
		return err
	}
	e.emitLocked(roomEvents)
	e.emitDealLocked()
	e.advanceToPlayableLocked(false)
	return nil
}

// NextRound reopens betting after a settled round without tearing the
// room down; the same host-start path launches the next deal.
func (e *Engine) NextRound() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Room.Status() != room.StatusInProgress {
		return room.ErrGameNotInProgress
	}
	e.Room.ResetTurnFlags()
	return e.Room.ReopenForNextRound()
}

// Pause suspends the current round. Host only; the turn clock stops with it.
func (e *Engine) Pause(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if playerID != e.Room.HostID() {
		return ErrNotHost
	}
	if err := e.Table.Pause(); err != nil {
		return err
	}
	if err := e.Room.Pause(); err != nil {
		// room and table pause together or not at all
		_ = e.Table.Resume()
		return err
	}
	e.stopTurnTimerLocked()
	e.emitLocked([]room.Event{{
		Kind:    "game_paused",
		Payload: map[string]any{"by": playerID},
	}})
	return nil
}

// Resume continues a paused round and restarts the turn clock. Host only.
func (e *Engine) Resume(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if playerID != e.Room.HostID() {
		return ErrNotHost
	}
	if err := e.Table.Resume(); err != nil {
		return err
	}
	if err := e.Room.Resume(); err != nil {
		_ = e.Table.Pause()
		return err
	}
	e.emitLocked([]room.Event{{
		Kind:    "game_resumed",
		Payload: map[string]any{"by": playerID},
	}})
	e.resetTurnTimerLocked()
	return nil
}

// EndGame finishes the room for good. Host only. An unfinished round is
// abandoned with every stake refunded; the room stops accepting players.
func (e *Engine) EndGame(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if playerID != e.Room.HostID() {
		return ErrNotHost
	}
	events, err := e.Room.EndGame()
	if err != nil {
		return err
	}
	e.stopTurnTimerLocked()
	if st := e.Table.Status(); st == table.StatusInProgress || st == table.StatusPaused {
		for _, seat := range e.Table.Seats() {
			if seat.Occupied() && seat.Bet != nil {
				if _, err := e.bank.AdjustBalance(context.Background(), seat.PlayerID, seat.Bet.Amount()); err != nil {
					utils.Error.Printf("end-game refund failed for %s: %v", seat.PlayerID, err)
				}
			}
		}
		e.Table.AbortRound()
	}
	e.emitLocked(events)
	return nil
}

// Hit deals the current player one card.
func (e *Engine) Hit(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.Room.IsPlayersTurn(playerID) {
		return room.ErrNotPlayerTurn
	}
	c, err := e.Table.Hit(playerID)
	if err != nil {
		return e.checkShoeFault(err)
	}
	pos, _ := e.Table.SeatOf(playerID)
	h := e.Table.Seats()[pos].Hand
	e.emitCardLocked(playerID, c, false, h.Value())

	if h.IsComplete() {
		e.advanceLocked()
	} else {
		e.resetTurnTimerLocked()
	}
	return nil
}

// Stand ends the current player's hand and passes the turn.
func (e *Engine) Stand(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.Room.IsPlayersTurn(playerID) {
		return room.ErrNotPlayerTurn
	}
	if err := e.Table.Stand(playerID); err != nil {
		return err
	}
	e.advanceLocked()
	return nil
}

// DoubleDown doubles the stake (debiting the extra), deals one card and
// passes the turn.
func (e *Engine) DoubleDown(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.Room.IsPlayersTurn(playerID) {
		return room.ErrNotPlayerTurn
	}
	pos, ok := e.Table.SeatOf(playerID)
	if !ok {
		return table.ErrPlayerNotSeated
	}
	seat := e.Table.Seats()[pos]
	if seat.Bet == nil {
		return table.ErrNoBetPlaced
	}
	extra := seat.Bet.Amount()

	if _, err := e.bank.AdjustBalance(context.Background(), playerID, extra.Neg()); err != nil {
		return err
	}
	c, err := e.Table.DoubleDown(playerID)
	if err != nil {
		_, _ = e.bank.AdjustBalance(context.Background(), playerID, extra)
		return e.checkShoeFault(err)
	}
	h := e.Table.Seats()[pos].Hand
	e.emitCardLocked(playerID, c, false, h.Value())
	e.advanceLocked()
	return nil
}

// Surrender forfeits the hand and passes the turn.
func (e *Engine) Surrender(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.Room.IsPlayersTurn(playerID) {
		return room.ErrNotPlayerTurn
	}
	if err := e.Table.Surrender(playerID); err != nil {
		return err
	}
	e.advanceLocked()
	return nil
}

// ---------------------
//   TURN SEQUENCING
// ---------------------

// advanceLocked moves the turn to the next seat whose hand is still live,
// or finishes the round once every seat is resolved.
func (e *Engine) advanceLocked() {
	e.advanceToPlayableLocked(true)
}

func (e *Engine) advanceToPlayableLocked(skipCurrent bool) {
	if e.Table.AllSeatsResolved() {
		e.finishRoundLocked()
		return
	}
	if !skipCurrent {
		if p, ok := e.Room.CurrentPlayer(); ok && !e.handComplete(p.ID) {
			e.resetTurnTimerLocked()
			return
		}
	}
	// bounded by roster size; a live hand exists per the check above
	for i := 0; i < e.Room.PlayerCount(); i++ {
		events, err := e.Room.NextTurn()
		if err != nil {
			utils.Error.Printf("turn advance in room %s: %v", e.Room.Code(), err)
			return
		}
		e.emitLocked(events)
		if p, ok := e.Room.CurrentPlayer(); ok && !e.handComplete(p.ID) {
			e.resetTurnTimerLocked()
			return
		}
	}
	e.finishRoundLocked()
}

func (e *Engine) handComplete(playerID string) bool {
	pos, ok := e.Table.SeatOf(playerID)
	if !ok {
		return true
	}
	h := e.Table.Seats()[pos].Hand
	return h == nil || h.IsComplete()
}

// finishRoundLocked plays the dealer, settles every staked seat, credits
// payouts and reopens the room for the next round of bets.
func (e *Engine) finishRoundLocked() {
	e.stopTurnTimerLocked()

	dealer := e.Table.DealerHand()
	// reveal the hole card before the dealer draws
	if dealer != nil && dealer.Size() >= 2 {
		hole := dealer.Cards()[1]
		e.emitCardLocked("dealer", hole, false, dealer.Value())
	}
	drawn, err := e.Table.PlayDealer()
	if err != nil {
		e.faultRoundLocked(err)
		return
	}
	for _, c := range drawn {
		e.emitCardLocked("dealer", c, false, dealer.Value())
	}

	results, err := e.Table.Settle()
	if err != nil {
		e.faultRoundLocked(err)
		return
	}

	summary := RoundSummary{
		RoundNumber: e.Table.RoundNumber(),
		DealerValue: dealer.Value(),
		DealerCards: dealer.Cards(),
	}
	for _, res := range results {
		entry := SettlementEntry{
			PlayerID:    res.PlayerID,
			Outcome:     res.Outcome,
			Surrendered: res.Surrendered,
			Bet:         res.Bet,
			Payout:      res.Payout,
			HandValue:   res.HandValue,
		}
		if res.Payout.IsPositive() {
			bal, err := e.bank.AdjustBalance(context.Background(), res.PlayerID, res.Payout)
			if err != nil {
				utils.Error.Printf("payout credit failed for %s: %v", res.PlayerID, err)
			} else {
				entry.Balance = bal
			}
		} else if bal, err := e.bank.LoadBalance(context.Background(), res.PlayerID); err == nil {
			entry.Balance = bal
		}
		summary.Results = append(summary.Results, entry)
	}

	e.emitLocked([]room.Event{{Kind: room.EventRoundEnded, Payload: summary}})

	if err := e.Table.EndRound(); err != nil {
		utils.Error.Printf("end round in room %s: %v", e.Room.Code(), err)
	}
	e.Room.ResetTurnFlags()
	if err := e.Room.ReopenForNextRound(); err != nil {
		utils.Error.Printf("reopen room %s: %v", e.Room.Code(), err)
	}
}

// checkShoeFault converts a mid-round shoe exhaustion into a round abort.
// Exhaustion here means the round-boundary reshuffle check was defeated;
// treat it as fatal for the round, not recoverable.
func (e *Engine) checkShoeFault(err error) error {
	if errors.Is(err, deck.ErrEmptyShoe) || errors.Is(err, deck.ErrInsufficientCards) {
		e.faultRoundLocked(err)
	}
	return err
}

func (e *Engine) faultRoundLocked(cause error) {
	utils.Error.Printf("round aborted in room %s: %v", e.Room.Code(), cause)
	e.stopTurnTimerLocked()
	// stakes go back before the table forgets them
	for _, seat := range e.Table.Seats() {
		if seat.Occupied() && seat.Bet != nil {
			if _, err := e.bank.AdjustBalance(context.Background(), seat.PlayerID, seat.Bet.Amount()); err != nil {
				utils.Error.Printf("abort refund failed for %s: %v", seat.PlayerID, err)
			}
		}
	}
	e.Table.AbortRound()
	e.Room.ResetTurnFlags()
	_ = e.Room.ReopenForNextRound()
	e.emitLocked([]room.Event{{
		Kind:    "round_aborted",
		Payload: map[string]any{"reason": cause.Error()},
	}})
}

// ---------------------
//     TURN TIMER
// ---------------------

func (e *Engine) resetTurnTimerLocked() {
	e.stopTurnTimerLocked()
	if e.turnTimeout <= 0 {
		return
	}
	e.turnEpoch++
	epoch := e.turnEpoch
	player, ok := e.Room.CurrentPlayer()
	if !ok {
		return
	}
	id := player.ID
	e.turnTimer = time.AfterFunc(e.turnTimeout, func() {
		// 经 action channel 回到单写者协程
		_ = e.EnqueueAction(id, "turn_timeout", map[string]any{"epoch": epoch})
	})
}

func (e *Engine) stopTurnTimerLocked() {
	if e.turnTimer != nil {
		e.turnTimer.Stop()
		e.turnTimer = nil
	}
}

// handleTurnTimeout forces a stand on behalf of a player who let the turn
// clock run out. Stale timers (epoch mismatch) are dropped.
func (e *Engine) handleTurnTimeout(a Action) {
	e.mu.Lock()
	epoch, _ := a.Payload["epoch"].(int)
	if epoch != e.turnEpoch || !e.Room.IsPlayersTurn(a.Player) {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	if err := e.Stand(a.Player); err != nil {
		utils.Error.Printf("forced stand for %s: %v", a.Player, err)
	}
}

// ---------------------
//       EVENTS
// ---------------------

func (e *Engine) emitDealLocked() {
	for _, seat := range e.Table.Seats() {
		if !seat.Occupied() || seat.Hand == nil {
			continue
		}
		for _, c := range seat.Hand.Cards() {
			e.emitCardLocked(seat.PlayerID, c, false, seat.Hand.Value())
		}
	}
	dealer := e.Table.DealerHand()
	if dealer == nil {
		return
	}
	cards := dealer.Cards()
	if len(cards) > 0 {
		up := cards[0]
		e.emitCardLocked("dealer", up, false, up.BaseValue())
	}
	if len(cards) > 1 {
		// hole card stays face down until every seat resolves
		e.emitLocked([]room.Event{{
			Kind:    room.EventCardDealt,
			Payload: CardDealtPayload{PlayerID: "dealer", Hidden: true},
		}})
	}
}

func (e *Engine) emitCardLocked(playerID string, c deck.Card, hidden bool, value int) {
	e.emitLocked([]room.Event{{
		Kind: room.EventCardDealt,
		Payload: CardDealtPayload{
			PlayerID: playerID,
			Card:     &c,
			Display:  c.String(),
			Hidden:   hidden,
			Value:    value,
		},
	}})
}

// emitLocked forwards domain events to the hub, preserving in-call order.
func (e *Engine) emitLocked(events []room.Event) {
	for _, ev := range events {
		msg := websocket.OutgoingMessage{Event: string(ev.Kind), Data: ev.Payload}
		if len(ev.Recipients) == 0 {
			e.hub.BroadcastToPlayers(e.Room.Audience(), msg)
			continue
		}
		for _, id := range ev.Recipients {
			e.hub.SendToPlayer(id, msg)
		}
	}
}
