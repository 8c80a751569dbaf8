package room

import "errors"

var (
	ErrRoomFull                = errors.New("room is at capacity")
	ErrDuplicatePlayer         = errors.New("player already in room")
	ErrRoomNotAcceptingPlayers = errors.New("room is not accepting players")
	ErrGameNotInProgress       = errors.New("game not in progress")
	ErrGameInProgress          = errors.New("game already in progress")
	ErrNoPlayers               = errors.New("room has no players")
	ErrPlayerNotFound          = errors.New("player not found in room")
	ErrNotPlayerTurn           = errors.New("not this player's turn")
	ErrRoomNotPaused           = errors.New("room is not paused")
)

// Status is the room's lifecycle state, tracked independently of the table
// it binds to.
type Status string

const (
	StatusWaitingForPlayers Status = "waiting_for_players"
	StatusInProgress        Status = "in_progress"
	StatusFinished          Status = "finished"
	StatusPaused            Status = "paused"
)

// Player is one roster entry. Position stays contiguous from 0.
type Player struct {
	ID         string
	Name       string
	Position   int
	Ready      bool
	TurnPlayed bool
}

// Room 管理一个房间的玩家名单、观众与轮转顺序。
// 每个修改操作返回本次调用产生的有序事件列表，由宿主负责投递。
type Room struct {
	code       string
	hostID     string
	tableID    string
	players    []*Player
	spectators []string
	capacity   int
	current    int // CurrentPlayerIndex; meaningless while roster empty
	status     Status
}

// New creates an empty room identified by a short shareable code.
func New(code string, capacity int) *Room {
	if capacity <= 0 {
		capacity = 6
	}
	return &Room{
		code:     code,
		capacity: capacity,
		status:   StatusWaitingForPlayers,
	}
}

func (r *Room) Code() string     { return r.code }
func (r *Room) HostID() string   { return r.hostID }
func (r *Room) TableID() string  { return r.tableID }
func (r *Room) Status() Status   { return r.status }
func (r *Room) PlayerCount() int { return len(r.players) }

// Players returns the roster in position order.
func (r *Room) Players() []*Player {
	out := make([]*Player, len(r.players))
	copy(out, r.players)
	return out
}

// Spectators returns the spectator ids in join order.
func (r *Room) Spectators() []string {
	out := make([]string, len(r.spectators))
	copy(out, r.spectators)
	return out
}

// PlayerByID looks a player up in the roster.
func (r *Room) PlayerByID(id string) (*Player, bool) {
	for _, p := range r.players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// CurrentPlayer returns the player whose turn it is.
func (r *Room) CurrentPlayer() (*Player, bool) {
	if len(r.players) == 0 || r.current < 0 || r.current >= len(r.players) {
		return nil, false
	}
	return r.players[r.current], true
}

// CurrentPlayerIndex returns the raw turn index.
func (r *Room) CurrentPlayerIndex() int { return r.current }

// IsPlayersTurn reports whether id holds the current turn.
func (r *Room) IsPlayersTurn(id string) bool {
	p, ok := r.CurrentPlayer()
	return ok && p.ID == id
}

// AddPlayer admits a player to the roster. The first player becomes host.
func (r *Room) AddPlayer(id, name string) ([]Event, error) {
	if r.status != StatusWaitingForPlayers {
		return nil, ErrRoomNotAcceptingPlayers
	}
	if len(r.players) >= r.capacity {
		return nil, ErrRoomFull
	}
	if _, ok := r.PlayerByID(id); ok {
		return nil, ErrDuplicatePlayer
	}

	p := &Player{ID: id, Name: name, Position: len(r.players)}
	r.players = append(r.players, p)
	if r.hostID == "" {
		r.hostID = id
	}

	return []Event{{
		Kind: EventPlayerJoined,
		Payload: PlayerJoinedPayload{
			PlayerID: id,
			Name:     name,
			Position: p.Position,
			Total:    len(r.players),
		},
	}}, nil
}

// RemovePlayer drops a player, re-indexes the remaining positions
// contiguously from 0, wraps the turn index back to 0 when it falls off
// the end, and hands the host role to the new first player if needed.
func (r *Room) RemovePlayer(id string) ([]Event, error) {
	idx := -1
	for i, p := range r.players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrPlayerNotFound
	}

	r.players = append(r.players[:idx], r.players[idx+1:]...)
	for i, p := range r.players {
		p.Position = i
	}
	if r.current >= len(r.players) {
		r.current = 0
	}

	payload := PlayerLeftPayload{PlayerID: id, Total: len(r.players)}
	if r.hostID == id {
		r.hostID = ""
		if len(r.players) > 0 {
			r.hostID = r.players[0].ID
			payload.NewHostID = r.hostID
		}
	}

	return []Event{{Kind: EventPlayerLeft, Payload: payload}}, nil
}

// AddSpectator admits a watcher; duplicate joins are silently ignored.
func (r *Room) AddSpectator(id string) []Event {
	for _, s := range r.spectators {
		if s == id {
			return nil
		}
	}
	r.spectators = append(r.spectators, id)
	return []Event{{
		Kind:    EventSpectatorJoined,
		Payload: SpectatorPayload{PlayerID: id, Total: len(r.spectators)},
	}}
}

// RemoveSpectator drops a watcher; unknown ids are silently ignored.
func (r *Room) RemoveSpectator(id string) []Event {
	for i, s := range r.spectators {
		if s == id {
			r.spectators = append(r.spectators[:i], r.spectators[i+1:]...)
			return []Event{{
				Kind:    EventSpectatorLeft,
				Payload: SpectatorPayload{PlayerID: id, Total: len(r.spectators)},
			}}
		}
	}
	return nil
}

// StartGame binds (or rebinds) the table, resets the turn to the first
// player and moves the room to InProgress.
func (r *Room) StartGame(tableID string) ([]Event, error) {
	if r.status != StatusWaitingForPlayers {
		return nil, ErrGameInProgress
	}
	if len(r.players) < 1 {
		return nil, ErrNoPlayers
	}

	r.tableID = tableID
	r.current = 0
	r.status = StatusInProgress
	for _, p := range r.players {
		p.TurnPlayed = false
	}

	names := make([]string, len(r.players))
	for i, p := range r.players {
		names[i] = p.Name
	}

	return []Event{{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			TableID:   tableID,
			Names:     names,
			FirstTurn: r.players[0].ID,
		},
	}}, nil
}

// NextTurn advances the turn index modulo the roster.
func (r *Room) NextTurn() ([]Event, error) {
	if r.status != StatusInProgress {
		return nil, ErrGameNotInProgress
	}
	if len(r.players) == 0 {
		return nil, ErrNoPlayers
	}

	prev := r.players[r.current].ID
	r.players[r.current].TurnPlayed = true
	r.current = (r.current + 1) % len(r.players)

	return []Event{{
		Kind: EventTurnChanged,
		Payload: TurnChangedPayload{
			Previous: prev,
			Current:  r.players[r.current].ID,
		},
	}}, nil
}

// ResetTurnFlags clears per-round TurnPlayed markers and rewinds the turn
// to the first player, keeping the game in progress across rounds.
func (r *Room) ResetTurnFlags() {
	for _, p := range r.players {
		p.TurnPlayed = false
	}
	r.current = 0
}

// ReopenForNextRound returns an in-progress room to the waiting state so a
// fresh round of bets can be taken.
func (r *Room) ReopenForNextRound() error {
	if r.status != StatusInProgress {
		return ErrGameNotInProgress
	}
	r.status = StatusWaitingForPlayers
	return nil
}

// SetReady marks a roster entry ready (or not).
func (r *Room) SetReady(id string, ready bool) error {
	p, ok := r.PlayerByID(id)
	if !ok {
		return ErrPlayerNotFound
	}
	p.Ready = ready
	return nil
}

// EndGame finishes the room for good. Legal from any state but Finished,
// so a paused game can still be ended.
func (r *Room) EndGame() ([]Event, error) {
	if r.status == StatusFinished {
		return nil, ErrGameNotInProgress
	}
	r.status = StatusFinished
	return []Event{{
		Kind:    EventGameEnded,
		Payload: GameEndedPayload{Code: r.code},
	}}, nil
}

// Pause suspends an in-progress room.
func (r *Room) Pause() error {
	if r.status != StatusInProgress {
		return ErrGameNotInProgress
	}
	r.status = StatusPaused
	return nil
}

// Resume continues a paused room.
func (r *Room) Resume() error {
	if r.status != StatusPaused {
		return ErrRoomNotPaused
	}
	r.status = StatusInProgress
	return nil
}

// PlayerIDs returns roster ids in position order.
func (r *Room) PlayerIDs() []string {
	out := make([]string, len(r.players))
	for i, p := range r.players {
		out[i] = p.ID
	}
	return out
}

// Audience returns everyone who should see broadcast events: the roster
// plus spectators.
func (r *Room) Audience() []string {
	out := make([]string, 0, len(r.players)+len(r.spectators))
	out = append(out, r.PlayerIDs()...)
	out = append(out, r.spectators...)
	return out
}
