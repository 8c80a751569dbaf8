package manager

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"BlackJack/internal/bank"
	"BlackJack/internal/game/engine"
	"BlackJack/internal/game/room"
	"BlackJack/internal/game/table"
	"BlackJack/internal/roomstore"
	"BlackJack/internal/utils"
	"BlackJack/internal/websocket"
)

// Options carry per-deployment game settings into new tables.
type Options struct {
	Rules       table.Rules
	TurnTimeout time.Duration
	RoomTTL     time.Duration
	Seed        func() int64 // per-table shoe seed; nil means time-based
}

// GameManager 管理所有房间：code → engine，玩家 → code 反向索引。
type GameManager struct {
	mu           sync.RWMutex
	engines      map[string]*engine.Engine // room code → engine
	playerToRoom map[string]string         // playerID → room code
	hub          websocket.HubInterface
	bank         bank.Bank
	store        roomstore.Repo
	opts         Options
	rnd          *rand.Rand
}

func NewGameManager(hub websocket.HubInterface, b bank.Bank, store roomstore.Repo, opts Options) *GameManager {
	if opts.Seed == nil {
		opts.Seed = func() int64 { return time.Now().UnixNano() }
	}
	if opts.RoomTTL <= 0 {
		opts.RoomTTL = time.Hour
	}
	return &GameManager{
		engines:      make(map[string]*engine.Engine),
		playerToRoom: make(map[string]string),
		hub:          hub,
		bank:         b,
		store:        store,
		opts:         opts,
		rnd:          rand.New(rand.NewSource(opts.Seed())),
	}
}

// CreateRoom allocates a code, builds a room/table pair, starts its engine
// and seats the creator as host.
func (m *GameManager) CreateRoom(ctx context.Context, playerID, name string) (*engine.Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if code, ok := m.playerToRoom[playerID]; ok {
		return nil, &AlreadyInRoomError{Code: code}
	}

	code, err := roomstore.GenerateCode(ctx, m.store, m.rnd)
	if err != nil {
		return nil, err
	}

	r := room.New(code, m.opts.Rules.SeatCount)
	t := table.New(m.opts.Rules, rand.New(rand.NewSource(m.opts.Seed())))
	eng := engine.New(r, t, m.hub, m.bank, m.opts.TurnTimeout)

	if err := eng.JoinPlayer(playerID, name); err != nil {
		return nil, err
	}

	m.engines[code] = eng
	m.playerToRoom[playerID] = code
	eng.Start()

	m.persistLocked(ctx, eng)
	return eng, nil
}

// JoinRoom seats a player in an existing room by code.
func (m *GameManager) JoinRoom(ctx context.Context, code, playerID, name string) (*engine.Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.playerToRoom[playerID]; ok {
		return nil, &AlreadyInRoomError{Code: existing}
	}
	eng, ok := m.engines[code]
	if !ok {
		return nil, roomstore.ErrRoomNotFound
	}
	if err := eng.JoinPlayer(playerID, name); err != nil {
		return nil, err
	}
	m.playerToRoom[playerID] = code

	m.persistLocked(ctx, eng)
	return eng, nil
}

// SpectateRoom registers a watcher; watchers hold no seat and no index
// entry, so they may come and go freely.
func (m *GameManager) SpectateRoom(code, playerID string) error {
	m.mu.RLock()
	eng, ok := m.engines[code]
	m.mu.RUnlock()
	if !ok {
		return roomstore.ErrRoomNotFound
	}
	eng.JoinSpectator(playerID)
	return nil
}

// LeaveRoom removes a player; the room is torn down once empty.
func (m *GameManager) LeaveRoom(ctx context.Context, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	code, ok := m.playerToRoom[playerID]
	if !ok {
		return roomstore.ErrRoomNotFound
	}
	eng := m.engines[code]
	delete(m.playerToRoom, playerID)

	if err := eng.LeavePlayer(playerID); err != nil {
		return err
	}

	if eng.Room.PlayerCount() == 0 {
		eng.Stop()
		delete(m.engines, code)
		if err := m.store.Delete(ctx, code); err != nil {
			utils.Error.Printf("delete room %s: %v", code, err)
		}
		return nil
	}
	m.persistLocked(ctx, eng)
	return nil
}

// EngineByCode looks a running engine up.
func (m *GameManager) EngineByCode(code string) (*engine.Engine, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	eng, ok := m.engines[code]
	return eng, ok
}

// RoomOf returns the code of the room the player is seated in.
func (m *GameManager) RoomOf(playerID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	code, ok := m.playerToRoom[playerID]
	return code, ok
}

// HandlePlayerMessage 统一入口（来自 Hub.OnIncoming）
func (m *GameManager) HandlePlayerMessage(msg websocket.IncomingMessage) {
	m.mu.RLock()
	code := m.playerToRoom[msg.From]
	eng := m.engines[code]
	m.mu.RUnlock()

	if eng == nil {
		return
	}

	switch msg.Event {
	case "chat":
		// 桌内聊天广播，不进引擎
		m.hub.BroadcastToPlayers(
			eng.Room.Audience(),
			websocket.OutgoingMessage{
				Event: "chat",
				Data: map[string]any{
					"from": msg.From,
					"text": msg.Data,
				},
			},
		)
	default:
		payload, _ := msg.Data.(map[string]any)
		if err := eng.EnqueueAction(msg.From, msg.Event, payload); err != nil {
			utils.Error.Printf("enqueue %s for %s: %v", msg.Event, msg.From, err)
		}
	}
}

// persistLocked mirrors the room into the store; persistence failures are
// logged, never fail the in-memory transition.
func (m *GameManager) persistLocked(ctx context.Context, eng *engine.Engine) {
	saved := roomstore.SavedRoom{
		Code:      eng.Room.Code(),
		HostID:    eng.Room.HostID(),
		Players:   eng.Room.PlayerIDs(),
		Status:    string(eng.Room.Status()),
		CreatedAt: time.Now(),
	}
	if err := m.store.Save(ctx, saved, m.opts.RoomTTL); err != nil {
		utils.Error.Printf("save room %s: %v", saved.Code, err)
	}
}

// AlreadyInRoomError reports the room a duplicate joiner is already in.
type AlreadyInRoomError struct {
	Code string
}

func (e *AlreadyInRoomError) Error() string {
	return "player already in room " + e.Code
}
