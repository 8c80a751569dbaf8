package room

// EventKind identifies an emitted domain event.
type EventKind string

const (
	EventPlayerJoined    EventKind = "player_joined"
	EventPlayerLeft      EventKind = "player_left"
	EventSpectatorJoined EventKind = "spectator_joined"
	EventSpectatorLeft   EventKind = "spectator_left"
	EventGameStarted     EventKind = "game_started"
	EventTurnChanged     EventKind = "turn_changed"
	EventGameEnded       EventKind = "game_ended"
	EventCardDealt       EventKind = "card_dealt"
	EventRoundEnded      EventKind = "round_ended"
)

// Event is a domain event produced by a single mutating call. Order within
// one call is meaningful and must be preserved by whoever delivers them.
// Empty Recipients means broadcast to the whole room.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string
}

type PlayerJoinedPayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Total    int    `json:"total"`
}

type PlayerLeftPayload struct {
	PlayerID  string `json:"playerId"`
	NewHostID string `json:"newHostId,omitempty"`
	Total     int    `json:"total"`
}

type SpectatorPayload struct {
	PlayerID string `json:"playerId"`
	Total    int    `json:"total"`
}

type GameStartedPayload struct {
	TableID   string   `json:"tableId"`
	Names     []string `json:"names"`
	FirstTurn string   `json:"firstTurn"`
}

type TurnChangedPayload struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

type GameEndedPayload struct {
	Code string `json:"code"`
}
