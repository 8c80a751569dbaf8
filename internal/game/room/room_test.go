package room

import (
	"errors"
	"fmt"
	"testing"
)

func fillRoom(t *testing.T, r *Room, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("p%d", i)
		if _, err := r.AddPlayer(id, "player"+id); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
}

func TestAddPlayer(t *testing.T) {
	r := New("ABC123", 3)

	events, err := r.AddPlayer("alice", "Alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].Kind != EventPlayerJoined {
		t.Fatalf("expected player_joined event, got %+v", events)
	}
	p := events[0].Payload.(PlayerJoinedPayload)
	if p.PlayerID != "alice" || p.Position != 0 || p.Total != 1 {
		t.Fatalf("bad payload: %+v", p)
	}
	// 首位玩家成为 host
	if r.HostID() != "alice" {
		t.Fatalf("first player should be host, got %q", r.HostID())
	}

	if _, err := r.AddPlayer("alice", "Alice"); !errors.Is(err, ErrDuplicatePlayer) {
		t.Fatalf("expected ErrDuplicatePlayer, got %v", err)
	}

	fillRoom(t, r, 2)
	if _, err := r.AddPlayer("dave", "Dave"); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
}

func TestAddPlayerWhileInProgress(t *testing.T) {
	r := New("ABC123", 6)
	fillRoom(t, r, 2)
	if _, err := r.StartGame("tbl-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.AddPlayer("late", "Late"); !errors.Is(err, ErrRoomNotAcceptingPlayers) {
		t.Fatalf("expected ErrRoomNotAcceptingPlayers, got %v", err)
	}
}

func TestRemovePlayerReindexes(t *testing.T) {
	r := New("ABC123", 6)
	fillRoom(t, r, 4)

	if _, err := r.RemovePlayer("p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	players := r.Players()
	if len(players) != 3 {
		t.Fatalf("expected 3 players, got %d", len(players))
	}
	for i, p := range players {
		if p.Position != i {
			t.Fatalf("positions must stay contiguous, got %d at index %d", p.Position, i)
		}
	}
	if players[1].ID != "p2" || players[1].Position != 1 {
		t.Fatalf("p2 should slide to position 1, got %+v", players[1])
	}

	if _, err := r.RemovePlayer("ghost"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

// ✅ 场景：4 人，轮到 3 号，3 号离开后轮转回 0 号
func TestRemoveCurrentLastPlayerWrapsToZero(t *testing.T) {
	r := New("ABC123", 6)
	fillRoom(t, r, 4)
	if _, err := r.StartGame("tbl-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := r.NextTurn(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if r.CurrentPlayerIndex() != 3 {
		t.Fatalf("expected turn at index 3, got %d", r.CurrentPlayerIndex())
	}

	if _, err := r.RemovePlayer("p3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.CurrentPlayerIndex() != 0 {
		t.Fatalf("turn index should wrap to 0, got %d", r.CurrentPlayerIndex())
	}
	cur, ok := r.CurrentPlayer()
	if !ok || cur.ID != "p0" {
		t.Fatalf("turn should land on p0, got %+v", cur)
	}
}

func TestHostTransferOnHostLeave(t *testing.T) {
	r := New("ABC123", 6)
	fillRoom(t, r, 3)

	events, err := r.RemovePlayer("p0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.HostID() != "p1" {
		t.Fatalf("host should pass to new first player, got %q", r.HostID())
	}
	payload := events[0].Payload.(PlayerLeftPayload)
	if payload.NewHostID != "p1" {
		t.Fatalf("event should carry new host, got %+v", payload)
	}
}

func TestSpectatorIdempotence(t *testing.T) {
	r := New("ABC123", 6)

	events := r.AddSpectator("watcher")
	if len(events) != 1 || events[0].Kind != EventSpectatorJoined {
		t.Fatalf("expected spectator_joined event, got %+v", events)
	}
	// 重复加入与删除不存在的观众都静默
	if events := r.AddSpectator("watcher"); events != nil {
		t.Fatalf("duplicate join must be silent, got %+v", events)
	}
	if len(r.Spectators()) != 1 {
		t.Fatalf("expected 1 spectator, got %d", len(r.Spectators()))
	}

	events = r.RemoveSpectator("watcher")
	if len(events) != 1 || events[0].Kind != EventSpectatorLeft {
		t.Fatalf("expected spectator_left event, got %+v", events)
	}
	if events := r.RemoveSpectator("watcher"); events != nil {
		t.Fatalf("unknown removal must be silent, got %+v", events)
	}
}

func TestStartGame(t *testing.T) {
	r := New("ABC123", 6)

	if _, err := r.StartGame("tbl-1"); !errors.Is(err, ErrNoPlayers) {
		t.Fatalf("expected ErrNoPlayers, got %v", err)
	}

	fillRoom(t, r, 2)
	events, err := r.StartGame("tbl-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status() != StatusInProgress || r.TableID() != "tbl-1" {
		t.Fatalf("start should bind table and flip status")
	}
	payload := events[0].Payload.(GameStartedPayload)
	if payload.FirstTurn != "p0" || len(payload.Names) != 2 {
		t.Fatalf("bad payload: %+v", payload)
	}

	if _, err := r.StartGame("tbl-2"); !errors.Is(err, ErrGameInProgress) {
		t.Fatalf("expected ErrGameInProgress, got %v", err)
	}
}

func TestNextTurn(t *testing.T) {
	r := New("ABC123", 6)
	fillRoom(t, r, 3)

	if _, err := r.NextTurn(); !errors.Is(err, ErrGameNotInProgress) {
		t.Fatalf("expected ErrGameNotInProgress, got %v", err)
	}
	if _, err := r.StartGame("tbl-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !r.IsPlayersTurn("p0") || r.IsPlayersTurn("p1") {
		t.Fatalf("turn should start at p0")
	}

	events, err := r.NextTurn()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payload := events[0].Payload.(TurnChangedPayload)
	if payload.Previous != "p0" || payload.Current != "p1" {
		t.Fatalf("bad payload: %+v", payload)
	}
	if p, _ := r.PlayerByID("p0"); !p.TurnPlayed {
		t.Fatalf("p0 should be marked as having played")
	}

	// 模轮转：p1 -> p2 -> p0
	if _, err := r.NextTurn(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.NextTurn(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.IsPlayersTurn("p0") {
		t.Fatalf("turn should wrap back to p0")
	}
}

func TestResetTurnFlags(t *testing.T) {
	r := New("ABC123", 6)
	fillRoom(t, r, 2)
	if _, err := r.StartGame("tbl-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.NextTurn(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.ResetTurnFlags()
	if r.CurrentPlayerIndex() != 0 {
		t.Fatalf("reset should rewind the turn to 0")
	}
	for _, p := range r.Players() {
		if p.TurnPlayed {
			t.Fatalf("reset should clear turn flags")
		}
	}
}

func TestReopenForNextRound(t *testing.T) {
	r := New("ABC123", 6)
	fillRoom(t, r, 1)

	if err := r.ReopenForNextRound(); !errors.Is(err, ErrGameNotInProgress) {
		t.Fatalf("expected ErrGameNotInProgress, got %v", err)
	}
	if _, err := r.StartGame("tbl-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.ReopenForNextRound(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status() != StatusWaitingForPlayers {
		t.Fatalf("reopen should take bets again, got %s", r.Status())
	}
	// 重新开局复用同一房间
	if _, err := r.StartGame("tbl-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEndGame(t *testing.T) {
	r := New("ABC123", 6)
	fillRoom(t, r, 2)
	if _, err := r.StartGame("tbl-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events, err := r.EndGame()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if events[0].Kind != EventGameEnded {
		t.Fatalf("expected game_ended event, got %+v", events)
	}
	if r.Status() != StatusFinished {
		t.Fatalf("expected finished, got %s", r.Status())
	}
	if _, err := r.EndGame(); !errors.Is(err, ErrGameNotInProgress) {
		t.Fatalf("ending twice must fail, got %v", err)
	}
}

func TestPauseResume(t *testing.T) {
	r := New("ABC123", 6)
	fillRoom(t, r, 1)

	if err := r.Pause(); !errors.Is(err, ErrGameNotInProgress) {
		t.Fatalf("expected ErrGameNotInProgress, got %v", err)
	}
	if _, err := r.StartGame("tbl-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Pause(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.NextTurn(); !errors.Is(err, ErrGameNotInProgress) {
		t.Fatalf("paused room must reject turns, got %v", err)
	}
	if err := r.Resume(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status() != StatusInProgress {
		t.Fatalf("expected in progress, got %s", r.Status())
	}
}

func TestAudience(t *testing.T) {
	r := New("ABC123", 6)
	fillRoom(t, r, 2)
	r.AddSpectator("watcher")

	audience := r.Audience()
	want := []string{"p0", "p1", "watcher"}
	if len(audience) != len(want) {
		t.Fatalf("expected %d recipients, got %d", len(want), len(audience))
	}
	for i := range want {
		if audience[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, audience)
		}
	}
}
