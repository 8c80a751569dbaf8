package roomstore

import (
	"context"
	"sync"
	"time"
)

type memRepo struct {
	mu    sync.Mutex
	rooms map[string]SavedRoom
}

// NewMemoryRepo 内存版仅供测试与单机运行，忽略 TTL。
func NewMemoryRepo() Repo {
	return &memRepo{rooms: make(map[string]SavedRoom)}
}

func (m *memRepo) Save(ctx context.Context, room SavedRoom, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.Code] = room
	return nil
}

func (m *memRepo) Load(ctx context.Context, code string) (SavedRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[code]
	if !ok {
		return SavedRoom{}, ErrRoomNotFound
	}
	return room, nil
}

func (m *memRepo) Delete(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, code)
	return nil
}

func (m *memRepo) Exists(ctx context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rooms[code]
	return ok, nil
}
