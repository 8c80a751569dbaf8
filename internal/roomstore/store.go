package roomstore

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrCodeSpace    = errors.New("could not allocate a free room code")
)

// SavedRoom 房间的持久化形态：重启/多实例场景下按 code 找回。
type SavedRoom struct {
	Code      string    `json:"code"`
	HostID    string    `json:"hostId"`
	Players   []string  `json:"players"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repo 定义对房间注册表的抽象操作
type Repo interface {
	// Save upserts a room under its code with the given TTL.
	Save(ctx context.Context, room SavedRoom, ttl time.Duration) error
	// Load returns the room for a code, ErrRoomNotFound when absent.
	Load(ctx context.Context, code string) (SavedRoom, error)
	// Delete drops the room; deleting an absent code is a no-op.
	Delete(ctx context.Context, code string) error
	// Exists reports whether the code is taken.
	Exists(ctx context.Context, code string) (bool, error)
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// GenerateCode allocates an unused 6-character room code, retrying on
// collisions.
func GenerateCode(ctx context.Context, repo Repo, rnd *rand.Rand) (string, error) {
	for attempt := 0; attempt < 32; attempt++ {
		b := make([]byte, codeLength)
		for i := range b {
			b[i] = codeAlphabet[rnd.Intn(len(codeAlphabet))]
		}
		code := string(b)
		taken, err := repo.Exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpace
}
