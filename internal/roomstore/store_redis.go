package roomstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisRepo struct {
	rdb *redis.Client
}

// NewRedisRepo returns a Repo storing rooms as JSON values with TTL.
func NewRedisRepo(rdb *redis.Client) Repo {
	return &redisRepo{rdb: rdb}
}

// key 约定：bj:room:{code} -> JSON(SavedRoom)，带 TTL 防止遗留房间
func roomKey(code string) string {
	return fmt.Sprintf("bj:room:%s", code)
}

func (r *redisRepo) Save(ctx context.Context, room SavedRoom, ttl time.Duration) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, roomKey(room.Code), data, ttl).Err()
}

func (r *redisRepo) Load(ctx context.Context, code string) (SavedRoom, error) {
	data, err := r.rdb.Get(ctx, roomKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return SavedRoom{}, ErrRoomNotFound
	}
	if err != nil {
		return SavedRoom{}, err
	}
	var room SavedRoom
	if err := json.Unmarshal(data, &room); err != nil {
		return SavedRoom{}, err
	}
	return room, nil
}

func (r *redisRepo) Delete(ctx context.Context, code string) error {
	return r.rdb.Del(ctx, roomKey(code)).Err()
}

func (r *redisRepo) Exists(ctx context.Context, code string) (bool, error) {
	n, err := r.rdb.Exists(ctx, roomKey(code)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
