package roomstore

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoom(code string) SavedRoom {
	return SavedRoom{
		Code:      code,
		HostID:    "alice",
		Players:   []string{"alice", "bob"},
		Status:    "waiting_for_players",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// 两种实现跑同一组断言
func runRepoSuite(t *testing.T, repo Repo) {
	ctx := context.Background()

	// ✅ 未保存前不存在
	_, err := repo.Load(ctx, "ABC123")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	exists, err := repo.Exists(ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, exists)

	// ✅ Save / Load 往返
	want := sampleRoom("ABC123")
	require.NoError(t, repo.Save(ctx, want, time.Hour))
	got, err := repo.Load(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, want.Code, got.Code)
	assert.Equal(t, want.HostID, got.HostID)
	assert.Equal(t, want.Players, got.Players)
	assert.Equal(t, want.Status, got.Status)

	exists, err = repo.Exists(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, exists)

	// ✅ upsert 覆盖
	want.HostID = "bob"
	require.NoError(t, repo.Save(ctx, want, time.Hour))
	got, err = repo.Load(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.HostID)

	// ✅ Delete 幂等
	require.NoError(t, repo.Delete(ctx, "ABC123"))
	require.NoError(t, repo.Delete(ctx, "ABC123"))
	_, err = repo.Load(ctx, "ABC123")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestMemoryRepo(t *testing.T) {
	runRepoSuite(t, NewMemoryRepo())
}

func TestRedisRepo(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	runRepoSuite(t, NewRedisRepo(rdb))
}

func TestRedisRepoTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewRedisRepo(rdb)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleRoom("TTL001"), time.Minute))

	// miniredis 手动推进时钟使 key 过期
	mr.FastForward(2 * time.Minute)

	_, err := repo.Load(ctx, "TTL001")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestGenerateCode(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	rnd := rand.New(rand.NewSource(1))

	code, err := GenerateCode(ctx, repo, rnd)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, c := range code {
		assert.Contains(t, codeAlphabet, string(c))
	}

	// ✅ 碰撞重试：把第一次会生成的 code 先占掉
	taken := rand.New(rand.NewSource(2))
	first, err := GenerateCode(ctx, repo, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, sampleRoom(first), time.Hour))
	second, err := GenerateCode(ctx, repo, taken)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
