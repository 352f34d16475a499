package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSeenSet(t *testing.T, ttl time.Duration) (*SeenSet, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	set := NewSeenSetWithClient(client, ttl)
	t.Cleanup(func() { _ = set.Close() })

	return set, mr
}

func TestSeenSet_IsNewThenMarkSeen(t *testing.T) {
	set, _ := setupSeenSet(t, time.Hour)
	ctx := context.Background()

	isNew, err := set.IsNew(ctx, "12345")
	require.NoError(t, err)
	assert.True(t, isNew)

	require.NoError(t, set.MarkSeen(ctx, "12345"))

	isNew, err = set.IsNew(ctx, "12345")
	require.NoError(t, err)
	assert.False(t, isNew)
}

func TestSeenSet_MarkSeenRefreshesTTL(t *testing.T) {
	set, mr := setupSeenSet(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, set.MarkSeen(ctx, "1"))
	assert.Equal(t, time.Hour, mr.TTL(SeenKey))

	mr.FastForward(30 * time.Minute)
	require.NoError(t, set.MarkSeen(ctx, "2"))
	assert.Equal(t, time.Hour, mr.TTL(SeenKey))

	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists(SeenKey))
}

func TestSeenSet_DefaultTTL(t *testing.T) {
	set, mr := setupSeenSet(t, 0)

	require.NoError(t, set.MarkSeen(context.Background(), "1"))
	assert.Equal(t, DefaultSeenTTL, mr.TTL(SeenKey))
}

func TestSeenSet_ClearReturnsPreviousCount(t *testing.T) {
	set, mr := setupSeenSet(t, time.Hour)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, set.MarkSeen(ctx, id))
	}

	count, err := set.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	cleared, err := set.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cleared)
	assert.False(t, mr.Exists(SeenKey))

	isNew, err := set.IsNew(ctx, "1")
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestSeenSet_ClearEmpty(t *testing.T) {
	set, _ := setupSeenSet(t, time.Hour)

	cleared, err := set.Clear(context.Background())
	require.NoError(t, err)
	assert.Zero(t, cleared)
}

func TestSeenSet_ErrorsWhenRedisDown(t *testing.T) {
	set, mr := setupSeenSet(t, time.Hour)
	mr.Close()

	_, err := set.IsNew(context.Background(), "1")
	assert.Error(t, err)

	assert.Error(t, set.MarkSeen(context.Background(), "1"))
}

func TestNewSeenSet(t *testing.T) {
	mr := miniredis.RunT(t)

	set, err := NewSeenSet(context.Background(), "redis://"+mr.Addr(), time.Hour)
	require.NoError(t, err)
	defer set.Close()

	assert.NoError(t, set.Ping(context.Background()))
}

func TestNewSeenSet_InvalidURL(t *testing.T) {
	_, err := NewSeenSet(context.Background(), "not-a-url", time.Hour)
	assert.Error(t, err)
}
