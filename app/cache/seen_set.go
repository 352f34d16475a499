package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SeenKey holds the ids of every release already published.
	SeenKey = "fitgirl-rss-reader:seen-guids"

	DefaultSeenTTL = 90 * 24 * time.Hour
)

// SeenSet is the dedup gate backed by a Redis set with a rolling TTL.
type SeenSet struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewSeenSet connects to Redis using a redis:// URL and verifies the
// connection before returning.
func NewSeenSet(ctx context.Context, redisURL string, ttl time.Duration) (*SeenSet, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", opts.Addr)

	return NewSeenSetWithClient(client, ttl), nil
}

// NewSeenSetWithClient wraps an existing client.
func NewSeenSetWithClient(client *redis.Client, ttl time.Duration) *SeenSet {
	if ttl <= 0 {
		ttl = DefaultSeenTTL
	}
	return &SeenSet{
		client: client,
		key:    SeenKey,
		ttl:    ttl,
	}
}

// IsNew reports whether id has not been marked seen yet.
func (s *SeenSet) IsNew(ctx context.Context, id string) (bool, error) {
	member, err := s.client.SIsMember(ctx, s.key, id).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check seen id %s: %w", id, err)
	}
	return !member, nil
}

// MarkSeen adds id to the set and refreshes the TTL of the whole set.
func (s *SeenSet) MarkSeen(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, s.key, id)
		pipe.Expire(ctx, s.key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to mark id %s as seen: %w", id, err)
	}
	return nil
}

// Clear deletes the set and returns how many ids it held.
func (s *SeenSet) Clear(ctx context.Context) (int64, error) {
	var card *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		card = pipe.SCard(ctx, s.key)
		pipe.Del(ctx, s.key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear seen set: %w", err)
	}
	return card.Val(), nil
}

// Count returns the number of ids currently in the set.
func (s *SeenSet) Count(ctx context.Context) (int64, error) {
	count, err := s.client.SCard(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count seen set: %w", err)
	}
	return count, nil
}

// Ping checks the Redis connection.
func (s *SeenSet) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SeenSet) Close() error {
	return s.client.Close()
}
