// Package cache adds a Redis-backed read-through layer in front of the
// backend client. Employer and user profiles change rarely but are fetched
// on every load's resolver fan-out, so a short TTL removes most of that
// traffic without affecting feed freshness. List endpoints are never cached.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"gainfully/internal/feed"
)

// NewRedisClient connects to addr and verifies connectivity.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Backend wraps a feed.Backend, serving employer and user lookups from
// Redis when possible. Cache failures degrade to direct fetches; they are
// logged and never surface to the resolver.
type Backend struct {
	next   feed.Backend
	rdb    *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// Wrap decorates next with the cache. A nil rdb returns next unchanged, so
// callers need no special case for an unconfigured cache.
func Wrap(next feed.Backend, rdb *redis.Client, ttl time.Duration, logger *log.Logger) feed.Backend {
	if rdb == nil {
		return next
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Backend{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (b *Backend) ListActiveJobPostings(ctx context.Context) ([]feed.JobPosting, error) {
	return b.next.ListActiveJobPostings(ctx)
}

func (b *Backend) ListAcceptedConnections(ctx context.Context, userID int64) ([]feed.Connection, error) {
	return b.next.ListAcceptedConnections(ctx, userID)
}

func (b *Backend) ListExperiences(ctx context.Context, userID int64) ([]feed.Experience, error) {
	return b.next.ListExperiences(ctx, userID)
}

func (b *Backend) GetEmployer(ctx context.Context, id int64) (feed.Employer, error) {
	var employer feed.Employer
	key := fmt.Sprintf("employer:%d", id)
	if b.lookup(ctx, key, &employer) {
		return employer, nil
	}
	employer, err := b.next.GetEmployer(ctx, id)
	if err != nil {
		return feed.Employer{}, err
	}
	b.store(ctx, key, employer)
	return employer, nil
}

func (b *Backend) GetUser(ctx context.Context, id int64) (feed.User, error) {
	var user feed.User
	key := fmt.Sprintf("user:%d", id)
	if b.lookup(ctx, key, &user) {
		return user, nil
	}
	user, err := b.next.GetUser(ctx, id)
	if err != nil {
		return feed.User{}, err
	}
	b.store(ctx, key, user)
	return user, nil
}

// lookup reports whether key was present and decoded into out.
func (b *Backend) lookup(ctx context.Context, key string, out any) bool {
	raw, err := b.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			b.logger.Printf("Cache read for %s failed: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		b.logger.Printf("Cache entry %s is malformed, ignoring: %v", key, err)
		return false
	}
	return true
}

func (b *Backend) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		b.logger.Printf("Cache encode for %s failed: %v", key, err)
		return
	}
	if err := b.rdb.Set(ctx, key, raw, b.ttl).Err(); err != nil {
		b.logger.Printf("Cache write for %s failed: %v", key, err)
	}
}
