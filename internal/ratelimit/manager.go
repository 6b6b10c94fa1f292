package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Manager provides Redis-backed request throttling keyed by caller. The
// fixed one-minute window means a burst at a window boundary can briefly
// double the allowance; acceptable for abuse protection on this surface.
type Manager struct {
	redis             *redis.Client
	requestsPerMinute int
}

// NewManager connects to Redis and verifies the connection before use
func NewManager(redisURL string, requestsPerMinute int) (*Manager, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Manager{redis: client, requestsPerMinute: requestsPerMinute}, nil
}

func (m *Manager) Close() error { return m.redis.Close() }

// SetRequestsPerMinute allows tests to override the window allowance
func (m *Manager) SetRequestsPerMinute(rpm int) {
	m.requestsPerMinute = rpm
}

// Allow counts one request for the client and reports whether it fits the
// current minute window. resetSec is how long until the window rolls over,
// meaningful only when the request was denied.
func (m *Manager) Allow(ctx context.Context, clientID string) (allowed bool, resetSec int, err error) {
	now := time.Now().UTC()
	window := now.Unix() / 60
	key := fmt.Sprintf("rl:%s:%d", clientID, window)

	pipe := m.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	if int(incr.Val()) > m.requestsPerMinute {
		secPassed := int(now.Unix() % 60)
		return false, 60 - secPassed, nil
	}
	return true, 0, nil
}
