package cache

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter decides whether a client may perform another request
type RateLimiter interface {
	// Allow consumes one request for key. When it returns false, retryAfter
	// says how long the client should wait.
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

type redisRateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRedisRateLimiter creates a fixed-window limiter shared by every server
// instance that talks to the same Redis.
func NewRedisRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration) RateLimiter {
	return &redisRateLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *redisRateLimiter) windowKey(key string, start int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", l.prefix, key, start)
}

func (l *redisRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := l.now()
	start := now.Truncate(l.window)
	k := l.windowKey(key, start.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}

	if incr.Val() > int64(l.limit) {
		return false, start.Add(l.window).Sub(now), nil
	}
	return true, 0, nil
}

// tokenBucket refills continuously at rate tokens per second
type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

type memoryRateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*tokenBucket
	capacity float64
	rate     float64
	idle     time.Duration
	lastGC   time.Time
	now      func() time.Time
}

// NewMemoryRateLimiter creates a per-process token bucket limiter allowing
// limit requests per window with bursts up to limit.
func NewMemoryRateLimiter(limit int, window time.Duration) RateLimiter {
	return newMemoryRateLimiter(limit, window, time.Now)
}

func newMemoryRateLimiter(limit int, window time.Duration, now func() time.Time) *memoryRateLimiter {
	return &memoryRateLimiter{
		buckets:  make(map[string]*tokenBucket),
		capacity: float64(limit),
		rate:     float64(limit) / window.Seconds(),
		idle:     2 * window,
		lastGC:   now(),
		now:      now,
	}
}

func (l *memoryRateLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: l.capacity, lastSeen: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.lastSeen).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.rate)
	}
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0, nil
	}
	wait := time.Duration((1 - b.tokens) / l.rate * float64(time.Second))
	return false, wait, nil
}

// prune drops buckets idle long enough to be full again
func (l *memoryRateLimiter) prune(now time.Time) {
	if now.Sub(l.lastGC) < l.idle {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idle {
			delete(l.buckets, key)
		}
	}
	l.lastGC = now
}
