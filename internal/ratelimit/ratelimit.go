// Package ratelimit implements sliding-window request throttling.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Store counts requests per key over a sliding window.
type Store interface {
	// Allow records one request against key. When the key already made
	// limit requests within window the request is rejected and retryAfter
	// tells when the oldest one leaves the window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error)
}

// RedisStore keeps one sorted set per key, scored by request time in
// nanoseconds, so every API instance shares the same counters.
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
	now    func() time.Time

	mu  sync.Mutex
	seq uint64
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, prefix: "ratelimit:", now: time.Now}, nil
}

// Close releases the redis connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) member(now time.Time) string {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()
	return strconv.FormatInt(now.UnixNano(), 10) + "-" + strconv.FormatUint(seq, 10)
}

// Allow implements Store.
func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	now := s.now()
	redisKey := s.prefix + key
	member := s.member(now)
	floor := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	var count *goredis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", "("+floor)
		count = pipe.ZCard(ctx, redisKey)
		pipe.ZAdd(ctx, redisKey, goredis.Z{Score: float64(now.UnixNano()), Member: member})
		pipe.PExpire(ctx, redisKey, window)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if int(count.Val()) < limit {
		return true, 0, nil
	}

	// rejected requests do not occupy the window
	if err := s.rdb.ZRem(ctx, redisKey, member).Err(); err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}
	oldest, err := s.rdb.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}
	retryAfter := window
	if len(oldest) > 0 {
		retryAfter = time.Unix(0, int64(oldest[0].Score)).Add(window).Sub(now)
	}
	return false, retryAfter, nil
}

// MemoryStore is a process-local Store used when no redis is configured
// and in tests.
type MemoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time

	// longest window seen; keys idle for longer are swept
	maxWindow time.Duration
	lastSweep time.Time
}

// NewMemoryStore creates an empty MemoryStore. A nil now uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{hits: make(map[string][]time.Time), now: now}
}

// Allow implements Store.
func (s *MemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if window > s.maxWindow {
		s.maxWindow = window
	}
	s.sweep(now)

	floor := now.Add(-window)
	hits := s.hits[key]
	i := 0
	for i < len(hits) && hits[i].Before(floor) {
		i++
	}
	hits = hits[i:]

	if len(hits) >= limit {
		if len(hits) == 0 {
			delete(s.hits, key)
			return false, window, nil
		}
		s.hits[key] = hits
		return false, hits[0].Add(window).Sub(now), nil
	}
	s.hits[key] = append(hits, now)
	return true, 0, nil
}

// sweep drops keys whose newest hit is older than every window in use. It
// runs at most once per maxWindow.
func (s *MemoryStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < s.maxWindow {
		return
	}
	s.lastSweep = now
	floor := now.Add(-s.maxWindow)
	for key, hits := range s.hits {
		if len(hits) == 0 || hits[len(hits)-1].Before(floor) {
			delete(s.hits, key)
		}
	}
}

// Len returns the number of keys being tracked.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hits)
}
