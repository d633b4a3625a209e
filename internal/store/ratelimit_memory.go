package store

import (
	"context"
	"sync"
	"time"
)

// sweepEvery is how many Record calls pass between sweeps of idle keys.
const sweepEvery = 1024

// RateLimitMemoryStore is an in-process ratelimit.Store. Counters are lost on
// restart and are not shared between replicas.
type RateLimitMemoryStore struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	maxWindow time.Duration
	calls     int
	now       func() time.Time
}

func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.maxWindow = max(s.maxWindow, window)

	s.calls++
	if s.calls%sweepEvery == 0 {
		s.sweep(now)
	}

	// Timestamps are appended in order, so everything before the first
	// in-window entry has expired.
	timestamps := s.requests[key]
	cutoff := now.Add(-window)

	first := 0
	for first < len(timestamps) && !timestamps[first].After(cutoff) {
		first++
	}

	valid := append(timestamps[first:len(timestamps):len(timestamps)], now)
	s.requests[key] = valid

	return int64(len(valid)), nil
}

// sweep drops keys whose newest request is older than any window in use.
func (s *RateLimitMemoryStore) sweep(now time.Time) {
	cutoff := now.Add(-s.maxWindow)

	for key, timestamps := range s.requests {
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(cutoff) {
			delete(s.requests, key)
		}
	}
}
