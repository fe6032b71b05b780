// Package ratelimit holds the storage backends for rate-limit decision stats.
package ratelimit

import (
	"context"
	"sync"

	"github.com/mrops-br/products-crud-api/internal/domain"
)

type Counters struct {
	Allowed int64
	Denied  int64
}

// MemoryStatsStore keeps decision counters in process memory, in total and per
// endpoint. Counters are never expired.
type MemoryStatsStore struct {
	mu         sync.Mutex
	total      Counters
	byEndpoint map[string]Counters
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{
		byEndpoint: make(map[string]Counters),
	}
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.byEndpoint[ev.Endpoint]
	if ev.Allowed {
		s.total.Allowed++
		c.Allowed++
	} else {
		s.total.Denied++
		c.Denied++
	}
	s.byEndpoint[ev.Endpoint] = c
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByEndpoint() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byEndpoint))
	for k, v := range s.byEndpoint {
		out[k] = v
	}
	return out
}
