package infra

import (
	"context"
	"sync"

	"composite-gateway/composite/domain"
)

// DownstreamCounters agrega os CallEvent de um downstream.
type DownstreamCounters struct {
	Calls    int64
	Attempts int64
	ByResult map[string]int64
	Circuit  domain.CircuitState
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu           sync.Mutex
	byDownstream map[string]*DownstreamCounters
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{byDownstream: make(map[string]*DownstreamCounters)}
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.CallEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byDownstream[ev.Downstream]
	if !ok {
		c = &DownstreamCounters{ByResult: make(map[string]int64)}
		s.byDownstream[ev.Downstream] = c
	}
	c.Calls++
	c.Attempts += int64(ev.Attempts)
	c.ByResult[ev.Result]++
	c.Circuit = ev.State
	return nil
}

// Snapshot devolve uma cópia dos contadores de downstream.
func (s *MemoryStatsStore) Snapshot(downstream string) DownstreamCounters {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byDownstream[downstream]
	if !ok {
		return DownstreamCounters{ByResult: map[string]int64{}}
	}
	out := *c
	out.ByResult = make(map[string]int64, len(c.ByResult))
	for k, v := range c.ByResult {
		out.ByResult[k] = v
	}
	return out
}
