package infra

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"composite-gateway/composite/domain"
)

// ClientLimiters é o token-bucket (x/time/rate) por cliente do gateway, com cache
// por chave e limpeza periódica das chaves inativas.
type ClientLimiters struct {
	mu           sync.Mutex
	entries      map[domain.ClientKey]*limiterEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type LimiterOption func(*ClientLimiters)

func WithIdleTTL(d time.Duration) LimiterOption {
	return func(s *ClientLimiters) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) LimiterOption {
	return func(s *ClientLimiters) { s.cleanupEvery = d }
}

func NewClientLimiters(rps float64, burst int, opts ...LimiterOption) *ClientLimiters {
	if burst < 1 {
		burst = 1
	}
	s := &ClientLimiters{
		entries:      make(map[domain.ClientKey]*limiterEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ClientLimiters) RPS() float64 { return float64(s.rps) }
func (s *ClientLimiters) Burst() int   { return s.burst }

// Get implementa domain.LimiterStore.
func (s *ClientLimiters) Get(key domain.ClientKey) domain.Limiter {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

func (s *ClientLimiters) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *ClientLimiters) Cleanup() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor limpa chaves inativas periodicamente até ctx encerrar.
func (s *ClientLimiters) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
