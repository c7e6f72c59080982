package application

import (
	"time"

	"composite-gateway/composite/domain"
)

// RateLimitService decide se um cliente pode chamar o gateway agora.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type RateLimitService struct {
	Store      domain.LimiterStore
	RetryAfter time.Duration
}

func (s RateLimitService) Decide(key domain.ClientKey) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	if s.RetryAfter <= 0 {
		s.RetryAfter = 1 * time.Second
	}

	lim := s.Store.Get(key)
	if lim == nil || lim.Allow() {
		return domain.Decision{Allowed: true}
	}
	return domain.Decision{Allowed: false, RetryAfter: s.RetryAfter}
}
