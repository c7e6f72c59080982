package domain

// Contratos dos guardas de entrada (rate limit por cliente) e do bulkhead por downstream.

import (
	"context"
	"time"
)

// ClientKey identifica quem chama o gateway (IP, API key...).
type ClientKey string

// Limiter decide se uma ação é permitida agora.
//
// A camada de infra usa token-bucket (golang.org/x/time/rate).
type Limiter interface {
	Allow() bool
}

// LimiterStore obtém um limiter por chave de cliente.
type LimiterStore interface {
	Get(ClientKey) Limiter
}

type Decision struct {
	Allowed bool
	// RetryAfter vai no header Retry-After quando bloquear. 0 = sem recomendação.
	RetryAfter time.Duration
}

// SlotPool representa um recurso com capacidade finita: chamadas simultâneas a um
// downstream (bulkhead) ou requests simultâneos no gateway.
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar.
// Ao adquirir, retorna uma função de release que deve ser chamada exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}
