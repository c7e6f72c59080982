package domain

import "time"

// CircuitState é o estado do circuit breaker de um downstream.
type CircuitState int32

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// BreakerSettings configura a máquina de estados.
//
// O circuito abre quando ConsecutiveFailures falhas seguidas acontecem, ou quando a
// janela (últimas WindowSize chamadas, com pelo menos MinCalls registradas) tem taxa
// de falha >= FailureRateThreshold.
type BreakerSettings struct {
	WindowSize           int
	MinCalls             int
	FailureRateThreshold float64
	ConsecutiveFailures  int
	OpenCooldown         time.Duration
}

// ResiliencePolicy agrupa tudo que um downstream precisa: timeout, retry, breaker e bulkhead.
type ResiliencePolicy struct {
	Timeout     time.Duration
	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	Breaker     BreakerSettings
	// MaxConcurrent limita chamadas simultâneas ao downstream (0 = sem limite).
	MaxConcurrent int
}

// BackoffJitter é o fator de aleatoriedade aplicado sobre cada espera de backoff.
const BackoffJitter = 0.2

// MaxDuration é o pior caso de uma chamada protegida: todas as tentativas estourando
// o timeout, mais as esperas de backoff (com jitter máximo).
func (p ResiliencePolicy) MaxDuration() time.Duration {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	total := time.Duration(attempts) * p.Timeout
	wait := p.BackoffBase
	for i := 1; i < attempts; i++ {
		if p.BackoffMax > 0 && wait > p.BackoffMax {
			wait = p.BackoffMax
		}
		total += wait + time.Duration(float64(wait)*BackoffJitter)
		wait *= 2
	}
	return total
}
