package domain

import (
	"context"
	"time"
)

// Resultados registrados por chamada protegida.
const (
	ResultSuccess      = "success"
	ResultShortCircuit = "short_circuit"
	ResultRejected     = "rejected"
	ResultCancelled    = "cancelled"
)

// CallEvent descreve o desfecho de uma chamada a um downstream (já com retries).
//
// Result é ResultSuccess, ResultShortCircuit (circuito aberto), ResultRejected
// (bulkhead cheio), ResultCancelled (quem chamou desistiu) ou o ErrorKind.String() da falha.
type CallEvent struct {
	Downstream string
	Operation  string
	Result     string
	Attempts   int
	Latency    time.Duration
	State      CircuitState

	At time.Time
}

// StatsStore é a estratégia de persistência das estatísticas por downstream.
//
// Implementações podem armazenar em Redis, memória, etc.
// Quem chama trata erro como best-effort (não derruba request).
type StatsStore interface {
	Record(ctx context.Context, ev CallEvent) error
}
