package application

import (
	"sync"
	"sync/atomic"
	"time"

	"composite-gateway/composite/domain"
)

// Breaker é a máquina de estados Closed -> Open -> Half-Open de um downstream.
//
// O estado é lido sem lock (atomic). A janela deslizante é protegida por um mutex
// segurado só durante a contabilização, nunca durante uma chamada de rede.
type Breaker struct {
	name     string
	settings domain.BreakerSettings
	now      func() time.Time

	state    atomic.Int32
	openedAt atomic.Int64
	probing  atomic.Bool

	mu          sync.Mutex
	window      []bool // true = falha
	next        int
	filled      int
	failures    int
	consecutive int
}

// Permit é o "ticket" devolvido por Allow; deve voltar em Record, Release ou Abandon.
type Permit struct {
	probe bool
}

type BreakerOption func(*Breaker)

// WithClock troca o relógio (testes).
func WithClock(now func() time.Time) BreakerOption {
	return func(b *Breaker) { b.now = now }
}

func NewBreaker(name string, settings domain.BreakerSettings, opts ...BreakerOption) *Breaker {
	if settings.WindowSize <= 0 {
		settings.WindowSize = 10
	}
	if settings.MinCalls <= 0 || settings.MinCalls > settings.WindowSize {
		settings.MinCalls = settings.WindowSize
	}
	if settings.FailureRateThreshold <= 0 || settings.FailureRateThreshold > 1 {
		settings.FailureRateThreshold = 0.5
	}
	if settings.OpenCooldown <= 0 {
		settings.OpenCooldown = 10 * time.Second
	}
	b := &Breaker{
		name:     name,
		settings: settings,
		now:      time.Now,
		window:   make([]bool, settings.WindowSize),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() domain.CircuitState {
	return domain.CircuitState(b.state.Load())
}

// Allow decide se a chamada pode ir para a rede.
//
// Em Open, depois do cooldown, o primeiro chamador vira a sonda do Half-Open; os
// demais continuam em curto-circuito até a sonda terminar.
func (b *Breaker) Allow() (Permit, bool) {
	switch b.State() {
	case domain.CircuitClosed:
		return Permit{}, true
	case domain.CircuitOpen:
		opened := time.Unix(0, b.openedAt.Load())
		if b.now().Sub(opened) < b.settings.OpenCooldown {
			return Permit{}, false
		}
		b.state.CompareAndSwap(int32(domain.CircuitOpen), int32(domain.CircuitHalfOpen))
	}

	if !b.probing.CompareAndSwap(false, true) {
		return Permit{}, false
	}
	// a sonda anterior pode ter reaberto o circuito entre o Load e o CAS acima
	if b.State() != domain.CircuitHalfOpen {
		b.probing.Store(false)
		return Permit{}, false
	}
	return Permit{probe: true}, true
}

// Record contabiliza o resultado de uma chamada que chegou ao downstream.
func (b *Breaker) Record(p Permit, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p.probe {
		if success {
			b.resetLocked()
			b.state.Store(int32(domain.CircuitClosed))
		} else {
			b.tripLocked()
		}
		b.probing.Store(false)
		return
	}

	// resultado atrasado de uma chamada liberada antes do circuito abrir
	if b.State() != domain.CircuitClosed {
		return
	}

	if b.filled == len(b.window) && b.window[b.next] {
		b.failures--
	}
	b.window[b.next] = !success
	b.next = (b.next + 1) % len(b.window)
	if b.filled < len(b.window) {
		b.filled++
	}

	if success {
		b.consecutive = 0
		return
	}
	b.failures++
	b.consecutive++

	if b.shouldTripLocked() {
		b.tripLocked()
	}
}

// Release devolve um Permit sem contabilizar (falhas não-retentáveis, ex.: 404).
// Uma sonda que recebeu resposta prova que o downstream está de pé: fecha o circuito.
func (b *Breaker) Release(p Permit) {
	if !p.probe {
		return
	}
	b.Record(p, true)
}

// Abandon devolve um Permit cuja chamada foi abandonada por quem chamou (cancelamento)
// e não diz nada sobre o downstream. Uma sonda abandonada libera a vaga do Half-Open
// sem fechar nem reabrir o circuito.
func (b *Breaker) Abandon(p Permit) {
	if p.probe {
		b.probing.Store(false)
	}
}

func (b *Breaker) shouldTripLocked() bool {
	if b.settings.ConsecutiveFailures > 0 && b.consecutive >= b.settings.ConsecutiveFailures {
		return true
	}
	if b.filled < b.settings.MinCalls {
		return false
	}
	return float64(b.failures)/float64(b.filled) >= b.settings.FailureRateThreshold
}

func (b *Breaker) tripLocked() {
	b.resetLocked()
	b.openedAt.Store(b.now().UnixNano())
	b.state.Store(int32(domain.CircuitOpen))
}

func (b *Breaker) resetLocked() {
	for i := range b.window {
		b.window[i] = false
	}
	b.next, b.filled, b.failures, b.consecutive = 0, 0, 0, 0
}
