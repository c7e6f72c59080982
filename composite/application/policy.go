package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"

	"composite-gateway/composite/domain"
)

// ErrCircuitOpen marca as falhas produzidas em curto-circuito (sem tocar a rede).
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ErrBulkheadFull marca chamadas recusadas porque o downstream já está com todas as vagas ocupadas.
var ErrBulkheadFull = errors.New("too many concurrent calls")

// Policy é o wrapper de resiliência de UM downstream: bulkhead, circuit breaker,
// timeout por tentativa e retry com backoff exponencial.
//
// Cada cliente tipado tem exatamente uma Policy; o estado compartilhado entre
// requests fica restrito ao Breaker e ao pool do bulkhead.
type Policy struct {
	name     string
	settings domain.ResiliencePolicy
	breaker  *Breaker
	bulkhead ConcurrencyService
	stats    domain.StatsStore
	log      logrus.FieldLogger
	now      func() time.Time
}

type PolicyOption func(*Policy)

func WithStats(s domain.StatsStore) PolicyOption {
	return func(p *Policy) { p.stats = s }
}

func WithLogger(l logrus.FieldLogger) PolicyOption {
	return func(p *Policy) { p.log = l }
}

// WithBulkhead limita as chamadas simultâneas ao downstream.
func WithBulkhead(pool domain.SlotPool, acquireTimeout time.Duration) PolicyOption {
	return func(p *Policy) { p.bulkhead = ConcurrencyService{Pool: pool, AcquireTimeout: acquireTimeout} }
}

// WithBreaker troca o breaker criado a partir de settings.Breaker (testes).
func WithBreaker(b *Breaker) PolicyOption {
	return func(p *Policy) { p.breaker = b }
}

func NewPolicy(name string, settings domain.ResiliencePolicy, opts ...PolicyOption) *Policy {
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = 1
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 2 * time.Second
	}
	if settings.BackoffBase <= 0 {
		settings.BackoffBase = 100 * time.Millisecond
	}
	p := &Policy{
		name:     name,
		settings: settings,
		log:      logrus.StandardLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.breaker == nil {
		p.breaker = NewBreaker(name, settings.Breaker)
	}
	p.log = p.log.WithField("downstream", name)
	return p
}

func (p *Policy) Name() string { return p.name }

func (p *Policy) Breaker() *Breaker { return p.breaker }

func (p *Policy) Settings() domain.ResiliencePolicy { return p.settings }

func (p *Policy) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.settings.BackoffBase
	b.RandomizationFactor = domain.BackoffJitter
	b.Multiplier = 2
	if p.settings.BackoffMax > 0 {
		b.MaxInterval = p.settings.BackoffMax
	}
	return b
}

// Execute roda call sob a política de p. O erro devolvido é sempre *domain.Failure.
//
// Falhas não-retentáveis (NotFound, InvalidArgument, demais 4xx) voltam na hora e não
// contam para o breaker. Unexpected conta como falha para o breaker mas não é retentada.
// Tentativas interrompidas porque ctx acabou também não contam.
func Execute[T any](ctx context.Context, p *Policy, op string, call func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	start := p.now()
	ev := domain.CallEvent{Downstream: p.name, Operation: op}

	release, ok := p.bulkhead.Acquire(ctx)
	if !ok {
		ev.Result = domain.ResultRejected
		p.record(ctx, ev, start)
		return zero, &domain.Failure{Kind: domain.KindUnavailable, Message: ErrBulkheadFull.Error(), Downstream: p.name, Err: ErrBulkheadFull}
	}
	defer release()

	var last *domain.Failure
	shortCircuit := false

	operation := func() (T, error) {
		permit, allowed := p.breaker.Allow()
		if !allowed {
			shortCircuit = true
			last = &domain.Failure{Kind: domain.KindUnavailable, Message: ErrCircuitOpen.Error(), Downstream: p.name, Err: ErrCircuitOpen}
			return zero, backoff.Permanent(last)
		}
		ev.Attempts++

		attemptCtx, cancel := context.WithTimeout(ctx, p.settings.Timeout)
		v, err := call(attemptCtx)
		cancel()
		if err == nil {
			p.breaker.Record(permit, true)
			return v, nil
		}

		f := Classify(p.name, err)
		last = f
		switch {
		case ctx.Err() != nil:
			// quem chamou desistiu (cancelamento ou prazo da agregação): não conta para o breaker
			p.breaker.Abandon(permit)
			return zero, backoff.Permanent(f)
		case f.Kind == domain.KindNotFound, f.Kind == domain.KindInvalidArgument, IsCallerError(err):
			p.breaker.Release(permit)
			return zero, backoff.Permanent(f)
		case !f.Kind.Retryable():
			p.breaker.Record(permit, false)
			return zero, backoff.Permanent(f)
		}
		p.breaker.Record(permit, false)
		return zero, f
	}

	v, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(p.newBackOff()),
		backoff.WithMaxTries(uint(p.settings.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			p.log.WithFields(logrus.Fields{
				"op":         op,
				"attempt":    ev.Attempts,
				"next_retry": next.String(),
				"request_id": domain.RequestID(ctx),
			}).Warnf("call failed, will retry: %v", err)
		}),
	)
	if err == nil {
		ev.Result = domain.ResultSuccess
		p.record(ctx, ev, start)
		return v, nil
	}

	f := last
	switch {
	case f != nil && !f.Kind.Retryable():
	case ctx.Err() != nil:
		f = &domain.Failure{
			Kind:       domain.KindTimeout,
			Message:    fmt.Sprintf("deadline exceeded after %d attempt(s)", ev.Attempts),
			Downstream: p.name,
			Err:        ctx.Err(),
		}
	case f == nil:
		f = Classify(p.name, err)
	}

	switch {
	case shortCircuit:
		ev.Result = domain.ResultShortCircuit
	case errors.Is(ctx.Err(), context.Canceled):
		ev.Result = domain.ResultCancelled
	default:
		ev.Result = f.Kind.String()
	}
	p.record(ctx, ev, start)
	return zero, f
}

func (p *Policy) record(ctx context.Context, ev domain.CallEvent, start time.Time) {
	ev.At = p.now()
	ev.Latency = ev.At.Sub(start)
	ev.State = p.breaker.State()

	p.log.WithFields(logrus.Fields{
		"op":         ev.Operation,
		"result":     ev.Result,
		"attempts":   ev.Attempts,
		"latency_ms": ev.Latency.Milliseconds(),
		"circuit":    ev.State.String(),
		"request_id": domain.RequestID(ctx),
	}).Debug("downstream call finished")

	if p.stats == nil {
		return
	}
	// stats não podem depender do prazo da agregação já estourado
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := p.stats.Record(recCtx, ev); err != nil {
		p.log.WithError(err).Debug("stats record failed")
	}
}
