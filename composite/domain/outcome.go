package domain

import (
	"errors"
	"fmt"
)

// ErrorKind é a taxonomia de falhas vista pelo agregador.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindInvalidArgument
	KindNotFound
	KindTimeout
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindTimeout:
		return "timeout"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unexpected"
	}
}

// Retryable indica se a política de resiliência pode tentar de novo.
func (k ErrorKind) Retryable() bool {
	return k == KindTimeout || k == KindUnavailable
}

// Failure é o erro tipado que atravessa as camadas.
//
// Downstream fica vazio quando a falha foi detectada localmente (ex.: validação).
type Failure struct {
	Kind       ErrorKind
	Message    string
	Downstream string
	Err        error
}

func (f *Failure) Error() string {
	if f.Downstream != "" {
		return fmt.Sprintf("%s: %s: %s", f.Downstream, f.Kind, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

func NewFailure(kind ErrorKind, msg string) *Failure {
	return &Failure{Kind: kind, Message: msg}
}

// AsFailure converte qualquer erro em *Failure. Erros não classificados viram KindUnexpected.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: KindUnexpected, Message: err.Error(), Err: err}
}

// KindOf devolve o ErrorKind de err (KindUnexpected se não for *Failure).
func KindOf(err error) ErrorKind {
	return AsFailure(err).Kind
}

// OutcomeStatus distingue as três variantes de Outcome.
type OutcomeStatus int

const (
	StatusSuccess OutcomeStatus = iota
	StatusEmpty
	StatusFailure
)

// Outcome é o resultado de uma chamada a um serviço folha: Success(T), Empty ou Failure.
//
// Clientes nunca devolvem erro "solto": o agregador recebe sempre uma destas variantes,
// então o merge é total.
type Outcome[T any] struct {
	Status  OutcomeStatus
	Value   T
	Failure *Failure
}

func Success[T any](v T) Outcome[T] {
	return Outcome[T]{Status: StatusSuccess, Value: v}
}

func Empty[T any]() Outcome[T] {
	return Outcome[T]{Status: StatusEmpty}
}

// Fail monta um Outcome de falha. f nil vira KindUnexpected.
func Fail[T any](f *Failure) Outcome[T] {
	if f == nil {
		f = NewFailure(KindUnexpected, "unknown failure")
	}
	return Outcome[T]{Status: StatusFailure, Failure: f}
}

func (o Outcome[T]) IsFailure() bool { return o.Status == StatusFailure }
