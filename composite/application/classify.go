package application

import (
	"context"
	"errors"
	"net"
	"syscall"

	"composite-gateway/composite/domain"
)

// StatusCoder é implementado pelos erros de resposta não-2xx dos clientes HTTP.
type StatusCoder interface {
	HTTPStatusCode() int
}

// KindForStatus traduz o status de um serviço folha (o inverso do handler de erros dele).
func KindForStatus(code int) domain.ErrorKind {
	switch {
	case code == 404:
		return domain.KindNotFound
	case code == 400 || code == 422:
		return domain.KindInvalidArgument
	case code == 408:
		return domain.KindTimeout
	case code == 429 || (code >= 500 && code <= 599):
		return domain.KindUnavailable
	default:
		return domain.KindUnexpected
	}
}

// IsCallerError diz se err é uma resposta 4xx que reflete o pedido e não a saúde do
// downstream. 408 e 429 ficam de fora: são sinais de sobrecarga.
func IsCallerError(err error) bool {
	var sc StatusCoder
	if !errors.As(err, &sc) {
		return false
	}
	code := sc.HTTPStatusCode()
	return code >= 400 && code < 500 && code != 408 && code != 429
}

// Classify converte o erro bruto de uma tentativa em *domain.Failure.
//
// Cancelamento conta como Timeout: é o que acontece quando o prazo da agregação
// estoura e as chamadas pendentes são canceladas.
func Classify(downstream string, err error) *domain.Failure {
	if err == nil {
		return nil
	}
	f := &domain.Failure{Kind: domain.KindUnexpected, Message: err.Error(), Downstream: downstream, Err: err}

	var typed *domain.Failure
	var sc StatusCoder
	var netErr net.Error
	switch {
	case errors.As(err, &typed):
		f.Kind = typed.Kind
		f.Message = typed.Message
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		f.Kind = domain.KindTimeout
	case errors.As(err, &sc):
		f.Kind = KindForStatus(sc.HTTPStatusCode())
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		f.Kind = domain.KindUnavailable
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			f.Kind = domain.KindTimeout
		} else {
			f.Kind = domain.KindUnavailable
		}
	}
	return f
}
