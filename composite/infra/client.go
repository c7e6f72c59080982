package infra

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"composite-gateway/api"
	"composite-gateway/composite/application"
	"composite-gateway/composite/domain"
)

// maxBodyBytes limita o corpo lido de um serviço folha.
const maxBodyBytes = 4 << 20

// RequestIDHeader é propagado do request de entrada para os serviços folha.
const RequestIDHeader = "X-Request-Id"

// StatusError é a resposta não-2xx de um serviço folha.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("unexpected status %d", e.Code)
}

func (e *StatusError) HTTPStatusCode() int { return e.Code }

// NewHTTPClient monta o http.Client compartilhado pelos clientes folha.
//
// O timeout de cada tentativa vem do ctx (Policy); o do http.Client é só um teto.
func NewHTTPClient(maxIdlePerHost int) *http.Client {
	if maxIdlePerHost <= 0 {
		maxIdlePerHost = 32
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConnsPerHost = maxIdlePerHost
	return &http.Client{Transport: tr, Timeout: time.Minute}
}

// leaf é a base comum dos três clientes: endereço, transporte e política de resiliência.
type leaf struct {
	baseURL string
	http    *http.Client
	policy  *application.Policy
}

func newLeaf(name, baseURL string, client *http.Client, policy *application.Policy) leaf {
	if client == nil {
		client = NewHTTPClient(0)
	}
	if policy == nil {
		policy = application.NewPolicy(name, domain.ResiliencePolicy{})
	}
	return leaf{baseURL: strings.TrimRight(baseURL, "/"), http: client, policy: policy}
}

// call executa uma requisição JSON sob a Policy do cliente.
func call[T any](ctx context.Context, l leaf, op, method, path string, body any) (T, error) {
	var payload []byte
	if body != nil {
		b, err := sonic.Marshal(body)
		if err != nil {
			var zero T
			return zero, domain.NewFailure(domain.KindInvalidArgument, "encode request: "+err.Error())
		}
		payload = b
	}
	return application.Execute(ctx, l.policy, op, func(ctx context.Context) (T, error) {
		return roundTrip[T](ctx, l, method, path, payload)
	})
}

func roundTrip[T any](ctx context.Context, l leaf, method, path string, payload []byte) (T, error) {
	var out T

	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, l.baseURL+path, rdr)
	if err != nil {
		return out, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := domain.RequestID(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return out, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, statusError(resp.StatusCode, raw)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return out, nil
}

// statusError usa a mensagem do corpo de erro do serviço folha quando existir.
func statusError(code int, raw []byte) *StatusError {
	var info api.HTTPErrorInfo
	if len(raw) > 0 && sonic.Unmarshal(raw, &info) == nil && info.Message != "" {
		return &StatusError{Code: code, Message: info.Message}
	}
	return &StatusError{Code: code, Message: http.StatusText(code)}
}

// lookupOutcome: 404 vira Empty.
func lookupOutcome[T any](v T, err error) domain.Outcome[T] {
	if err == nil {
		return domain.Success(v)
	}
	f := domain.AsFailure(err)
	if f.Kind == domain.KindNotFound {
		return domain.Empty[T]()
	}
	return domain.Fail[T](f)
}

func writeOutcome[T any](v T, err error) domain.Outcome[T] {
	if err == nil {
		return domain.Success(v)
	}
	return domain.Fail[T](domain.AsFailure(err))
}
