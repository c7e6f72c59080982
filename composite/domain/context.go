package domain

import "context"

type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID guarda o id do request para ser propagado aos serviços folha.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}
