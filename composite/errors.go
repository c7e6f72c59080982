package composite

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"

	"composite-gateway/api"
	"composite-gateway/composite/domain"
)

// StatusFor traduz uma falha para o status HTTP do gateway.
//
// InvalidArgument detectado localmente é 400; vindo de um serviço folha é 422.
// Timeout, Unavailable e Unexpected viram 503.
func StatusFor(f *domain.Failure) int {
	switch f.Kind {
	case domain.KindInvalidArgument:
		if f.Downstream != "" {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}

// publicMessage evita vazar detalhes internos em 503.
func publicMessage(f *domain.Failure, status int) string {
	if status != http.StatusServiceUnavailable {
		return f.Message
	}
	if f.Downstream != "" {
		return f.Downstream + " service " + f.Kind.String()
	}
	return http.StatusText(status)
}

func writeFailure(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	f := domain.AsFailure(err)
	status := StatusFor(f)

	entry := log.WithFields(logrus.Fields{
		"kind":       f.Kind.String(),
		"downstream": f.Downstream,
		"status":     status,
		"request_id": domain.RequestID(r.Context()),
	})
	if status >= 500 {
		entry.WithError(err).Warn("request failed")
	} else {
		entry.Debug(f.Message)
	}

	writeError(w, r, status, publicMessage(f, status))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, api.HTTPErrorInfo{
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
		Status:    status,
		Error:     http.StatusText(status),
		Message:   msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
