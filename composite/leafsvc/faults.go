package leafsvc

import (
	"net/http"
	"sync/atomic"
	"time"
)

// Faults injeta atraso e/ou status de erro em todas as respostas de um serviço.
// Zero value = sem falhas. Seguro para uso concorrente.
type Faults struct {
	delay  atomic.Int64
	status atomic.Int32
	hits   atomic.Int64
}

func (f *Faults) SetDelay(d time.Duration) { f.delay.Store(int64(d)) }

// SetStatus força o status de todas as respostas (0 desliga).
func (f *Faults) SetStatus(code int) { f.status.Store(int32(code)) }

// Hits conta os requests recebidos (inclusive os que falharam).
func (f *Faults) Hits() int64 { return f.hits.Load() }

func (f *Faults) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		if d := time.Duration(f.delay.Load()); d > 0 {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
		}
		if code := int(f.status.Load()); code != 0 {
			writeError(w, r, code, http.StatusText(code))
			return
		}
		next.ServeHTTP(w, r)
	})
}
