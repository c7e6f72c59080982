package composite

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"composite-gateway/api"
)

type RouterOptions struct {
	Log         logrus.FieldLogger
	RateLimit   RateLimitOptions
	Concurrency ConcurrencyOptions
}

func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoverMiddleware(log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(opts.RateLimit))
		r.Use(ConcurrencyMiddleware(opts.Concurrency))

		r.Route(api.CompositePath, func(r chi.Router) {
			r.Post("/", h.createComposite)
			r.Get("/{productId}", h.getComposite)
			r.Delete("/{productId}", h.deleteComposite)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
