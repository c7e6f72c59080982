package composite

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"composite-gateway/api"
)

// Reader é o caso de uso de leitura (application.Aggregator).
type Reader interface {
	Aggregate(ctx context.Context, productID int) (api.ProductAggregate, error)
}

// Writer é o caso de uso de escrita (application.Writer).
type Writer interface {
	Create(ctx context.Context, body api.ProductAggregate) error
	Delete(ctx context.Context, productID int) error
}

type Handler struct {
	reader Reader
	writer Writer
	log    logrus.FieldLogger
}

func NewHandler(reader Reader, writer Writer, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{reader: reader, writer: writer, log: log}
}

func (h *Handler) getComposite(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	agg, err := h.reader.Aggregate(r.Context(), id)
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func (h *Handler) createComposite(w http.ResponseWriter, r *http.Request) {
	var body api.ProductAggregate
	if err := sonic.ConfigStd.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.writer.Create(r.Context(), body); err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) deleteComposite(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	if err := h.writer.Delete(r.Context(), id); err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// productID converte o path param; não-inteiro responde 400 sem chamar o caso de uso.
func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "productId"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Type mismatch.")
		return 0, false
	}
	return id, true
}
