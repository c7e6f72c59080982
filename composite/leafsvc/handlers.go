package leafsvc

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"composite-gateway/api"
)

// Options configura um serviço folha.
type Options struct {
	// Address é devolvido em serviceAddress de cada entidade.
	Address string
	Faults  *Faults
}

func newRouter(opts Options) chi.Router {
	r := chi.NewRouter()
	if opts.Faults != nil {
		r.Use(opts.Faults.middleware)
	}
	return r
}

func NewProductService(s *Store, opts Options) http.Handler {
	r := newRouter(opts)
	r.Get(api.ProductPath+"/{productId}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathProductID(w, r)
		if !ok {
			return
		}
		p, found := s.Product(id)
		if !found {
			writeError(w, r, http.StatusNotFound, "No product found for productId: "+strconv.Itoa(id))
			return
		}
		p.ServiceAddress = opts.Address
		writeJSON(w, http.StatusOK, p)
	})
	r.Post(api.ProductPath, func(w http.ResponseWriter, r *http.Request) {
		var p api.Product
		if !decode(w, r, &p) {
			return
		}
		if err := s.AddProduct(p); err != nil {
			writeStoreError(w, r, err)
			return
		}
		p.ServiceAddress = opts.Address
		writeJSON(w, http.StatusOK, p)
	})
	r.Delete(api.ProductPath+"/{productId}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathProductID(w, r)
		if !ok {
			return
		}
		s.DeleteProduct(id)
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func NewRecommendationService(s *Store, opts Options) http.Handler {
	r := newRouter(opts)
	r.Get(api.RecommendationPath, func(w http.ResponseWriter, r *http.Request) {
		id, ok := queryProductID(w, r)
		if !ok {
			return
		}
		recs := s.Recommendations(id)
		for i := range recs {
			recs[i].ServiceAddress = opts.Address
		}
		writeJSON(w, http.StatusOK, recs)
	})
	r.Post(api.RecommendationPath, func(w http.ResponseWriter, r *http.Request) {
		var rec api.Recommendation
		if !decode(w, r, &rec) {
			return
		}
		if err := s.AddRecommendation(rec); err != nil {
			writeStoreError(w, r, err)
			return
		}
		rec.ServiceAddress = opts.Address
		writeJSON(w, http.StatusOK, rec)
	})
	r.Delete(api.RecommendationPath, func(w http.ResponseWriter, r *http.Request) {
		id, ok := queryProductID(w, r)
		if !ok {
			return
		}
		s.DeleteRecommendations(id)
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func NewReviewService(s *Store, opts Options) http.Handler {
	r := newRouter(opts)
	r.Get(api.ReviewPath, func(w http.ResponseWriter, r *http.Request) {
		id, ok := queryProductID(w, r)
		if !ok {
			return
		}
		reviews := s.Reviews(id)
		for i := range reviews {
			reviews[i].ServiceAddress = opts.Address
		}
		writeJSON(w, http.StatusOK, reviews)
	})
	r.Post(api.ReviewPath, func(w http.ResponseWriter, r *http.Request) {
		var rev api.Review
		if !decode(w, r, &rev) {
			return
		}
		if err := s.AddReview(rev); err != nil {
			writeStoreError(w, r, err)
			return
		}
		rev.ServiceAddress = opts.Address
		writeJSON(w, http.StatusOK, rev)
	})
	r.Delete(api.ReviewPath, func(w http.ResponseWriter, r *http.Request) {
		id, ok := queryProductID(w, r)
		if !ok {
			return
		}
		s.DeleteReviews(id)
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func pathProductID(w http.ResponseWriter, r *http.Request) (int, bool) {
	return parseProductID(w, r, chi.URLParam(r, "productId"))
}

func queryProductID(w http.ResponseWriter, r *http.Request) (int, bool) {
	return parseProductID(w, r, r.URL.Query().Get("productId"))
}

// parseProductID: não-inteiro é 400, inteiro < 1 é 422.
func parseProductID(w http.ResponseWriter, r *http.Request, raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Type mismatch.")
		return 0, false
	}
	if id < 1 {
		writeError(w, r, http.StatusUnprocessableEntity, "Invalid productId: "+strconv.Itoa(id))
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := sonic.ConfigStd.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var dup ErrDuplicate
	if errors.As(err, &dup) {
		writeError(w, r, http.StatusUnprocessableEntity, dup.Error())
		return
	}
	writeError(w, r, http.StatusInternalServerError, err.Error())
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
