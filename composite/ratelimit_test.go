package composite

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"composite-gateway/composite/infra"
)

func TestRateLimitMiddleware_AllowsThenRejectsSameKey(t *testing.T) {
	store := infra.NewClientLimiters(0.02, 1)

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	h := RateLimitMiddleware(RateLimitOptions{
		Store:               store,
		RetryAfter:          time.Second,
		AddRateLimitHeaders: true,
	})(next)

	// 1) primeira passa
	r1 := httptest.NewRequest(http.MethodGet, "http://example/product-composite/1", nil)
	r1.RemoteAddr = "10.0.0.1:1234"
	w1 := httptest.NewRecorder()
	h.ServeHTTP(w1, r1)
	if w1.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w1.Code)
	}
	if w1.Header().Get("X-RateLimit-Key") != "10.0.0.1" || w1.Header().Get("X-RateLimit-Burst") != "1" {
		t.Fatalf("expected rate limit headers, got %v", w1.Header())
	}

	// 2) segunda bloqueia (burst=1 e rps bem baixo)
	r2 := httptest.NewRequest(http.MethodGet, "http://example/product-composite/1", nil)
	r2.RemoteAddr = "10.0.0.1:1234"
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, r2)
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w2.Code)
	}
	if w2.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After=1, got %q", w2.Header().Get("Retry-After"))
	}
	if !strings.Contains(w2.Body.String(), `"status":429`) {
		t.Fatalf("expected error body, got %s", w2.Body.String())
	}

	if calls != 1 {
		t.Fatalf("expected next handler to be called once, got %d", calls)
	}
}

func TestRateLimitMiddleware_KeyByHeader(t *testing.T) {
	h := RateLimitMiddleware(RateLimitOptions{
		Store:     infra.NewClientLimiters(0.02, 1),
		KeyHeader: "X-Api-Key",
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// chaves diferentes => cada uma tem seu próprio limiter
	for _, key := range []string{"k1", "k2"} {
		r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
		r.Header.Set("X-Api-Key", key)
		r.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for key %s, got %d", key, w.Code)
		}
	}
}

func TestRateLimitMiddleware_RetryAfterUsesSeconds(t *testing.T) {
	h := RateLimitMiddleware(RateLimitOptions{
		Store:      infra.NewClientLimiters(0.02, 1),
		RetryAfter: 2500 * time.Millisecond,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		last = httptest.NewRecorder()
		h.ServeHTTP(last, r)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", last.Code)
	}
	if got := last.Header().Get("Retry-After"); got != "2" {
		// int(2.5s.Seconds()) == 2
		t.Fatalf("expected Retry-After=2, got %q", got)
	}
}

func TestRateLimitMiddleware_NoStoreIsPassThrough(t *testing.T) {
	calls := 0
	h := RateLimitMiddleware(RateLimitOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	for i := 0; i < 5; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://example/", nil))
	}
	if calls != 5 {
		t.Fatalf("expected all requests to pass, got %d", calls)
	}
}
