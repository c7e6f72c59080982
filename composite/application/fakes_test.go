package application

import (
	"context"
	"sync"
	"time"

	"composite-gateway/api"
	"composite-gateway/composite/domain"
)

// stubClients implementa os três clientes com respostas fixas e atraso opcional.
type stubClients struct {
	product  domain.Outcome[api.Product]
	recs     domain.Outcome[[]api.Recommendation]
	reviews  domain.Outcome[[]api.Review]
	recDelay time.Duration
	revDelay time.Duration

	deleteProduct domain.Outcome[struct{}]
	deleteRecs    domain.Outcome[struct{}]
	deleteReviews domain.Outcome[struct{}]
	failCreate    map[string]*domain.Failure

	mu      sync.Mutex
	calls   []string
	created []any
}

func (s *stubClients) track(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *stubClients) called(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == call {
			n++
		}
	}
	return n
}

func wait[T any](ctx context.Context, d time.Duration, o domain.Outcome[T]) domain.Outcome[T] {
	if d <= 0 {
		return o
	}
	select {
	case <-time.After(d):
		return o
	case <-ctx.Done():
		return domain.Fail[T](&domain.Failure{Kind: domain.KindTimeout, Message: ctx.Err().Error(), Err: ctx.Err()})
	}
}

func (s *stubClients) GetProduct(ctx context.Context, id domain.ProductID) domain.Outcome[api.Product] {
	s.track("GetProduct")
	return s.product
}

func (s *stubClients) CreateProduct(ctx context.Context, p api.Product) domain.Outcome[api.Product] {
	s.track("CreateProduct")
	if f := s.failCreate["product"]; f != nil {
		return domain.Fail[api.Product](f)
	}
	s.mu.Lock()
	s.created = append(s.created, p)
	s.mu.Unlock()
	return domain.Success(p)
}

func (s *stubClients) DeleteProduct(ctx context.Context, id domain.ProductID) domain.Outcome[struct{}] {
	s.track("DeleteProduct")
	return s.deleteProduct
}

func (s *stubClients) GetRecommendations(ctx context.Context, id domain.ProductID) domain.Outcome[[]api.Recommendation] {
	s.track("GetRecommendations")
	return wait(ctx, s.recDelay, s.recs)
}

func (s *stubClients) CreateRecommendation(ctx context.Context, r api.Recommendation) domain.Outcome[api.Recommendation] {
	s.track("CreateRecommendation")
	if f := s.failCreate["recommendation"]; f != nil {
		return domain.Fail[api.Recommendation](f)
	}
	s.mu.Lock()
	s.created = append(s.created, r)
	s.mu.Unlock()
	return domain.Success(r)
}

func (s *stubClients) DeleteRecommendations(ctx context.Context, id domain.ProductID) domain.Outcome[struct{}] {
	s.track("DeleteRecommendations")
	return s.deleteRecs
}

func (s *stubClients) GetReviews(ctx context.Context, id domain.ProductID) domain.Outcome[[]api.Review] {
	s.track("GetReviews")
	return wait(ctx, s.revDelay, s.reviews)
}

func (s *stubClients) CreateReview(ctx context.Context, r api.Review) domain.Outcome[api.Review] {
	s.track("CreateReview")
	if f := s.failCreate["review"]; f != nil {
		return domain.Fail[api.Review](f)
	}
	s.mu.Lock()
	s.created = append(s.created, r)
	s.mu.Unlock()
	return domain.Success(r)
}

func (s *stubClients) DeleteReviews(ctx context.Context, id domain.ProductID) domain.Outcome[struct{}] {
	s.track("DeleteReviews")
	return s.deleteReviews
}

func sampleProduct(id int) api.Product {
	return api.Product{ProductID: id, Name: "name-" + domain.ProductID(id).String(), Weight: 123, ServiceAddress: "product:8080"}
}

func sampleRecs(id int) []api.Recommendation {
	return []api.Recommendation{
		{ProductID: id, RecommendationID: 1, Author: "Author 1", Rate: 1, Content: "Content 1", ServiceAddress: "recommendation:8080"},
		{ProductID: id, RecommendationID: 2, Author: "Author 2", Rate: 2, Content: "Content 2", ServiceAddress: "recommendation:8080"},
		{ProductID: id, RecommendationID: 3, Author: "Author 3", Rate: 3, Content: "Content 3", ServiceAddress: "recommendation:8080"},
	}
}

func sampleReviews(id int) []api.Review {
	return []api.Review{
		{ProductID: id, ReviewID: 1, Author: "Author 1", Subject: "Subject 1", Content: "Content 1", ServiceAddress: "review:8080"},
		{ProductID: id, ReviewID: 2, Author: "Author 2", Subject: "Subject 2", Content: "Content 2", ServiceAddress: "review:8080"},
		{ProductID: id, ReviewID: 3, Author: "Author 3", Subject: "Subject 3", Content: "Content 3", ServiceAddress: "review:8080"},
	}
}

func happyClients(id int) *stubClients {
	return &stubClients{
		product: domain.Success(sampleProduct(id)),
		recs:    domain.Success(sampleRecs(id)),
		reviews: domain.Success(sampleReviews(id)),
	}
}
