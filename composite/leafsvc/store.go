package leafsvc

import (
	"fmt"
	"sort"
	"sync"

	"composite-gateway/api"
)

// Store guarda os três agregados em memória, indexados por productId.
type Store struct {
	mu       sync.RWMutex
	products map[int]api.Product
	recs     map[int]map[int]api.Recommendation
	reviews  map[int]map[int]api.Review
}

func NewStore() *Store {
	return &Store{
		products: make(map[int]api.Product),
		recs:     make(map[int]map[int]api.Recommendation),
		reviews:  make(map[int]map[int]api.Review),
	}
}

// Seed cria, para cada id, um produto com 3 recommendations e 3 reviews.
func (s *Store) Seed(ids ...int) {
	for _, id := range ids {
		_ = s.AddProduct(api.Product{ProductID: id, Name: fmt.Sprintf("name-%d", id), Weight: id * 10})
		for i := 1; i <= 3; i++ {
			_ = s.AddRecommendation(api.Recommendation{
				ProductID: id, RecommendationID: i, Author: fmt.Sprintf("Author %d", i), Rate: i, Content: fmt.Sprintf("Content %d", i),
			})
			_ = s.AddReview(api.Review{
				ProductID: id, ReviewID: i, Author: fmt.Sprintf("Author %d", i), Subject: fmt.Sprintf("Subject %d", i), Content: fmt.Sprintf("Content %d", i),
			})
		}
	}
}

// ErrDuplicate é devolvido quando a chave já existe.
type ErrDuplicate struct{ Key string }

func (e ErrDuplicate) Error() string { return "Duplicate key " + e.Key }

func (s *Store) AddProduct(p api.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ProductID]; ok {
		return ErrDuplicate{Key: fmt.Sprintf("Product Id: %d", p.ProductID)}
	}
	p.ServiceAddress = ""
	s.products[p.ProductID] = p
	return nil
}

func (s *Store) Product(id int) (api.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *Store) DeleteProduct(id int) {
	s.mu.Lock()
	delete(s.products, id)
	s.mu.Unlock()
}

func (s *Store) AddRecommendation(r api.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID := s.recs[r.ProductID]
	if byID == nil {
		byID = make(map[int]api.Recommendation)
		s.recs[r.ProductID] = byID
	}
	if _, ok := byID[r.RecommendationID]; ok {
		return ErrDuplicate{Key: fmt.Sprintf("(ProductId,RecommendationId): (%d, %d)", r.ProductID, r.RecommendationID)}
	}
	r.ServiceAddress = ""
	byID[r.RecommendationID] = r
	return nil
}

// Recommendations devolve a lista ordenada por recommendationId (nunca nil).
func (s *Store) Recommendations(productID int) []api.Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Recommendation, 0, len(s.recs[productID]))
	for _, r := range s.recs[productID] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecommendationID < out[j].RecommendationID })
	return out
}

func (s *Store) DeleteRecommendations(productID int) {
	s.mu.Lock()
	delete(s.recs, productID)
	s.mu.Unlock()
}

func (s *Store) AddReview(r api.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID := s.reviews[r.ProductID]
	if byID == nil {
		byID = make(map[int]api.Review)
		s.reviews[r.ProductID] = byID
	}
	if _, ok := byID[r.ReviewID]; ok {
		return ErrDuplicate{Key: fmt.Sprintf("Product Id: %d, Review Id:%d", r.ProductID, r.ReviewID)}
	}
	r.ServiceAddress = ""
	byID[r.ReviewID] = r
	return nil
}

// Reviews devolve a lista ordenada por reviewId (nunca nil).
func (s *Store) Reviews(productID int) []api.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Review, 0, len(s.reviews[productID]))
	for _, r := range s.reviews[productID] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReviewID < out[j].ReviewID })
	return out
}

func (s *Store) DeleteReviews(productID int) {
	s.mu.Lock()
	delete(s.reviews, productID)
	s.mu.Unlock()
}
