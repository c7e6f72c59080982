package domain

import (
	"context"

	"composite-gateway/api"
)

// Nomes dos downstreams, usados em logs, stats e na chave do circuit breaker.
const (
	DownstreamProduct        = "product"
	DownstreamRecommendation = "recommendation"
	DownstreamReview         = "review"
)

// ProductClient fala com o product-service.
//
// GetProduct devolve Empty quando o produto não existe (404), nunca Failure(NotFound).
type ProductClient interface {
	GetProduct(ctx context.Context, id ProductID) Outcome[api.Product]
	CreateProduct(ctx context.Context, p api.Product) Outcome[api.Product]
	DeleteProduct(ctx context.Context, id ProductID) Outcome[struct{}]
}

// RecommendationClient fala com o recommendation-service. Lista vazia é Success([]).
type RecommendationClient interface {
	GetRecommendations(ctx context.Context, id ProductID) Outcome[[]api.Recommendation]
	CreateRecommendation(ctx context.Context, r api.Recommendation) Outcome[api.Recommendation]
	DeleteRecommendations(ctx context.Context, id ProductID) Outcome[struct{}]
}

// ReviewClient fala com o review-service. Lista vazia é Success([]).
type ReviewClient interface {
	GetReviews(ctx context.Context, id ProductID) Outcome[[]api.Review]
	CreateReview(ctx context.Context, r api.Review) Outcome[api.Review]
	DeleteReviews(ctx context.Context, id ProductID) Outcome[struct{}]
}
