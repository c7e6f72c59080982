package infra

import (
	"context"
	"net/http"

	"composite-gateway/api"
	"composite-gateway/composite/application"
	"composite-gateway/composite/domain"
)

var _ domain.RecommendationClient = (*RecommendationClient)(nil)

// RecommendationClient implementa domain.RecommendationClient sobre HTTP.
type RecommendationClient struct {
	leaf
}

func NewRecommendationClient(baseURL string, client *http.Client, policy *application.Policy) *RecommendationClient {
	return &RecommendationClient{leaf: newLeaf(domain.DownstreamRecommendation, baseURL, client, policy)}
}

func (c *RecommendationClient) GetRecommendations(ctx context.Context, id domain.ProductID) domain.Outcome[[]api.Recommendation] {
	recs, err := call[[]api.Recommendation](ctx, c.leaf, "get", http.MethodGet, api.RecommendationPath+"?productId="+id.String(), nil)
	if err == nil && recs == nil {
		recs = []api.Recommendation{}
	}
	return lookupOutcome(recs, err)
}

func (c *RecommendationClient) CreateRecommendation(ctx context.Context, r api.Recommendation) domain.Outcome[api.Recommendation] {
	created, err := call[api.Recommendation](ctx, c.leaf, "create", http.MethodPost, api.RecommendationPath, r)
	return writeOutcome(created, err)
}

func (c *RecommendationClient) DeleteRecommendations(ctx context.Context, id domain.ProductID) domain.Outcome[struct{}] {
	_, err := call[struct{}](ctx, c.leaf, "delete", http.MethodDelete, api.RecommendationPath+"?productId="+id.String(), nil)
	return lookupOutcome(struct{}{}, err)
}
