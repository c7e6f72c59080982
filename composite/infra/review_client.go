package infra

import (
	"context"
	"net/http"

	"composite-gateway/api"
	"composite-gateway/composite/application"
	"composite-gateway/composite/domain"
)

var _ domain.ReviewClient = (*ReviewClient)(nil)

// ReviewClient implementa domain.ReviewClient sobre HTTP.
type ReviewClient struct {
	leaf
}

func NewReviewClient(baseURL string, client *http.Client, policy *application.Policy) *ReviewClient {
	return &ReviewClient{leaf: newLeaf(domain.DownstreamReview, baseURL, client, policy)}
}

func (c *ReviewClient) GetReviews(ctx context.Context, id domain.ProductID) domain.Outcome[[]api.Review] {
	reviews, err := call[[]api.Review](ctx, c.leaf, "get", http.MethodGet, api.ReviewPath+"?productId="+id.String(), nil)
	if err == nil && reviews == nil {
		reviews = []api.Review{}
	}
	return lookupOutcome(reviews, err)
}

func (c *ReviewClient) CreateReview(ctx context.Context, r api.Review) domain.Outcome[api.Review] {
	created, err := call[api.Review](ctx, c.leaf, "create", http.MethodPost, api.ReviewPath, r)
	return writeOutcome(created, err)
}

func (c *ReviewClient) DeleteReviews(ctx context.Context, id domain.ProductID) domain.Outcome[struct{}] {
	_, err := call[struct{}](ctx, c.leaf, "delete", http.MethodDelete, api.ReviewPath+"?productId="+id.String(), nil)
	return lookupOutcome(struct{}{}, err)
}
