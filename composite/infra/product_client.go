package infra

import (
	"context"
	"net/http"

	"composite-gateway/api"
	"composite-gateway/composite/application"
	"composite-gateway/composite/domain"
)

var _ domain.ProductClient = (*ProductClient)(nil)

// ProductClient implementa domain.ProductClient sobre HTTP.
type ProductClient struct {
	leaf
}

func NewProductClient(baseURL string, client *http.Client, policy *application.Policy) *ProductClient {
	return &ProductClient{leaf: newLeaf(domain.DownstreamProduct, baseURL, client, policy)}
}

func (c *ProductClient) GetProduct(ctx context.Context, id domain.ProductID) domain.Outcome[api.Product] {
	p, err := call[api.Product](ctx, c.leaf, "get", http.MethodGet, api.ProductPath+"/"+id.String(), nil)
	return lookupOutcome(p, err)
}

func (c *ProductClient) CreateProduct(ctx context.Context, p api.Product) domain.Outcome[api.Product] {
	created, err := call[api.Product](ctx, c.leaf, "create", http.MethodPost, api.ProductPath, p)
	return writeOutcome(created, err)
}

func (c *ProductClient) DeleteProduct(ctx context.Context, id domain.ProductID) domain.Outcome[struct{}] {
	_, err := call[struct{}](ctx, c.leaf, "delete", http.MethodDelete, api.ProductPath+"/"+id.String(), nil)
	return lookupOutcome(struct{}{}, err)
}
