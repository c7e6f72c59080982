package api

import "time"

// ProductAggregate é a resposta de GET /product-composite/{productId} e também o
// corpo aceito por POST /product-composite.
//
// Recommendations e Reviews nunca são nil numa resposta: seção indisponível vira lista vazia.
type ProductAggregate struct {
	ProductID        int                     `json:"productId" validate:"gt=0"`
	Name             string                  `json:"name" validate:"required"`
	Weight           int                     `json:"weight" validate:"gte=0"`
	Recommendations  []RecommendationSummary `json:"recommendations" validate:"dive"`
	Reviews          []ReviewSummary         `json:"reviews" validate:"dive"`
	ServiceAddresses *ServiceAddresses       `json:"serviceAddresses,omitempty"`
}

type RecommendationSummary struct {
	RecommendationID int    `json:"recommendationId" validate:"gt=0"`
	Author           string `json:"author" validate:"required"`
	Rate             int    `json:"rate" validate:"gte=0,lte=5"`
	Content          string `json:"content"`
}

type ReviewSummary struct {
	ReviewID int    `json:"reviewId" validate:"gt=0"`
	Author   string `json:"author" validate:"required"`
	Subject  string `json:"subject" validate:"required"`
	Content  string `json:"content"`
}

// ServiceAddresses é o bloco de diagnóstico: qual instância respondeu cada parte.
//
// Degraded lista as seções rebaixadas para lista vazia (ex.: "reviews: timeout").
type ServiceAddresses struct {
	Composite      string   `json:"cmp"`
	Product        string   `json:"pro"`
	Review         string   `json:"rev"`
	Recommendation string   `json:"rec"`
	Degraded       []string `json:"degraded,omitempty"`
}

// HTTPErrorInfo é o corpo padrão de qualquer resposta de erro do gateway.
type HTTPErrorInfo struct {
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
}
