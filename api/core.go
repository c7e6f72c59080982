package api

// Product é a entidade âncora servida pelo product-service.
//
// Sample usage: "curl $HOST:$PORT/product/1".
type Product struct {
	ProductID      int    `json:"productId"`
	Name           string `json:"name"`
	Weight         int    `json:"weight"`
	ServiceAddress string `json:"serviceAddress,omitempty"`
}

// Recommendation vem do recommendation-service.
//
// Sample usage: "curl $HOST:$PORT/recommendation?productId=1".
type Recommendation struct {
	ProductID        int    `json:"productId"`
	RecommendationID int    `json:"recommendationId"`
	Author           string `json:"author"`
	Rate             int    `json:"rate"`
	Content          string `json:"content"`
	ServiceAddress   string `json:"serviceAddress,omitempty"`
}

// Review vem do review-service.
//
// Sample usage: "curl $HOST:$PORT/review?productId=1".
type Review struct {
	ProductID      int    `json:"productId"`
	ReviewID       int    `json:"reviewId"`
	Author         string `json:"author"`
	Subject        string `json:"subject"`
	Content        string `json:"content"`
	ServiceAddress string `json:"serviceAddress,omitempty"`
}

// Paths dos serviços folha.
const (
	ProductPath        = "/product"
	RecommendationPath = "/recommendation"
	ReviewPath         = "/review"
	CompositePath      = "/product-composite"
)
