package application

import (
	"composite-gateway/api"
	"composite-gateway/composite/domain"
)

// Outcomes são os três resultados que alimentam o merge.
type Outcomes struct {
	Product         domain.Outcome[api.Product]
	Recommendations domain.Outcome[[]api.Recommendation]
	Reviews         domain.Outcome[[]api.Review]
}

// Merge aplica a política de composição. É função pura dos três Outcome.
//
// Product é a âncora: Failure propaga o mesmo kind (Unexpected vira Unavailable) e
// Empty vira NotFound. Falhas de recommendations/reviews são rebaixadas para lista
// vazia e anotadas em ServiceAddresses.Degraded.
func Merge(id domain.ProductID, in Outcomes, compositeAddress string) (api.ProductAggregate, error) {
	switch in.Product.Status {
	case domain.StatusFailure:
		f := *in.Product.Failure
		if f.Kind == domain.KindUnexpected {
			f.Kind = domain.KindUnavailable
		}
		if f.Downstream == "" {
			f.Downstream = domain.DownstreamProduct
		}
		return api.ProductAggregate{}, &f
	case domain.StatusEmpty:
		return api.ProductAggregate{}, &domain.Failure{
			Kind:       domain.KindNotFound,
			Message:    "No product found for productId: " + id.String(),
			Downstream: domain.DownstreamProduct,
		}
	}

	product := in.Product.Value
	addrs := &api.ServiceAddresses{
		Composite: compositeAddress,
		Product:   product.ServiceAddress,
	}

	recs := make([]api.RecommendationSummary, 0)
	switch in.Recommendations.Status {
	case domain.StatusSuccess:
		for _, r := range in.Recommendations.Value {
			recs = append(recs, api.RecommendationSummary{
				RecommendationID: r.RecommendationID,
				Author:           r.Author,
				Rate:             r.Rate,
				Content:          r.Content,
			})
		}
		if len(in.Recommendations.Value) > 0 {
			addrs.Recommendation = in.Recommendations.Value[0].ServiceAddress
		}
	case domain.StatusFailure:
		addrs.Degraded = append(addrs.Degraded, degradedNote("recommendations", in.Recommendations.Failure))
	}

	reviews := make([]api.ReviewSummary, 0)
	switch in.Reviews.Status {
	case domain.StatusSuccess:
		for _, r := range in.Reviews.Value {
			reviews = append(reviews, api.ReviewSummary{
				ReviewID: r.ReviewID,
				Author:   r.Author,
				Subject:  r.Subject,
				Content:  r.Content,
			})
		}
		if len(in.Reviews.Value) > 0 {
			addrs.Review = in.Reviews.Value[0].ServiceAddress
		}
	case domain.StatusFailure:
		addrs.Degraded = append(addrs.Degraded, degradedNote("reviews", in.Reviews.Failure))
	}

	return api.ProductAggregate{
		ProductID:        product.ProductID,
		Name:             product.Name,
		Weight:           product.Weight,
		Recommendations:  recs,
		Reviews:          reviews,
		ServiceAddresses: addrs,
	}, nil
}

func degradedNote(section string, f *domain.Failure) string {
	if f == nil {
		return section + ": " + domain.KindUnexpected.String()
	}
	return section + ": " + f.Kind.String()
}
