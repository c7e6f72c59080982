package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"composite-gateway/api"
	"composite-gateway/composite/domain"
)

// Writer implementa criação e remoção de um composite.
//
// Criação é sequencial (produto primeiro, sem compensação). Remoção dispara as três
// chamadas em paralelo e é idempotente: 404 num serviço folha conta como sucesso.
type Writer struct {
	Products        domain.ProductClient
	Recommendations domain.RecommendationClient
	Reviews         domain.ReviewClient

	Validate *validator.Validate
	Log      logrus.FieldLogger
}

func NewWriter(products domain.ProductClient, recs domain.RecommendationClient, reviews domain.ReviewClient, log logrus.FieldLogger) *Writer {
	return &Writer{
		Products:        products,
		Recommendations: recs,
		Reviews:         reviews,
		Validate:        validator.New(validator.WithRequiredStructEnabled()),
		Log:             log,
	}
}

// Create grava o produto e depois cada recommendation e review do corpo.
func (w *Writer) Create(ctx context.Context, body api.ProductAggregate) error {
	if err := w.validate(body); err != nil {
		return err
	}
	id := domain.ProductID(body.ProductID)

	if o := w.Products.CreateProduct(ctx, api.Product{
		ProductID: body.ProductID,
		Name:      body.Name,
		Weight:    body.Weight,
	}); o.IsFailure() {
		return o.Failure
	}

	for _, r := range body.Recommendations {
		o := w.Recommendations.CreateRecommendation(ctx, api.Recommendation{
			ProductID:        body.ProductID,
			RecommendationID: r.RecommendationID,
			Author:           r.Author,
			Rate:             r.Rate,
			Content:          r.Content,
		})
		if o.IsFailure() {
			return o.Failure
		}
	}

	for _, r := range body.Reviews {
		o := w.Reviews.CreateReview(ctx, api.Review{
			ProductID: body.ProductID,
			ReviewID:  r.ReviewID,
			Author:    r.Author,
			Subject:   r.Subject,
			Content:   r.Content,
		})
		if o.IsFailure() {
			return o.Failure
		}
	}

	if w.Log != nil {
		w.Log.WithFields(logrus.Fields{
			"product_id":      id.Int(),
			"recommendations": len(body.Recommendations),
			"reviews":         len(body.Reviews),
			"request_id":      domain.RequestID(ctx),
		}).Info("composite created")
	}
	return nil
}

// Delete remove produto, recommendations e reviews de productID.
func (w *Writer) Delete(ctx context.Context, productID int) error {
	id, err := domain.ValidateProductID(productID)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return deleteErr(w.Products.DeleteProduct(gctx, id)) })
	g.Go(func() error { return deleteErr(w.Recommendations.DeleteRecommendations(gctx, id)) })
	g.Go(func() error { return deleteErr(w.Reviews.DeleteReviews(gctx, id)) })
	if err := g.Wait(); err != nil {
		return err
	}

	if w.Log != nil {
		w.Log.WithFields(logrus.Fields{
			"product_id": id.Int(),
			"request_id": domain.RequestID(ctx),
		}).Info("composite deleted")
	}
	return nil
}

func deleteErr(o domain.Outcome[struct{}]) error {
	if !o.IsFailure() || o.Failure.Kind == domain.KindNotFound {
		return nil
	}
	return o.Failure
}

func (w *Writer) validate(body api.ProductAggregate) error {
	v := w.Validate
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	err := v.Struct(body)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &domain.Failure{
			Kind:    domain.KindInvalidArgument,
			Message: fmt.Sprintf("invalid field %s: failed on %q", fe.Namespace(), fe.Tag()),
			Err:     err,
		}
	}
	return &domain.Failure{Kind: domain.KindInvalidArgument, Message: err.Error(), Err: err}
}
