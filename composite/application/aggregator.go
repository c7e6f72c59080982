package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"composite-gateway/api"
	"composite-gateway/composite/domain"
)

// DeadlineOverhead é a folga somada ao pior caso das políticas para o merge e a serialização.
const DeadlineOverhead = 100 * time.Millisecond

// AggregationDeadline deriva o prazo da agregação: o maior MaxDuration entre as
// políticas mais DeadlineOverhead.
func AggregationDeadline(policies ...domain.ResiliencePolicy) time.Duration {
	var longest time.Duration
	for _, p := range policies {
		if d := p.MaxDuration(); d > longest {
			longest = d
		}
	}
	return longest + DeadlineOverhead
}

// Aggregator dispara as três chamadas em paralelo e compõe o resultado.
type Aggregator struct {
	Products        domain.ProductClient
	Recommendations domain.RecommendationClient
	Reviews         domain.ReviewClient

	// Deadline limita a agregação inteira. 0 = sem prazo próprio (só o do ctx).
	Deadline time.Duration
	// Address é o endereço do próprio gateway, devolvido em ServiceAddresses.Composite.
	Address string
	Log     logrus.FieldLogger
}

// Aggregate valida o id, consulta os três serviços em paralelo e aplica Merge.
//
// O tempo total é limitado por Deadline: chamadas que não terminam a tempo viram
// Failure(Timeout). Se o produto falha ou não existe, as outras chamadas são canceladas.
func (a *Aggregator) Aggregate(ctx context.Context, productID int) (api.ProductAggregate, error) {
	id, err := domain.ValidateProductID(productID)
	if err != nil {
		return api.ProductAggregate{}, err
	}

	if a.Deadline > 0 {
		var cancelDeadline context.CancelFunc
		ctx, cancelDeadline = context.WithTimeout(ctx, a.Deadline)
		defer cancelDeadline()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	productCh := make(chan domain.Outcome[api.Product], 1)
	recsCh := make(chan domain.Outcome[[]api.Recommendation], 1)
	reviewsCh := make(chan domain.Outcome[[]api.Review], 1)

	var g errgroup.Group
	g.Go(func() error {
		productCh <- a.Products.GetProduct(ctx, id)
		return nil
	})
	g.Go(func() error {
		recsCh <- a.Recommendations.GetRecommendations(ctx, id)
		return nil
	})
	g.Go(func() error {
		reviewsCh <- a.Reviews.GetReviews(ctx, id)
		return nil
	})

	var in Outcomes
	in.Product = await(ctx, productCh, domain.DownstreamProduct)
	if in.Product.Status != domain.StatusSuccess {
		// âncora ausente: o resto não muda o desfecho
		cancel()
	}
	in.Recommendations = await(ctx, recsCh, domain.DownstreamRecommendation)
	in.Reviews = await(ctx, reviewsCh, domain.DownstreamReview)

	cancel()
	_ = g.Wait()

	a.logOutcome(ctx, id, in)
	return Merge(id, in, a.Address)
}

// await espera o resultado de uma chamada ou o fim do ctx, o que vier primeiro.
func await[T any](ctx context.Context, ch <-chan domain.Outcome[T], downstream string) domain.Outcome[T] {
	select {
	case o := <-ch:
		return o
	case <-ctx.Done():
	}
	// resultado pode ter chegado junto com o cancelamento
	select {
	case o := <-ch:
		return o
	default:
	}
	return domain.Fail[T](&domain.Failure{
		Kind:       domain.KindTimeout,
		Message:    "aggregation deadline exceeded",
		Downstream: downstream,
		Err:        ctx.Err(),
	})
}

func (a *Aggregator) logOutcome(ctx context.Context, id domain.ProductID, in Outcomes) {
	if a.Log == nil {
		return
	}
	fields := logrus.Fields{
		"product_id":      id.Int(),
		"request_id":      domain.RequestID(ctx),
		"product":         statusLabel(in.Product.Status, in.Product.Failure),
		"recommendations": statusLabel(in.Recommendations.Status, in.Recommendations.Failure),
		"reviews":         statusLabel(in.Reviews.Status, in.Reviews.Failure),
	}
	// sem produto as chamadas secundárias foram canceladas por nós: não é degradação
	if in.Product.Status == domain.StatusSuccess && (in.Recommendations.IsFailure() || in.Reviews.IsFailure()) {
		a.Log.WithFields(fields).Warn("composite degraded")
		return
	}
	a.Log.WithFields(fields).Debug("composite aggregated")
}

func statusLabel(s domain.OutcomeStatus, f *domain.Failure) string {
	switch s {
	case domain.StatusSuccess:
		return "success"
	case domain.StatusEmpty:
		return "empty"
	}
	if f == nil {
		return domain.KindUnexpected.String()
	}
	return f.Kind.String()
}
