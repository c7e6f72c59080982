package application

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"composite-gateway/api"
	"composite-gateway/composite/domain"
)

func newAggregator(s *stubClients, deadline time.Duration, log logrus.FieldLogger) *Aggregator {
	return &Aggregator{
		Products:        s,
		Recommendations: s,
		Reviews:         s,
		Deadline:        deadline,
		Address:         "gateway:7000",
		Log:             log,
	}
}

// policyClients passa recommendations e reviews por Policy reais, com leaf lento mas saudável.
type policyClients struct {
	*stubClients
	recPolicy    *Policy
	reviewPolicy *Policy
	delay        time.Duration
}

func (c *policyClients) slowLeaf(ctx context.Context) (struct{}, error) {
	select {
	case <-time.After(c.delay):
		return struct{}{}, nil
	case <-ctx.Done():
		return struct{}{}, ctx.Err()
	}
}

func (c *policyClients) GetRecommendations(ctx context.Context, id domain.ProductID) domain.Outcome[[]api.Recommendation] {
	if _, err := Execute(ctx, c.recPolicy, "get", c.slowLeaf); err != nil {
		return domain.Fail[[]api.Recommendation](domain.AsFailure(err))
	}
	return domain.Success([]api.Recommendation{})
}

func (c *policyClients) GetReviews(ctx context.Context, id domain.ProductID) domain.Outcome[[]api.Review] {
	if _, err := Execute(ctx, c.reviewPolicy, "get", c.slowLeaf); err != nil {
		return domain.Fail[[]api.Review](domain.AsFailure(err))
	}
	return domain.Success([]api.Review{})
}

func TestAggregator_HappyPath(t *testing.T) {
	s := happyClients(1)
	agg := newAggregator(s, time.Second, quietLogger())

	got, err := agg.Aggregate(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ProductID != 1 || len(got.Recommendations) != 3 || len(got.Reviews) != 3 {
		t.Fatalf("unexpected composite: %+v", got)
	}
	if got.ServiceAddresses.Composite != "gateway:7000" {
		t.Fatalf("unexpected composite address: %q", got.ServiceAddresses.Composite)
	}
	for _, c := range []string{"GetProduct", "GetRecommendations", "GetReviews"} {
		if s.called(c) != 1 {
			t.Fatalf("expected %s to be called once, got %d", c, s.called(c))
		}
	}
}

func TestAggregator_InvalidIDMakesNoCalls(t *testing.T) {
	for _, id := range []int{0, -1} {
		s := happyClients(1)
		agg := newAggregator(s, time.Second, quietLogger())

		_, err := agg.Aggregate(context.Background(), id)
		if domain.KindOf(err) != domain.KindInvalidArgument {
			t.Fatalf("id %d: expected invalid_argument, got %v", id, err)
		}
		if len(s.calls) != 0 {
			t.Fatalf("id %d: expected no downstream calls, got %v", id, s.calls)
		}
	}
}

func TestAggregator_ProductNotFound(t *testing.T) {
	s := &stubClients{
		product: domain.Empty[api.Product](),
		recs:    domain.Success([]api.Recommendation{}),
		reviews: domain.Success([]api.Review{}),
	}
	agg := newAggregator(s, time.Second, quietLogger())

	_, err := agg.Aggregate(context.Background(), 13)
	f := domain.AsFailure(err)
	if f.Kind != domain.KindNotFound || f.Message != "No product found for productId: 13" {
		t.Fatalf("expected not found for 13, got %v", err)
	}
}

func TestAggregator_SlowReviewsDegradeWithinDeadline(t *testing.T) {
	s := happyClients(1)
	s.revDelay = 5 * time.Second
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	agg := newAggregator(s, 100*time.Millisecond, logger)

	start := time.Now()
	got, err := agg.Aggregate(context.Background(), 1)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed > time.Second {
		t.Fatalf("expected the deadline to bound the request, took %s", elapsed)
	}
	if len(got.Reviews) != 0 || len(got.Recommendations) != 3 {
		t.Fatalf("expected reviews degraded and recommendations kept, got %+v", got)
	}
	if !reflect.DeepEqual(got.ServiceAddresses.Degraded, []string{"reviews: timeout"}) {
		t.Fatalf("unexpected degraded list: %v", got.ServiceAddresses.Degraded)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel || entry.Data["reviews"] != "timeout" {
		t.Fatalf("expected a degraded warning, got %+v", entry)
	}
}

func TestAggregator_ProductFailureCancelsPendingCalls(t *testing.T) {
	s := &stubClients{
		product:  domain.Fail[api.Product](&domain.Failure{Kind: domain.KindUnavailable, Message: "503", Downstream: domain.DownstreamProduct}),
		recs:     domain.Success(sampleRecs(1)),
		reviews:  domain.Success(sampleReviews(1)),
		recDelay: 5 * time.Second,
		revDelay: 5 * time.Second,
	}
	agg := newAggregator(s, 10*time.Second, quietLogger())

	start := time.Now()
	_, err := agg.Aggregate(context.Background(), 1)
	if domain.KindOf(err) != domain.KindUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("expected pending calls to be cancelled")
	}
}

func TestAggregator_CallerCancellation(t *testing.T) {
	s := happyClients(1)
	s.recDelay = 5 * time.Second
	s.revDelay = 5 * time.Second
	agg := newAggregator(s, 0, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	got, err := agg.Aggregate(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.ServiceAddresses.Degraded) != 2 {
		t.Fatalf("expected both lists degraded, got %v", got.ServiceAddresses.Degraded)
	}
}

func TestAggregationDeadline_UsesSlowestPolicy(t *testing.T) {
	fast := domain.ResiliencePolicy{Timeout: 100 * time.Millisecond, MaxAttempts: 1}
	slow := domain.ResiliencePolicy{Timeout: time.Second, MaxAttempts: 2, BackoffBase: 100 * time.Millisecond}

	got := AggregationDeadline(fast, slow)
	want := slow.MaxDuration() + DeadlineOverhead
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestAggregator_NotFoundLookupsKeepSecondaryCircuitsClosed(t *testing.T) {
	settings := fastPolicy(2)
	settings.Timeout = time.Second
	settings.Breaker.ConsecutiveFailures = 3
	stats := &memStats{}
	c := &policyClients{
		stubClients:  &stubClients{product: domain.Empty[api.Product]()},
		recPolicy:    NewPolicy(domain.DownstreamRecommendation, settings, WithStats(stats), WithLogger(quietLogger())),
		reviewPolicy: NewPolicy(domain.DownstreamReview, settings, WithStats(stats), WithLogger(quietLogger())),
		delay:        200 * time.Millisecond,
	}
	logger, hook := test.NewNullLogger()
	agg := &Aggregator{Products: c, Recommendations: c, Reviews: c, Deadline: 2 * time.Second, Log: logger}

	for i := 0; i < 5; i++ {
		if _, err := agg.Aggregate(context.Background(), 13); domain.KindOf(err) != domain.KindNotFound {
			t.Fatalf("lookup %d: expected not_found, got %v", i+1, err)
		}
	}

	for _, p := range []*Policy{c.recPolicy, c.reviewPolicy} {
		if p.Breaker().State() != domain.CircuitClosed {
			t.Fatalf("%s: expected breaker to stay closed, got %s", p.Name(), p.Breaker().State())
		}
	}

	stats.mu.Lock()
	events := append([]domain.CallEvent(nil), stats.events...)
	stats.mu.Unlock()
	if len(events) != 10 {
		t.Fatalf("expected 10 secondary call events, got %d", len(events))
	}
	for _, ev := range events {
		if ev.Result != domain.ResultCancelled {
			t.Fatalf("expected cancelled calls, got %+v", ev)
		}
	}

	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			t.Fatalf("expected no degraded warning for a missing product, got %q", e.Message)
		}
	}

	// o produto aparece: recommendations e reviews continuam acessíveis
	c.product = domain.Success(sampleProduct(13))
	got, err := agg.Aggregate(context.Background(), 13)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ServiceAddresses.Degraded != nil {
		t.Fatalf("expected nothing degraded, got %v", got.ServiceAddresses.Degraded)
	}
}
