package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"composite-gateway/composite"
	"composite-gateway/composite/application"
	"composite-gateway/composite/domain"
	"composite-gateway/composite/infra"
)

func main() {
	cfg, err := LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid LOG_LEVEL: %v", err)
	}
	log.SetLevel(level)
	logger := log.StandardLogger()

	var stats domain.StatsStore
	if cfg.Stats.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Stats.RedisAddr,
			Password: cfg.Stats.RedisPassword,
			DB:       cfg.Stats.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		stats = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.Stats.Prefix),
			infra.WithStatsTTL(cfg.Stats.TTL),
			infra.WithStatsBucket(cfg.Stats.Bucket),
		)
	}

	newPolicy := func(name string, d DownstreamConfig) *application.Policy {
		opts := []application.PolicyOption{application.WithLogger(logger)}
		if stats != nil {
			opts = append(opts, application.WithStats(stats))
		}
		if pool := infra.NewChanPool(d.MaxConcurrent); pool != nil {
			opts = append(opts, application.WithBulkhead(pool, d.Timeout))
		}
		return application.NewPolicy(name, d.Policy(), opts...)
	}

	ds := cfg.Downstreams
	httpClient := infra.NewHTTPClient(cfg.Concurrency.Max)
	products := infra.NewProductClient(ds.Product.URL, httpClient, newPolicy(domain.DownstreamProduct, ds.Product))
	recs := infra.NewRecommendationClient(ds.Recommendation.URL, httpClient, newPolicy(domain.DownstreamRecommendation, ds.Recommendation))
	reviews := infra.NewReviewClient(ds.Review.URL, httpClient, newPolicy(domain.DownstreamReview, ds.Review))

	deadline := cfg.AggregationDeadline
	if deadline == 0 {
		deadline = application.AggregationDeadline(ds.Product.Policy(), ds.Recommendation.Policy(), ds.Review.Policy())
	}

	agg := &application.Aggregator{
		Products:        products,
		Recommendations: recs,
		Reviews:         reviews,
		Deadline:        deadline,
		Address:         cfg.ServiceAddress,
		Log:             logger,
	}
	writer := application.NewWriter(products, recs, reviews, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	routerOpts := composite.RouterOptions{
		Log: logger,
		Concurrency: composite.ConcurrencyOptions{
			Max:            cfg.Concurrency.Max,
			AcquireTimeout: cfg.Concurrency.AcquireTimeout,
		},
	}
	if cfg.RateLimit.Enabled {
		limiters := infra.NewClientLimiters(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		limiters.StartJanitor(ctx)
		routerOpts.RateLimit = composite.RateLimitOptions{
			Store:               limiters,
			KeyHeader:           cfg.RateLimit.KeyHeader,
			TrustXForwardedFor:  cfg.RateLimit.TrustXFF,
			RetryAfter:          cfg.RateLimit.RetryAfter,
			AddRateLimitHeaders: cfg.RateLimit.AddHeaders,
		}
	}

	// o WriteTimeout precisa cobrir o prazo da agregação inteira
	writeTimeout := 30 * time.Second
	if deadline+5*time.Second > writeTimeout {
		writeTimeout = deadline + 5*time.Second
	}
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           composite.NewRouter(composite.NewHandler(agg, writer, logger), routerOpts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithFields(log.Fields{
		"addr":           cfg.ListenAddr,
		"service":        cfg.ServiceAddress,
		"product":        ds.Product.URL,
		"recommendation": ds.Recommendation.URL,
		"review":         ds.Review.URL,
		"deadline":       deadline.String(),
	}).Info("composite gateway listening")
	log.WithFields(log.Fields{
		"enabled":   cfg.RateLimit.Enabled,
		"rps":       cfg.RateLimit.RPS,
		"burst":     cfg.RateLimit.Burst,
		"keyHeader": cfg.RateLimit.KeyHeader,
		"trustXFF":  cfg.RateLimit.TrustXFF,
	}).Info("rate limit")
	log.WithFields(log.Fields{
		"enabled": cfg.Stats.Enabled,
		"redis":   cfg.Stats.RedisAddr,
		"bucket":  cfg.Stats.Bucket,
		"ttl":     cfg.Stats.TTL.String(),
	}).Info("stats")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
