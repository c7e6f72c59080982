package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"composite-gateway/composite/leafsvc"
)

// Sobe os três serviços folha em memória para rodar o gateway localmente.
//
//	PRODUCT_ADDR=:7001 RECOMMENDATION_ADDR=:7002 REVIEW_ADDR=:7003
//	SEED_IDS=1,2,3               produtos criados na partida
//	REVIEW_DELAY=3s              atraso em todas as respostas do review-service
//	RECOMMENDATION_FAIL_STATUS=503  força o status de erro do recommendation-service
func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	store := leafsvc.NewStore()
	store.Seed(seedIDs(getenvDefault("SEED_IDS", "1,2,3"))...)

	services := []struct {
		name   string
		addr   string
		faults *leafsvc.Faults
		build  func(*leafsvc.Store, leafsvc.Options) http.Handler
	}{
		{"product", getenvDefault("PRODUCT_ADDR", ":7001"), faultsFromEnv("PRODUCT"), leafsvc.NewProductService},
		{"recommendation", getenvDefault("RECOMMENDATION_ADDR", ":7002"), faultsFromEnv("RECOMMENDATION"), leafsvc.NewRecommendationService},
		{"review", getenvDefault("REVIEW_ADDR", ":7003"), faultsFromEnv("REVIEW"), leafsvc.NewReviewService},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for _, svc := range services {
		host, _ := os.Hostname()
		srv := &http.Server{
			Addr:              svc.addr,
			Handler:           svc.build(store, leafsvc.Options{Address: host + svc.addr, Faults: svc.faults}),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       90 * time.Second,
		}
		name := svc.name

		g.Go(func() error {
			log.WithFields(log.Fields{"service": name, "addr": srv.Addr}).Info("leaf service listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func faultsFromEnv(prefix string) *leafsvc.Faults {
	f := &leafsvc.Faults{}
	if d, err := time.ParseDuration(os.Getenv(prefix + "_DELAY")); err == nil {
		f.SetDelay(d)
	}
	if code, err := strconv.Atoi(os.Getenv(prefix + "_FAIL_STATUS")); err == nil {
		f.SetStatus(code)
	}
	return f
}

func seedIDs(raw string) []int {
	var ids []int
	for _, p := range strings.Split(raw, ",") {
		if id, err := strconv.Atoi(strings.TrimSpace(p)); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
