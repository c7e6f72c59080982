package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != ":7000" || cfg.Downstreams.Product.URL != "http://localhost:7001" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Downstreams.Review.MaxAttempts != 3 || cfg.Downstreams.Review.Timeout != 2*time.Second {
		t.Fatalf("unexpected downstream defaults: %+v", cfg.Downstreams.Review)
	}
	if cfg.ServiceAddress == "" {
		t.Fatalf("expected a derived service address")
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	yml := `
listen_addr: ":9000"
aggregation_deadline: 3s
downstreams:
  review:
    url: http://review:8080
    timeout: 500ms
    max_attempts: 2
rate_limit:
  enabled: true
  rps: 5
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("REVIEW_MAX_ATTEMPTS", "4")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != ":9000" || cfg.AggregationDeadline != 3*time.Second {
		t.Fatalf("expected file values, got %+v", cfg)
	}
	r := cfg.Downstreams.Review
	if r.URL != "http://review:8080" || r.Timeout != 500*time.Millisecond {
		t.Fatalf("expected review from file, got %+v", r)
	}
	if r.MaxAttempts != 4 {
		t.Fatalf("expected env to override the file, got %d", r.MaxAttempts)
	}
	if r.OpenCooldown != 10*time.Second {
		t.Fatalf("expected defaults to survive partial file, got %s", r.OpenCooldown)
	}
	if cfg.LogLevel != "debug" || !cfg.RateLimit.Enabled || cfg.RateLimit.RPS != 5 {
		t.Fatalf("unexpected values: %+v", cfg)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatalf("expected a missing file to be ignored, got %v", err)
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	cases := map[string]string{
		"PRODUCT_URL":                 "not a url",
		"REVIEW_TIMEOUT":              "-1s",
		"RECOMMENDATION_MAX_ATTEMPTS": "0",
		"LOG_LEVEL":                   "loud",
		"STATS_ENABLED":               "true",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			_, err := LoadConfig("")
			if err == nil || !strings.Contains(err.Error(), "invalid config") {
				t.Fatalf("expected validation error for %s=%s, got %v", k, v, err)
			}
		})
	}
}

func TestLoadConfig_LowRPSForcesBurstOne(t *testing.T) {
	t.Setenv("RATE_RPS", "0.5")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RateLimit.Burst != 1 {
		t.Fatalf("expected burst=1 for rps<1, got %d", cfg.RateLimit.Burst)
	}
}

func TestDownstreamConfig_Policy(t *testing.T) {
	d := defaultDownstream("http://product")
	p := d.Policy()
	if p.MaxAttempts != 3 || p.Breaker.WindowSize != 10 || p.Breaker.OpenCooldown != 10*time.Second {
		t.Fatalf("unexpected policy: %+v", p)
	}
}
