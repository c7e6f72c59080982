package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"composite-gateway/composite/domain"
)

// DownstreamConfig é o endereço e a política de resiliência de um serviço folha.
type DownstreamConfig struct {
	URL                  string        `yaml:"url" validate:"required,url"`
	Timeout              time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxAttempts          int           `yaml:"max_attempts" validate:"gte=1,lte=10"`
	BackoffBase          time.Duration `yaml:"backoff_base" validate:"gte=0"`
	BackoffMax           time.Duration `yaml:"backoff_max" validate:"gte=0"`
	FailureRateThreshold float64       `yaml:"failure_rate_threshold" validate:"gt=0,lte=1"`
	WindowSize           int           `yaml:"window_size" validate:"gte=1"`
	MinCalls             int           `yaml:"min_calls" validate:"gte=0,ltefield=WindowSize"`
	ConsecutiveFailures  int           `yaml:"consecutive_failures" validate:"gte=0"`
	OpenCooldown         time.Duration `yaml:"open_cooldown" validate:"gt=0"`
	MaxConcurrent        int           `yaml:"max_concurrent" validate:"gte=0"`
}

func (d DownstreamConfig) Policy() domain.ResiliencePolicy {
	return domain.ResiliencePolicy{
		Timeout:     d.Timeout,
		MaxAttempts: d.MaxAttempts,
		BackoffBase: d.BackoffBase,
		BackoffMax:  d.BackoffMax,
		Breaker: domain.BreakerSettings{
			WindowSize:           d.WindowSize,
			MinCalls:             d.MinCalls,
			FailureRateThreshold: d.FailureRateThreshold,
			ConsecutiveFailures:  d.ConsecutiveFailures,
			OpenCooldown:         d.OpenCooldown,
		},
		MaxConcurrent: d.MaxConcurrent,
	}
}

type RateLimitConfig struct {
	Enabled    bool          `yaml:"enabled"`
	RPS        float64       `yaml:"rps" validate:"required_if=Enabled true,gte=0"`
	Burst      int           `yaml:"burst" validate:"gte=0"`
	KeyHeader  string        `yaml:"key_header"`
	TrustXFF   bool          `yaml:"trust_xff"`
	RetryAfter time.Duration `yaml:"retry_after" validate:"gte=0"`
	AddHeaders bool          `yaml:"add_headers"`
}

type ConcurrencyConfig struct {
	Max            int           `yaml:"max" validate:"gte=0"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout" validate:"gte=0"`
}

type StatsConfig struct {
	Enabled       bool          `yaml:"enabled"`
	RedisAddr     string        `yaml:"redis_addr" validate:"required_if=Enabled true"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db" validate:"gte=0"`
	Prefix        string        `yaml:"prefix"`
	TTL           time.Duration `yaml:"ttl" validate:"gte=0"`
	Bucket        string        `yaml:"bucket" validate:"oneof=minute none"`
}

type Config struct {
	ListenAddr string `yaml:"listen_addr" validate:"required"`
	// ServiceAddress vai em serviceAddresses.cmp; vazio = hostname:porta.
	ServiceAddress string `yaml:"service_address"`
	LogLevel       string `yaml:"log_level" validate:"oneof=trace debug info warn warning error"`
	// AggregationDeadline 0 = derivado das políticas (pior caso + folga).
	AggregationDeadline time.Duration `yaml:"aggregation_deadline" validate:"gte=0"`

	Downstreams struct {
		Product        DownstreamConfig `yaml:"product"`
		Recommendation DownstreamConfig `yaml:"recommendation"`
		Review         DownstreamConfig `yaml:"review"`
	} `yaml:"downstreams"`

	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Stats       StatsConfig       `yaml:"stats"`
}

func defaultDownstream(url string) DownstreamConfig {
	return DownstreamConfig{
		URL:                  url,
		Timeout:              2 * time.Second,
		MaxAttempts:          3,
		BackoffBase:          100 * time.Millisecond,
		BackoffMax:           time.Second,
		FailureRateThreshold: 0.5,
		WindowSize:           10,
		MinCalls:             5,
		ConsecutiveFailures:  5,
		OpenCooldown:         10 * time.Second,
	}
}

func defaultConfig() Config {
	cfg := Config{
		ListenAddr: ":7000",
		LogLevel:   "info",
		RateLimit: RateLimitConfig{
			RPS:        10,
			Burst:      20,
			RetryAfter: time.Second,
		},
		Concurrency: ConcurrencyConfig{Max: 100},
		Stats: StatsConfig{
			Prefix: "composite:stats",
			TTL:    24 * time.Hour,
			Bucket: "minute",
		},
	}
	cfg.Downstreams.Product = defaultDownstream("http://localhost:7001")
	cfg.Downstreams.Recommendation = defaultDownstream("http://localhost:7002")
	cfg.Downstreams.Review = defaultDownstream("http://localhost:7003")
	return cfg
}

// LoadConfig monta a configuração em três camadas: defaults, arquivo YAML (se path
// existir) e variáveis de ambiente. O resultado é validado.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.ServiceAddress == "" {
		cfg.ServiceAddress = defaultServiceAddress(cfg.ListenAddr)
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 1
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.RateLimit.Enabled && cfg.RateLimit.RPS <= 0 {
		return Config{}, errors.New("invalid config: rate_limit.rps must be > 0")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.ListenAddr = getenvDefault("LISTEN_ADDR", cfg.ListenAddr)
	cfg.ServiceAddress = getenvDefault("SERVICE_ADDRESS", cfg.ServiceAddress)
	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", cfg.LogLevel))
	cfg.AggregationDeadline = getenvDurationDefault("AGGREGATION_DEADLINE", cfg.AggregationDeadline)

	applyDownstreamEnv("PRODUCT", &cfg.Downstreams.Product)
	applyDownstreamEnv("RECOMMENDATION", &cfg.Downstreams.Recommendation)
	applyDownstreamEnv("REVIEW", &cfg.Downstreams.Review)

	rl := &cfg.RateLimit
	rl.Enabled = getenvBoolDefault("RATE_ENABLED", rl.Enabled)
	rl.RPS = getenvFloatDefault("RATE_RPS", rl.RPS)
	// IMPORTANTE: com RPS < 1 o burst padrão (20) deixa passar uma rajada grande
	// e dá a impressão de que o limiter não funciona.
	if burst, ok := getenvInt("RATE_BURST"); ok {
		rl.Burst = burst
	} else if getenvIsSet("RATE_RPS") && rl.RPS > 0 && rl.RPS < 1 {
		rl.Burst = 1
	}
	rl.KeyHeader = getenvDefault("RATE_KEY_HEADER", rl.KeyHeader)
	rl.TrustXFF = getenvBoolDefault("TRUST_XFF", rl.TrustXFF)
	rl.RetryAfter = getenvDurationDefault("RETRY_AFTER", rl.RetryAfter)
	rl.AddHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", rl.AddHeaders)

	cfg.Concurrency.Max = getenvIntDefault("CONCURRENCY_MAX", cfg.Concurrency.Max)
	cfg.Concurrency.AcquireTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", cfg.Concurrency.AcquireTimeout)

	st := &cfg.Stats
	st.Enabled = getenvBoolDefault("STATS_ENABLED", st.Enabled)
	st.RedisAddr = getenvDefault("STATS_REDIS_ADDR", st.RedisAddr)
	st.RedisPassword = getenvDefault("STATS_REDIS_PASSWORD", st.RedisPassword)
	st.RedisDB = getenvIntDefault("STATS_REDIS_DB", st.RedisDB)
	st.Prefix = getenvDefault("STATS_PREFIX", st.Prefix)
	st.TTL = getenvDurationDefault("STATS_TTL", st.TTL)
	st.Bucket = strings.ToLower(getenvDefault("STATS_BUCKET", st.Bucket))
}

// applyDownstreamEnv lê <PREFIX>_URL, <PREFIX>_TIMEOUT, <PREFIX>_MAX_ATTEMPTS etc.
func applyDownstreamEnv(prefix string, d *DownstreamConfig) {
	d.URL = getenvDefault(prefix+"_URL", d.URL)
	d.Timeout = getenvDurationDefault(prefix+"_TIMEOUT", d.Timeout)
	d.MaxAttempts = getenvIntDefault(prefix+"_MAX_ATTEMPTS", d.MaxAttempts)
	d.BackoffBase = getenvDurationDefault(prefix+"_BACKOFF_BASE", d.BackoffBase)
	d.BackoffMax = getenvDurationDefault(prefix+"_BACKOFF_MAX", d.BackoffMax)
	d.FailureRateThreshold = getenvFloatDefault(prefix+"_FAILURE_RATE_THRESHOLD", d.FailureRateThreshold)
	d.WindowSize = getenvIntDefault(prefix+"_WINDOW_SIZE", d.WindowSize)
	d.MinCalls = getenvIntDefault(prefix+"_MIN_CALLS", d.MinCalls)
	d.ConsecutiveFailures = getenvIntDefault(prefix+"_CONSECUTIVE_FAILURES", d.ConsecutiveFailures)
	d.OpenCooldown = getenvDurationDefault(prefix+"_OPEN_COOLDOWN", d.OpenCooldown)
	d.MaxConcurrent = getenvIntDefault(prefix+"_MAX_CONCURRENT", d.MaxConcurrent)
}

func defaultServiceAddress(listenAddr string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	_, port, err := net.SplitHostPort(listenAddr)
	if err != nil || port == "" {
		return host
	}
	return net.JoinHostPort(host, port)
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	if i, ok := getenvInt(k); ok {
		return i
	}
	return def
}

func getenvInt(k string) (int, bool) {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

func getenvIsSet(k string) bool {
	v, ok := os.LookupEnv(k)
	return ok && v != ""
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
