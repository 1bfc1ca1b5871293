package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// EnrichConfig holds the tuning knobs of the enrichment engine. The defaults
// are the values the heuristics were tuned with; they are exposed as
// configuration rather than hard-coded invariants.
type EnrichConfig struct {
	Cron            string
	BatchSize       int
	DayWindow       int
	DefaultRegion   string
	BrandThreshold  float64
	CandidateCap    int
	VerifyBatchSize int
	BatchPause      time.Duration
	CrawlPause      time.Duration
	DNSServers      []string
	DNSTimeout      time.Duration
	HeadTimeout     time.Duration
	GetTimeout      time.Duration
	FetchTimeout    time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL            string
	JWTSecret              string
	Port                   string
	LogLevel               string
	TokenTTL               time.Duration
	RateLimitLogin         RateLimitConfig
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
	Enrich                 EnrichConfig
}

// Load reads configuration from environment variables and applies sane defaults.
// DATABASE_URL is required; everything else falls back to a usable default.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		JWTSecret:              getEnv("JWT_SECRET", "dev-secret"),
		Port:                   getEnv("PORT", "8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		TokenTTL:               parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		Enrich: EnrichConfig{
			Cron:            getEnv("ENRICH_CRON", "0 */6 * * *"),
			BatchSize:       parseInt(getEnv("ENRICH_BATCH_SIZE", "20"), 20),
			DayWindow:       parseInt(getEnv("ENRICH_DAY_WINDOW", "0"), 0),
			DefaultRegion:   strings.ToUpper(getEnv("ENRICH_DEFAULT_REGION", "GB")),
			BrandThreshold:  parseFloat(getEnv("BRAND_MATCH_THRESHOLD", "0.4"), 0.4),
			CandidateCap:    parseInt(getEnv("ENRICH_CANDIDATE_CAP", "40"), 40),
			VerifyBatchSize: parseInt(getEnv("ENRICH_VERIFY_BATCH", "5"), 5),
			BatchPause:      parseDuration(getEnv("ENRICH_BATCH_PAUSE", "200ms"), 200*time.Millisecond),
			CrawlPause:      parseDuration(getEnv("ENRICH_CRAWL_PAUSE", "200ms"), 200*time.Millisecond),
			DNSServers:      splitList(getEnv("ENRICH_DNS_SERVERS", "1.1.1.1:53,8.8.8.8:53")),
			DNSTimeout:      parseDuration(getEnv("ENRICH_DNS_TIMEOUT", "3500ms"), 3500*time.Millisecond),
			HeadTimeout:     parseDuration(getEnv("ENRICH_HEAD_TIMEOUT", "4s"), 4*time.Second),
			GetTimeout:      parseDuration(getEnv("ENRICH_GET_TIMEOUT", "8s"), 8*time.Second),
			FetchTimeout:    parseDuration(getEnv("ENRICH_FETCH_TIMEOUT", "6s"), 6*time.Second),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_LOGIN", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_LOGIN value: %w", err)
	}
	cfg.RateLimitLogin = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(input string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(input string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil {
		return fallback
	}
	return f
}

func splitList(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
