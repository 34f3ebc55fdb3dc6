// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Mode determines whether captures come from the deterministic stub renderer
// or the HTTP rendering provider.
type Mode string

const (
	ModeStub       Mode = "stub"
	ModeProduction Mode = "production"
)

// Config holds all application configuration.
type Config struct {
	Mode        Mode
	RenderURL   string
	RegionsFile string
	LogLevel    string
	OTelEnabled bool

	// Rate limits toward the provider and per caller.
	RenderRPS      float64
	AnalysisBudget int
	BudgetWindow   time.Duration

	// Score export.
	CloudWatchNamespace string
	AWSRegion           string
	AWSProfile          string
	AWSRoleARN          string

	// API server settings.
	APIPort      string
	CORSOrigins  []string
	OIDCIssuer   string
	OIDCAudience string

	// Temporal connection shared by the worker and durable-run clients.
	TemporalAddress   string
	TemporalNamespace string
	WorkerQueues      []string
}

// LoadFromEnv reads configuration from environment variables with sensible defaults.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Mode:                Mode(envOr("WEBPULSE_MODE", "stub")),
		RenderURL:           strings.TrimRight(envOr("WEBPULSE_RENDER_URL", "http://localhost:8787"), "/"),
		RegionsFile:         os.Getenv("WEBPULSE_REGIONS_FILE"),
		LogLevel:            envOr("WEBPULSE_LOG_LEVEL", "info"),
		CloudWatchNamespace: os.Getenv("WEBPULSE_CLOUDWATCH_NAMESPACE"),
		AWSRegion:           envOr("AWS_REGION", "us-east-1"),
		AWSProfile:          os.Getenv("AWS_PROFILE"),
		AWSRoleARN:          os.Getenv("WEBPULSE_AWS_ROLE_ARN"),
		APIPort:             envOr("WEBPULSE_API_PORT", "8080"),
		CORSOrigins:         parseList(os.Getenv("WEBPULSE_CORS_ORIGINS"), []string{"*"}),
		OIDCIssuer:          os.Getenv("WEBPULSE_OIDC_ISSUER"),
		OIDCAudience:        os.Getenv("WEBPULSE_OIDC_AUDIENCE"),
		TemporalAddress:     envOr("TEMPORAL_ADDRESS", "localhost:7233"),
		TemporalNamespace:   envOr("TEMPORAL_NAMESPACE", "default"),
		WorkerQueues:        parseList(os.Getenv("WEBPULSE_WORKER_QUEUES"), []string{"analysis", "capture"}),
	}

	var err error
	if cfg.OTelEnabled, err = strconv.ParseBool(envOr("WEBPULSE_OTEL_ENABLED", "false")); err != nil {
		return Config{}, fmt.Errorf("config: invalid WEBPULSE_OTEL_ENABLED: %w", err)
	}
	if cfg.RenderRPS, err = strconv.ParseFloat(envOr("WEBPULSE_RENDER_RPS", "2"), 64); err != nil {
		return Config{}, fmt.Errorf("config: invalid WEBPULSE_RENDER_RPS: %w", err)
	}
	if cfg.AnalysisBudget, err = strconv.Atoi(envOr("WEBPULSE_ANALYSIS_BUDGET", "30")); err != nil {
		return Config{}, fmt.Errorf("config: invalid WEBPULSE_ANALYSIS_BUDGET: %w", err)
	}
	if cfg.BudgetWindow, err = time.ParseDuration(envOr("WEBPULSE_BUDGET_WINDOW", "1h")); err != nil {
		return Config{}, fmt.Errorf("config: invalid WEBPULSE_BUDGET_WINDOW: %w", err)
	}

	if cfg.Mode != ModeStub && cfg.Mode != ModeProduction {
		return Config{}, fmt.Errorf("config: invalid WEBPULSE_MODE %q (must be stub or production)", cfg.Mode)
	}
	if u, err := url.Parse(cfg.RenderURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Config{}, fmt.Errorf("config: WEBPULSE_RENDER_URL must be an absolute http(s) url, got %q", cfg.RenderURL)
	}
	if cfg.RenderRPS < 0 {
		return Config{}, fmt.Errorf("config: WEBPULSE_RENDER_RPS must not be negative")
	}
	if cfg.AnalysisBudget < 0 {
		return Config{}, fmt.Errorf("config: WEBPULSE_ANALYSIS_BUDGET must not be negative")
	}
	if cfg.BudgetWindow <= 0 {
		return Config{}, fmt.Errorf("config: WEBPULSE_BUDGET_WINDOW must be positive")
	}
	if (cfg.OIDCIssuer == "") != (cfg.OIDCAudience == "") {
		return Config{}, fmt.Errorf("config: WEBPULSE_OIDC_ISSUER and WEBPULSE_OIDC_AUDIENCE must be set together")
	}

	return cfg, nil
}

// AuthEnabled reports whether the API requires OIDC bearer tokens.
func (c Config) AuthEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCAudience != ""
}

// ScoreExportEnabled reports whether scores are published to CloudWatch.
func (c Config) ScoreExportEnabled() bool {
	return c.CloudWatchNamespace != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(raw string, fallback []string) []string {
	var items []string
	for _, o := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(o); t != "" {
			items = append(items, t)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
