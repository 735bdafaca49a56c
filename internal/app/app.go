// Package app wires configuration into the transports, the sentiment
// services and the HTTP API.
package app

import (
	"log/slog"
	"net/http"

	"github.com/kamilpajak/sentimeter/internal/api"
	"github.com/kamilpajak/sentimeter/internal/config"
	"github.com/kamilpajak/sentimeter/internal/llm"
	"github.com/kamilpajak/sentimeter/internal/sentiment"
)

// sessionsPerMinute bounds key validations per client IP on the API.
const sessionsPerMinute = 10

// Services bundles the long-lived components built from a Config.
type Services struct {
	Registry  llm.Registry
	Validator *sentiment.Validator
	Analyzer  *sentiment.Analyzer
}

// New builds the transports and services. httpClient may be nil.
func New(cfg config.Config, httpClient *http.Client, logger *slog.Logger, opts ...sentiment.Option) *Services {
	reg := llm.NewRegistry(
		llm.NewOpenAIClient(cfg.Providers.OpenAIURL, httpClient),
		llm.NewAnthropicClient(cfg.Providers.AnthropicURL, httpClient),
		llm.NewGoogleClient(cfg.Providers.GoogleURL, httpClient),
	)

	analyzerOpts := []sentiment.Option{
		sentiment.WithLimits(sentiment.Limits{
			MinChars: cfg.Analysis.MinChars,
			MaxWords: cfg.Analysis.MaxWords,
			MaxChars: cfg.Analysis.MaxChars,
		}),
		sentiment.WithTimeout(cfg.Analysis.RequestTimeout),
		sentiment.WithLogger(logger),
	}
	analyzerOpts = append(analyzerOpts, opts...)

	return &Services{
		Registry:  reg,
		Validator: sentiment.NewValidator(reg, cfg.Analysis.ValidateTimeout, logger),
		Analyzer:  sentiment.NewAnalyzer(reg, analyzerOpts...),
	}
}

// NewAPI builds the HTTP API over svc.
func NewAPI(cfg config.Config, svc *Services, logger *slog.Logger) *api.Server {
	return api.NewServer(api.Config{
		Validator:         svc.Validator,
		Analyzer:          svc.Analyzer,
		DefaultModel:      cfg.Analysis.DefaultModel,
		RateLimit:         cfg.HTTP.RateLimit,
		RateBurst:         cfg.HTTP.RateBurst,
		SessionTTL:        cfg.HTTP.SessionTTL,
		SessionsPerMinute: sessionsPerMinute,
		Logger:            logger,
	})
}
