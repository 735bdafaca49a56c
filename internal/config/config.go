// Package config loads sentimeter settings from a YAML file and the
// environment. API keys are never read from the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kamilpajak/sentimeter/internal/llm"
)

type Config struct {
	Providers struct {
		OpenAIURL    string `yaml:"openai_url"`
		AnthropicURL string `yaml:"anthropic_url"`
		GoogleURL    string `yaml:"google_url"`
	} `yaml:"providers"`
	Analysis struct {
		DefaultModel    string        `yaml:"default_model"`
		RequestTimeout  time.Duration `yaml:"request_timeout"`
		ValidateTimeout time.Duration `yaml:"validate_timeout"`
		MinChars        int           `yaml:"min_chars"`
		MaxWords        int           `yaml:"max_words"`
		MaxChars        int           `yaml:"max_chars"`
	} `yaml:"analysis"`
	HTTP struct {
		Addr       string        `yaml:"addr"`
		RateLimit  float64       `yaml:"rate_limit"`
		RateBurst  int           `yaml:"rate_burst"`
		SessionTTL time.Duration `yaml:"session_ttl"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func Default() Config {
	var cfg Config
	cfg.Analysis.DefaultModel = llm.DefaultModel
	cfg.Analysis.RequestTimeout = 30 * time.Second
	cfg.Analysis.ValidateTimeout = 10 * time.Second
	cfg.Analysis.MinChars = 10
	cfg.Analysis.MaxWords = 2000
	cfg.Analysis.MaxChars = 20000
	cfg.HTTP.Addr = ":8080"
	cfg.HTTP.RateLimit = 5
	cfg.HTTP.RateBurst = 10
	cfg.HTTP.SessionTTL = 30 * time.Minute
	cfg.Log.Level = "info"
	cfg.Log.Format = "auto"
	return cfg
}

// Load reads path (a missing file is not an error), applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the settings for consistency.
func (c Config) Validate() error {
	var errs []error
	if _, err := llm.Describe(c.Analysis.DefaultModel); err != nil {
		errs = append(errs, fmt.Errorf("analysis.default_model: unknown model %q", c.Analysis.DefaultModel))
	}
	if c.Analysis.RequestTimeout <= 0 {
		errs = append(errs, errors.New("analysis.request_timeout must be positive"))
	}
	if c.Analysis.ValidateTimeout <= 0 {
		errs = append(errs, errors.New("analysis.validate_timeout must be positive"))
	}
	if c.Analysis.MinChars < 1 {
		errs = append(errs, errors.New("analysis.min_chars must be at least 1"))
	}
	if c.Analysis.MaxWords < 1 || c.Analysis.MaxChars < c.Analysis.MinChars {
		errs = append(errs, errors.New("analysis.max_words and analysis.max_chars must allow some input"))
	}
	if c.HTTP.RateLimit <= 0 || c.HTTP.RateBurst < 1 {
		errs = append(errs, errors.New("http.rate_limit and http.rate_burst must be positive"))
	}
	if c.HTTP.SessionTTL <= 0 {
		errs = append(errs, errors.New("http.session_ttl must be positive"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "auto", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unsupported %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SENTIMETER_OPENAI_URL"); v != "" {
		cfg.Providers.OpenAIURL = v
	}
	if v := os.Getenv("SENTIMETER_ANTHROPIC_URL"); v != "" {
		cfg.Providers.AnthropicURL = v
	}
	if v := os.Getenv("SENTIMETER_GOOGLE_URL"); v != "" {
		cfg.Providers.GoogleURL = v
	}
	if v := os.Getenv("SENTIMETER_MODEL"); v != "" {
		cfg.Analysis.DefaultModel = v
	}
	if v := os.Getenv("SENTIMETER_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Analysis.RequestTimeout = d
		}
	}
	if v := os.Getenv("SENTIMETER_VALIDATE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Analysis.ValidateTimeout = d
		}
	}
	if v := os.Getenv("SENTIMETER_MAX_WORDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.MaxWords = n
		}
	}
	if v := os.Getenv("SENTIMETER_MAX_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.MaxChars = n
		}
	}
	if v := os.Getenv("SENTIMETER_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("PORT"); v != "" && os.Getenv("SENTIMETER_HTTP_ADDR") == "" {
		cfg.HTTP.Addr = ":" + v
	}
	if v := os.Getenv("SENTIMETER_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.HTTP.RateLimit = f
		}
	}
	if v := os.Getenv("SENTIMETER_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateBurst = n
		}
	}
	if v := os.Getenv("SENTIMETER_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.SessionTTL = d
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}
