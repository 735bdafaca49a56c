package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kamilpajak/sentimeter/internal/config"
	"github.com/kamilpajak/sentimeter/internal/llm"
	"github.com/kamilpajak/sentimeter/internal/logging"
)

// Version info, set with -ldflags at release time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	debug      bool
	jsonOutput bool
	apiKeyFlag string
)

var rootCmd = &cobra.Command{
	Use:   "sentimeter",
	Short: "LLM-powered sentiment analysis",
	Long: `Sentimeter sends text to a hosted language model and returns a validated
sentiment verdict: label, confidence, explanation, key phrases and, for
reasoning models, the reasoning steps.

API keys are read from --api-key or from OPENAI_API_KEY, ANTHROPIC_API_KEY
or GOOGLE_API_KEY and are never stored.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log debug output to stderr")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(examplesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the config file and environment.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// cliLogger logs to stderr at warn level unless --debug is set.
func cliLogger(w io.Writer, cfg config.Config) *slog.Logger {
	level := "warn"
	if debug {
		level = "debug"
	}
	return logging.New(w, level, cfg.Log.Format)
}

// resolveKey returns the key from --api-key or the provider's environment
// variable.
func resolveKey(p llm.Provider) (string, error) {
	if apiKeyFlag != "" {
		return apiKeyFlag, nil
	}
	if v := os.Getenv(llm.EnvVar(p)); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("no API key: pass --api-key or set %s", llm.EnvVar(p))
}

// anyKey returns the first key found in --api-key or the provider
// environment variables.
func anyKey() (string, error) {
	if apiKeyFlag != "" {
		return apiKeyFlag, nil
	}
	for _, p := range []llm.Provider{llm.ProviderOpenAI, llm.ProviderAnthropic, llm.ProviderGoogle} {
		if v := os.Getenv(llm.EnvVar(p)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("no API key: pass --api-key or set OPENAI_API_KEY, ANTHROPIC_API_KEY or GOOGLE_API_KEY")
}
