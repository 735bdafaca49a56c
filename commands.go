package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kamilpajak/sentimeter/internal/app"
	"github.com/kamilpajak/sentimeter/internal/llm"
	"github.com/kamilpajak/sentimeter/internal/logging"
	"github.com/kamilpajak/sentimeter/internal/sentiment"
	"github.com/kamilpajak/sentimeter/internal/server"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check an API key against its provider",
	Long: `Detect the provider from the key format and make one minimal request
to confirm the key is accepted. The key is never printed; only a short
fingerprint is shown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		key, err := anyKey()
		if err != nil {
			return err
		}

		svc := app.New(cfg, nil, cliLogger(os.Stderr, cfg))
		stop := startSpinner(os.Stderr, "Validating API key...")
		cred, err := svc.Validator.Validate(cmd.Context(), key)
		stop()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		_, _ = color.New(color.FgGreen).Fprint(out, "✓ ")
		fmt.Fprintf(out, "Valid %s key (%s)\n", cred.Provider(), cred.Fingerprint())
		if cred.RateLimited() {
			printWarning(cmd.ErrOrStderr(), "the provider is rate-limiting this key right now.")
		}
		return nil
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the supported models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list := llm.Models()
		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}
		fmt.Fprint(cmd.OutOrStdout(), modelsTable(list))
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func modelsTable(list []llm.ModelDescriptor) string {
	rows := make([][]string, 0, len(list))
	for _, m := range list {
		reasoning := ""
		if m.SupportsReasoning {
			reasoning = "✓"
		}
		def := ""
		if m.ID == llm.DefaultModel {
			def = "*"
		}
		rows = append(rows, []string{m.ID + def, m.Label, string(m.Provider), reasoning, string(m.CostTier)})
	}
	return renderTable(
		[]string{"ID", "Name", "Provider", "Reasoning", "Cost"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignCenter, alignLeft},
	)
}

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "Print the built-in example texts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		bold := color.New(color.Bold)
		for i, ex := range sentiment.Examples() {
			if i > 0 {
				fmt.Fprintln(out)
			}
			_, _ = bold.Fprintln(out, string(ex.Label))
			fmt.Fprintln(out, ex.Text)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the sentiment API. Clients create a session with an API key,
then submit texts for analysis. Keys live only in memory and expire with
the session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}

		level := cfg.Log.Level
		if debug {
			level = "debug"
		}
		logger := logging.New(os.Stderr, level, cfg.Log.Format)

		svc := app.New(cfg, &http.Client{}, logger)
		api := app.NewAPI(cfg, svc, logger)

		srv, err := server.Start(server.Options{
			Addr:          cfg.HTTP.Addr,
			Handler:       api,
			Sweeper:       api,
			SweepInterval: sweepInterval,
			Logger:        logger,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Serving on %s\n", srv.URL())

		return srv.Wait(cmd.Context(), shutdownTimeout)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sentimeter %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	modelsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	validateCmd.Flags().StringVar(&apiKeyFlag, "api-key", "", "API key (overrides environment)")
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
}
