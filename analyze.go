package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kamilpajak/sentimeter/internal/app"
	"github.com/kamilpajak/sentimeter/internal/llm"
	"github.com/kamilpajak/sentimeter/internal/sentiment"
)

var (
	analyzeModel   string
	analyzeFile    string
	analyzeExample string
	verbose        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Analyze the sentiment of a text",
	Long: `Analyze the sentiment of a text with a hosted language model.

The text is taken from the arguments, --file, --example, or stdin.

Examples:
  sentimeter analyze "The delivery was late and the box was damaged."
  sentimeter analyze --file review.txt --model claude-haiku-4-5
  sentimeter analyze --example mixed --json
  cat review.txt | sentimeter analyze -m gpt-5`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeModel, "model", "m", "", "Model ID (see 'sentimeter models')")
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "Read text from file")
	analyzeCmd.Flags().StringVar(&analyzeExample, "example", "", "Use a built-in example (positive, negative, neutral, mixed)")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output result as JSON")
	analyzeCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show progress of each step")
	analyzeCmd.Flags().StringVar(&apiKeyFlag, "api-key", "", "API key (overrides environment)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	model := analyzeModel
	if model == "" {
		model = cfg.Analysis.DefaultModel
	}
	desc, err := llm.Describe(model)
	if err != nil {
		return err
	}

	text, err := readInput(args, os.Stdin)
	if err != nil {
		return err
	}

	key, err := resolveKey(desc.Provider)
	if err != nil {
		return err
	}

	logger := cliLogger(os.Stderr, cfg)
	var opts []sentiment.Option
	if verbose {
		opts = append(opts, sentiment.WithProgress(&sentiment.TextEmitter{W: os.Stderr}))
	}
	svc := app.New(cfg, nil, logger, opts...)

	stopSpin := startSpinner(os.Stderr, "Validating API key...")
	cred, err := svc.Validator.Validate(cmd.Context(), key)
	stopSpin()
	if err != nil {
		return err
	}
	if cred.RateLimited() {
		printWarning(os.Stderr, "Key is valid, but you are rate-limited right now.")
	}

	stopSpin = startSpinner(os.Stderr, "Analyzing with "+desc.Label+"...")
	start := time.Now()
	result, err := svc.Analyzer.Analyze(cmd.Context(), cred, text, desc.ID)
	stopSpin()
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(os.Stderr, os.Stdout, result)
	printFooter(os.Stderr, result, time.Since(start))
	return nil
}

// readInput picks the text from --example, --file, the arguments or stdin,
// in that order.
func readInput(args []string, stdin *os.File) (string, error) {
	switch {
	case analyzeExample != "":
		ex, ok := sentiment.ExampleFor(analyzeExample)
		if !ok {
			return "", fmt.Errorf("unknown example %q (want positive, negative, neutral or mixed)", analyzeExample)
		}
		return ex.Text, nil
	case analyzeFile != "":
		data, err := os.ReadFile(analyzeFile)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	}

	if stdin == nil || isatty.IsTerminal(stdin.Fd()) {
		return "", fmt.Errorf("no text given: pass it as an argument, with --file, --example, or on stdin")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// startSpinner shows a spinner on w while it is a terminal. The returned
// function stops it.
func startSpinner(w *os.File, suffix string) func() {
	if verbose || !isatty.IsTerminal(w.Fd()) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + suffix
	s.Start()
	return s.Stop
}
