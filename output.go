package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/kamilpajak/sentimeter/internal/llm"
	"github.com/kamilpajak/sentimeter/pkg/models"
)

func labelColor(l models.Label) *color.Color {
	switch l {
	case models.LabelPositive:
		return color.New(color.FgGreen, color.Bold)
	case models.LabelNegative:
		return color.New(color.FgRed, color.Bold)
	case models.LabelMixed:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan, color.Bold)
	}
}

// printResult writes the decorations to stderr and the verdict to stdout, so
// piping stdout keeps only the readable result.
func printResult(stderr, stdout io.Writer, r *models.AnalysisResult) {
	dim := color.New(color.FgHiBlack)
	bold := color.New(color.Bold)

	fmt.Fprintln(stderr)
	_, _ = dim.Fprintln(stderr, "  "+strings.Repeat("━", 50))
	printConfidenceBar(stderr, r.ConfidencePercent())
	fmt.Fprintln(stderr)

	_, _ = labelColor(r.Sentiment).Fprintln(stdout, strings.ToUpper(string(r.Sentiment)))
	fmt.Fprintln(stdout, r.Explanation)

	if len(r.KeyPhrases) > 0 {
		fmt.Fprintln(stdout)
		_, _ = bold.Fprintln(stdout, "KEY PHRASES")
		for _, p := range r.KeyPhrases {
			_, _ = dim.Fprint(stdout, "• ")
			fmt.Fprintln(stdout, p)
		}
	}

	if r.HasReasoning() {
		fmt.Fprintln(stdout)
		_, _ = bold.Fprintln(stdout, "REASONING")
		for i, step := range r.Reasoning {
			_, _ = dim.Fprintf(stdout, "%d. ", i+1)
			fmt.Fprintln(stdout, step)
		}
	}
}

func printConfidenceBar(w io.Writer, percent int) {
	const barWidth = 24
	filled := percent * barWidth / 100
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	var barColor *color.Color
	switch {
	case percent >= 80:
		barColor = color.New(color.FgGreen)
	case percent >= 50:
		barColor = color.New(color.FgYellow)
	default:
		barColor = color.New(color.FgRed)
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(w, "  Confidence: %d%% ", percent)
	_, _ = barColor.Fprintln(w, bar)
}

func printFooter(w io.Writer, r *models.AnalysisResult, elapsed time.Duration) {
	dim := color.New(color.FgHiBlack)
	fmt.Fprintln(w)
	_, _ = dim.Fprintf(w, "  %s · %d in / %d out tokens · %s\n",
		r.Model, r.InputTokens, r.OutputTokens, elapsed.Round(100*time.Millisecond))
}

func printWarning(w io.Writer, msg string) {
	_, _ = color.New(color.FgYellow).Fprintln(w, "Warning: "+msg)
}

// printError shows the fixed message for classified failures. The retained
// detail is only shown with --debug.
func printError(w io.Writer, err error) {
	red := color.New(color.FgRed)
	var classified *llm.Error
	if !errors.As(err, &classified) {
		_, _ = red.Fprintln(w, "Error: "+err.Error())
		return
	}
	_, _ = red.Fprintln(w, "Error: "+classified.Error())
	if debug {
		_, _ = color.New(color.FgHiBlack).Fprintln(w, "  "+classified.Diagnostic())
	}
}
