package sentiment

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kamilpajak/sentimeter/internal/llm"
	"github.com/kamilpajak/sentimeter/pkg/models"
)

// Progress event types.
const (
	EventRequest = "request"
	EventParse   = "parse"
	EventDone    = "done"
	EventError   = "error"
)

// ProgressEvent represents a single progress update during analysis.
type ProgressEvent struct {
	Type    string                 `json:"type"`
	Model   string                 `json:"model,omitempty"`
	Message string                 `json:"message,omitempty"`
	Kind    llm.Kind               `json:"kind,omitempty"`
	Result  *models.AnalysisResult `json:"result,omitempty"`
}

// ProgressEmitter receives progress events during analysis.
type ProgressEmitter interface {
	Emit(event ProgressEvent)
}

type progressKey struct{}

// ContextWithProgress returns a context whose analyses also report to e, in
// addition to any emitter configured on the Analyzer.
func ContextWithProgress(ctx context.Context, e ProgressEmitter) context.Context {
	return context.WithValue(ctx, progressKey{}, e)
}

func progressFrom(ctx context.Context) ProgressEmitter {
	e, _ := ctx.Value(progressKey{}).(ProgressEmitter)
	return e
}

// TextEmitter formats progress events as human-readable text for CLI output.
type TextEmitter struct {
	W io.Writer
}

// Emit writes a formatted progress line to the underlying writer.
func (e *TextEmitter) Emit(ev ProgressEvent) {
	switch ev.Type {
	case EventRequest, EventParse:
		fmt.Fprintf(e.W, "[%s] %s\n", ev.Model, ev.Message)
	case EventDone:
		if ev.Result != nil {
			fmt.Fprintf(e.W, "[%s] done (%s)\n", ev.Model, formatTokens(ev.Result.InputTokens, ev.Result.OutputTokens))
		}
	case EventError:
		fmt.Fprintf(e.W, "Error: %s\n", ev.Message)
	}
}

// EmitterFunc adapts a function to ProgressEmitter.
type EmitterFunc func(ProgressEvent)

// Emit calls f(ev).
func (f EmitterFunc) Emit(ev ProgressEvent) { f(ev) }

func formatTokens(in, out int) string {
	return formatNumber(in) + " in / " + formatNumber(out) + " out tok"
}

// formatNumber inserts thousands separators.
func formatNumber(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var sb strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}
