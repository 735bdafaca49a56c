// Package sentiment turns user text into a validated sentiment verdict by way
// of a hosted language model.
package sentiment

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/kamilpajak/sentimeter/internal/llm"
	"github.com/kamilpajak/sentimeter/pkg/models"
)

// Analyzer runs one analysis per call. It keeps no per-caller state and is
// safe for concurrent use.
type Analyzer struct {
	transports llm.Registry
	limits     Limits
	timeout    time.Duration
	logger     *slog.Logger
	emitter    ProgressEmitter
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLimits overrides the input limits.
func WithLimits(l Limits) Option {
	return func(a *Analyzer) { a.limits = l }
}

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) { a.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithProgress reports each stage of an analysis to e.
func WithProgress(e ProgressEmitter) Option {
	return func(a *Analyzer) { a.emitter = e }
}

// NewAnalyzer creates an Analyzer over the given transports.
func NewAnalyzer(transports llm.Registry, opts ...Option) *Analyzer {
	a := &Analyzer{
		transports: transports,
		limits:     DefaultLimits(),
		timeout:    30 * time.Second,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze classifies text with modelID. At most one remote call is made and
// failures are never retried. Every error is an *llm.Error.
func (a *Analyzer) Analyze(ctx context.Context, cred *Credential, text, modelID string) (*models.AnalysisResult, error) {
	if !cred.usable() {
		return nil, llm.Wrap(llm.KindInvalidCredential, errNoCredential, "")
	}

	desc, err := llm.Describe(modelID)
	if err != nil {
		return nil, err
	}
	if desc.Provider != cred.Provider() {
		return nil, llm.Errorf(llm.KindModelUnavailable, "model %s needs a %s key, have %s", desc.ID, desc.Provider, cred.Provider())
	}

	req, err := BuildRequest(text, desc, a.limits)
	if err != nil {
		return nil, err
	}

	transport, ok := a.transports.Get(desc.Provider)
	if !ok {
		return nil, llm.Errorf(llm.KindModelUnavailable, "no transport for provider %s", desc.Provider)
	}

	log := a.logger.With("model", desc.ID, "provider", desc.Provider, "credential", cred, "words", req.WordCount)
	a.emit(ctx, ProgressEvent{Type: EventRequest, Model: desc.ID, Message: "Sending text to " + desc.Label})

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := transport.Complete(callCtx, cred.key, req.LLM)
	elapsed := time.Since(start)
	if err != nil {
		classified := llm.Classify(err)
		log.Warn("analysis request failed", "kind", classified.Kind, "status", classified.StatusCode,
			"detail", classified.Diagnostic(), "elapsed", elapsed)
		a.emit(ctx, ProgressEvent{Type: EventError, Model: desc.ID, Message: classified.Error(), Kind: classified.Kind})
		return nil, classified
	}

	a.emit(ctx, ProgressEvent{Type: EventParse, Model: desc.ID, Message: "Validating reply"})
	result, err := Parse(reply, desc)
	if err != nil {
		classified := llm.Classify(err)
		log.Warn("model reply rejected", "detail", classified.Diagnostic(), "finish_reason", reply.FinishReason)
		a.emit(ctx, ProgressEvent{Type: EventError, Model: desc.ID, Message: classified.Error(), Kind: classified.Kind})
		return nil, classified
	}

	log.Info("analysis complete", "sentiment", result.Sentiment, "confidence", result.Confidence,
		"input_tokens", result.InputTokens, "output_tokens", result.OutputTokens, "elapsed", elapsed)
	a.emit(ctx, ProgressEvent{Type: EventDone, Model: desc.ID, Result: result})
	return result, nil
}

func (a *Analyzer) emit(ctx context.Context, ev ProgressEvent) {
	if a.emitter != nil {
		a.emitter.Emit(ev)
	}
	if e := progressFrom(ctx); e != nil {
		e.Emit(ev)
	}
}
