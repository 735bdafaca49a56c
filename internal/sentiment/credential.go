package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kamilpajak/sentimeter/internal/llm"
)

// Credential is an API key that passed validation. The key itself is only
// reachable from this package.
type Credential struct {
	key         string
	provider    llm.Provider
	validatedAt time.Time
	rateLimited bool
}

// Provider returns the provider that issued the key.
func (c *Credential) Provider() llm.Provider {
	return c.provider
}

// ValidatedAt returns when the probe succeeded.
func (c *Credential) ValidatedAt() time.Time {
	return c.validatedAt
}

// RateLimited reports whether the key was accepted while rate-limited.
func (c *Credential) RateLimited() bool {
	return c.rateLimited
}

// Fingerprint returns a short stable identifier that does not reveal the key.
func (c *Credential) Fingerprint() string {
	if c == nil || c.key == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(c.key))
	return hex.EncodeToString(sum[:4])
}

// String redacts the key.
func (c *Credential) String() string {
	if c == nil {
		return "<nil credential>"
	}
	return string(c.provider) + ":" + c.Fingerprint()
}

// LogValue keeps the key out of structured logs.
func (c *Credential) LogValue() slog.Value {
	return slog.StringValue(c.String())
}

func (c *Credential) usable() bool {
	return c != nil && c.key != "" && !c.validatedAt.IsZero()
}

// Validator checks API keys: locally for shape, then with one probe call.
type Validator struct {
	transports llm.Registry
	timeout    time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewValidator creates a validator. A zero timeout means no extra deadline
// beyond the caller's context.
func NewValidator(transports llm.Registry, timeout time.Duration, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Validator{
		transports: transports,
		timeout:    timeout,
		logger:     logger,
		now:        time.Now,
	}
}

// Validate checks rawKey and, if its shape is plausible, probes the provider
// once. A rate-limited probe still proves the key authenticates.
func (v *Validator) Validate(ctx context.Context, rawKey string) (*Credential, error) {
	key := strings.TrimSpace(rawKey)
	provider, err := llm.DetectProvider(key)
	if err != nil {
		return nil, err
	}

	transport, ok := v.transports.Get(provider)
	if !ok {
		return nil, llm.Errorf(llm.KindUnknown, "no transport for provider %s", provider)
	}

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	cred := &Credential{key: key, provider: provider}
	log := v.logger.With("provider", provider, "fingerprint", cred.Fingerprint())

	if err := transport.Probe(ctx, key); err != nil {
		classified := llm.Classify(err)
		if classified.Kind != llm.KindRateLimited {
			log.Warn("key validation failed", "kind", classified.Kind, "detail", classified.Diagnostic())
			return nil, classified
		}
		log.Warn("key is valid but rate-limited")
		cred.rateLimited = true
	}

	cred.validatedAt = v.now()
	log.Debug("key validated")
	return cred, nil
}

// errNoCredential is returned when analysis is attempted without a
// validated key.
var errNoCredential = errors.New("no validated credential")
