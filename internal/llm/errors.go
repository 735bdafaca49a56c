package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Kind is the closed set of failure classes surfaced to callers.
type Kind string

const (
	KindInvalidCredentialFormat Kind = "invalid_credential_format"
	KindInvalidCredential       Kind = "invalid_credential"
	KindRateLimited             Kind = "rate_limited"
	KindNetworkFailure          Kind = "network_failure"
	KindModelUnavailable        Kind = "model_unavailable"
	KindInputTooLarge           Kind = "input_too_large"
	KindInvalidInput            Kind = "invalid_input"
	KindMalformedResponse       Kind = "malformed_response"
	KindUnknown                 Kind = "unknown"
)

var messages = map[Kind]string{
	KindInvalidCredentialFormat: "API key format looks incorrect.",
	KindInvalidCredential:       "Authentication failed: the API key is invalid or revoked.",
	KindRateLimited:             "Rate limit reached. Please wait a moment before trying again.",
	KindNetworkFailure:          "Could not reach the model provider. Check your network connection and try again.",
	KindModelUnavailable:        "The selected model is not available. Choose another model.",
	KindInputTooLarge:           "Text is too long. Shorten it to about 2000 words and try again.",
	KindInvalidInput:            "Text is too short. Enter at least 10 characters.",
	KindMalformedResponse:       "The model returned an unexpected response. Try again or choose another model.",
	KindUnknown:                 "Unexpected error while contacting the model provider.",
}

// Message returns the fixed user-facing message for k.
func (k Kind) Message() string {
	if m, ok := messages[k]; ok {
		return m
	}
	return messages[KindUnknown]
}

// Sentinels for errors.Is. Matching is by kind.
var (
	ErrInvalidCredentialFormat = &Error{Kind: KindInvalidCredentialFormat}
	ErrInvalidCredential       = &Error{Kind: KindInvalidCredential}
	ErrRateLimited             = &Error{Kind: KindRateLimited}
	ErrNetworkFailure          = &Error{Kind: KindNetworkFailure}
	ErrModelUnavailable        = &Error{Kind: KindModelUnavailable}
	ErrInputTooLarge           = &Error{Kind: KindInputTooLarge}
	ErrInvalidInput            = &Error{Kind: KindInvalidInput}
	ErrMalformedResponse       = &Error{Kind: KindMalformedResponse}
	ErrUnknown                 = &Error{Kind: KindUnknown}
)

// Error is a classified failure. Error() only ever returns the fixed message
// for the kind; Detail and the wrapped cause are kept for diagnostics.
type Error struct {
	Kind       Kind
	Detail     string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return e.Kind.Message()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a classified error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Diagnostic returns the message followed by the retained detail, for logs.
func (e *Error) Diagnostic() string {
	var parts []string
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + strings.Join(parts, ": ")
}

// Errorf builds a classified error with a formatted detail.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap builds a classified error around cause.
func Wrap(kind Kind, cause error, detail string) *Error {
	return &Error{Kind: kind, Detail: detail, Err: cause}
}

// KindOf returns the kind of err, or KindUnknown when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Classify maps a transport failure onto a Kind. Already-classified errors
// are returned unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return classifyStatus(statusErr)
	}

	if isNetworkError(err) {
		return Wrap(KindNetworkFailure, err, "")
	}

	return Wrap(KindUnknown, err, "")
}

func classifyStatus(se *StatusError) *Error {
	e := &Error{Kind: KindUnknown, StatusCode: se.StatusCode, Err: se}
	body := strings.ToLower(se.Body)

	switch se.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Kind = KindInvalidCredential
	case http.StatusTooManyRequests:
		e.Kind = KindRateLimited
		if se.RetryAfter > 0 {
			e.Detail = fmt.Sprintf("retry after %s", se.RetryAfter)
		}
	case http.StatusNotFound, http.StatusServiceUnavailable, 529:
		e.Kind = KindModelUnavailable
	case http.StatusBadGateway, http.StatusGatewayTimeout, http.StatusRequestTimeout:
		e.Kind = KindNetworkFailure
	case http.StatusBadRequest:
		if mentionsUnknownModel(body) {
			e.Kind = KindModelUnavailable
		}
	}
	return e
}

func mentionsUnknownModel(body string) bool {
	patterns := []string{
		"model_not_found",
		"model not found",
		"invalid model",
		"does not exist",
		"is not found for api version",
		"not supported for generatecontent",
	}
	for _, p := range patterns {
		if strings.Contains(body, p) {
			return true
		}
	}
	return false
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// parseRetryAfter understands the delta-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
