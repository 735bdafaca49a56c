package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_StatusCodes(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   Kind
	}{
		{http.StatusUnauthorized, "invalid api key", KindInvalidCredential},
		{http.StatusForbidden, "forbidden", KindInvalidCredential},
		{http.StatusTooManyRequests, "slow down", KindRateLimited},
		{http.StatusNotFound, "not found", KindModelUnavailable},
		{http.StatusServiceUnavailable, "overloaded", KindModelUnavailable},
		{529, "overloaded_error", KindModelUnavailable},
		{http.StatusBadRequest, `{"error":{"code":"model_not_found"}}`, KindModelUnavailable},
		{http.StatusBadRequest, "max_tokens too large", KindUnknown},
		{http.StatusBadGateway, "bad gateway", KindNetworkFailure},
		{http.StatusGatewayTimeout, "timeout", KindNetworkFailure},
		{http.StatusInternalServerError, "boom", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			err := Classify(&StatusError{StatusCode: tt.status, Body: tt.body})
			require.NotNil(t, err)
			assert.Equal(t, tt.want, err.Kind)
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestClassify_NetworkErrors(t *testing.T) {
	err := Classify(fmt.Errorf("request failed: %w", context.DeadlineExceeded))
	assert.Equal(t, KindNetworkFailure, err.Kind)

	_, dialErr := http.Get("http://127.0.0.1:1")
	require.Error(t, dialErr)
	assert.Equal(t, KindNetworkFailure, Classify(dialErr).Kind)
}

func TestClassify_KeepsClassifiedErrors(t *testing.T) {
	orig := Errorf(KindMalformedResponse, "no choices")
	assert.Same(t, orig, Classify(fmt.Errorf("wrapped: %w", orig)))
}

func TestClassify_Nil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestClassify_PlainErrorIsUnknown(t *testing.T) {
	assert.Equal(t, KindUnknown, Classify(errors.New("weird")).Kind)
}

func TestClassify_RateLimitKeepsRetryAfter(t *testing.T) {
	err := Classify(&StatusError{StatusCode: 429, RetryAfter: 20 * time.Second})
	assert.Contains(t, err.Detail, "20s")
}

func TestError_MessageIsFixed(t *testing.T) {
	err := Wrap(KindInvalidCredential, errors.New("sk-secret leaked in body"), "probe")
	assert.Equal(t, "Authentication failed: the API key is invalid or revoked.", err.Error())
	assert.NotContains(t, err.Error(), "sk-secret")
	assert.Contains(t, err.Diagnostic(), "probe")
}

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("analyze: %w", Errorf(KindRateLimited, "429"))
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.False(t, errors.Is(err, ErrNetworkFailure))
	assert.Equal(t, KindRateLimited, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestKindMessage_EveryKind(t *testing.T) {
	kinds := []Kind{
		KindInvalidCredentialFormat, KindInvalidCredential, KindRateLimited,
		KindNetworkFailure, KindModelUnavailable, KindInputTooLarge,
		KindInvalidInput, KindMalformedResponse, KindUnknown,
	}
	seen := map[string]bool{}
	for _, k := range kinds {
		msg := k.Message()
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "duplicate message for %s", k)
		seen[msg] = true
	}
	assert.Equal(t, KindUnknown.Message(), Kind("bogus").Message())
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 5*time.Second, parseRetryAfter("5"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-3"))
}
