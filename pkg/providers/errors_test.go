package providers

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"timeout", &TimeoutError{Provider: "groq", Timeout: 30 * time.Second}, true},
		{"connection", &ConnectionError{Provider: "groq", Cause: errors.New("refused")}, true},
		{"server_500", &ServerError{Provider: "groq", StatusCode: 500}, true},
		{"server_503", &ServerError{Provider: "groq", StatusCode: 503}, true},
		{"rate_limit", &RateLimitError{Provider: "groq"}, true},
		{"parse", &ParseError{Provider: "groq", Cause: errors.New("bad json")}, true},
		{"client_400", &ClientError{Provider: "groq", StatusCode: 400}, false},
		{"client_401", &ClientError{Provider: "groq", StatusCode: 401}, false},
		{"plain", errors.New("something"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.retryable {
				t.Errorf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.retryable)
			}
		})
	}
}

func TestIsRetryable_Wrapped(t *testing.T) {
	err := fmt.Errorf("dispatch failed: %w", &ServerError{Provider: "groq", StatusCode: 502})
	if !IsRetryable(err) {
		t.Error("wrapped server error should be retryable")
	}

	err = fmt.Errorf("dispatch failed: %w", &ClientError{Provider: "groq", StatusCode: 422})
	if IsRetryable(err) {
		t.Error("wrapped client error should not be retryable")
	}
}

func TestErrorProvider(t *testing.T) {
	if got := ErrorProvider(&RateLimitError{Provider: "deepseek"}); got != "deepseek" {
		t.Errorf("expected deepseek, got %q", got)
	}
	if got := ErrorProvider(errors.New("plain")); got != "" {
		t.Errorf("expected empty provider, got %q", got)
	}
}

func TestConnectionError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ConnectionError{Provider: "groq", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to expose cause")
	}
}
