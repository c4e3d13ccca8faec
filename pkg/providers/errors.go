package providers

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for dispatch failures.
var (
	// ErrProviderNotFound indicates a chain referenced a provider that is
	// not registered.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrModelNotServed indicates the provider does not serve the
	// requested model.
	ErrModelNotServed = errors.New("model not served by provider")
)

// TimeoutError represents a dispatch attempt that exceeded its deadline.
// Timeouts are retryable: the next target in the chain is tried.
type TimeoutError struct {
	// Provider is the name of the provider where the timeout occurred
	Provider string

	// Timeout is the deadline that was exceeded
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}

// ConnectionError represents a network-level failure reaching the provider
// (DNS failure, refused connection, reset). Connection errors are retryable.
type ConnectionError struct {
	// Provider is the name of the provider that could not be reached
	Provider string

	// Cause is the underlying network error
	Cause error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("provider %q connection failed: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// ServerError represents a 5xx response from the provider. Server errors are
// retryable.
type ServerError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the HTTP status code (500-599)
	StatusCode int

	// Message is the error message from the provider, if any
	Message string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("provider %q server error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// RateLimitError represents a rate limit exceeded response (HTTP 429).
// Rate limits are retryable: another provider may have capacity.
type RateLimitError struct {
	// Provider is the name of the provider that rate limited the request
	Provider string

	// RetryAfter is the duration to wait before retrying (if provided)
	RetryAfter time.Duration

	// Message is the error message from the provider
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limit exceeded (retry after %s): %s",
			e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q rate limit exceeded: %s", e.Provider, e.Message)
}

// ClientError represents a 4xx response other than 429. The provider
// understood the request and rejected it, so sending the same request to
// another provider would fail the same way. Client errors are not retryable
// and abort the fallback chain.
type ClientError struct {
	// Provider is the name of the provider that rejected the request
	Provider string

	// StatusCode is the HTTP status code (400-499, not 429)
	StatusCode int

	// Message is the error message from the provider
	Message string
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	return fmt.Sprintf("provider %q rejected request (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// ParseError represents a malformed response body from the provider.
// Treated as retryable, like any other provider-side malfunction.
type ParseError struct {
	// Provider is the name of the provider that returned the malformed
	// response
	Provider string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether a dispatch error permits fallback to the next
// target in the chain.
func IsRetryable(err error) bool {
	var (
		timeout   *TimeoutError
		conn      *ConnectionError
		server    *ServerError
		rateLimit *RateLimitError
		parse     *ParseError
	)
	switch {
	case errors.As(err, &timeout),
		errors.As(err, &conn),
		errors.As(err, &server),
		errors.As(err, &rateLimit),
		errors.As(err, &parse):
		return true
	}
	return false
}

// ErrorProvider extracts the provider name from a dispatch error, or ""
// if the error carries none.
func ErrorProvider(err error) string {
	var (
		timeout   *TimeoutError
		conn      *ConnectionError
		server    *ServerError
		rateLimit *RateLimitError
		client    *ClientError
		parse     *ParseError
	)
	switch {
	case errors.As(err, &timeout):
		return timeout.Provider
	case errors.As(err, &conn):
		return conn.Provider
	case errors.As(err, &server):
		return server.Provider
	case errors.As(err, &rateLimit):
		return rateLimit.Provider
	case errors.As(err, &client):
		return client.Provider
	case errors.As(err, &parse):
		return parse.Provider
	}
	return ""
}
