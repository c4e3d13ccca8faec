package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"janus-llm/janus/pkg/config"
	"janus-llm/janus/pkg/providers"
)

// maxErrorBodyBytes bounds how much of an upstream error body is read for
// the error message.
const maxErrorBodyBytes = 4096

// Client is an HTTP client for one OpenAI-compatible provider.
type Client struct {
	name    string
	baseURL string
	apiKey  string
	models  []string
	client  *http.Client
}

// NewClient creates a client from a validated provider configuration.
func NewClient(cfg config.ProviderConfig) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		name:    cfg.Name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		models:  cfg.Models,
		// Per-attempt deadlines come from the caller's context; the
		// client itself imposes none.
		client: &http.Client{Transport: transport},
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.name
}

// ServesModel reports whether the provider serves a model. Entries are exact
// names, "*" for any model, or a single-glob prefix like "llama-3.3-*".
func (c *Client) ServesModel(model string) bool {
	for _, entry := range c.models {
		if entry == "*" || entry == model {
			return true
		}
		if prefix, ok := strings.CutSuffix(entry, "*"); ok && strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// Complete sends a chat completion request for the given model and returns
// the decoded response, classifying failures into the dispatch error
// taxonomy.
func (c *Client) Complete(ctx context.Context, model string, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	if !c.ServesModel(model) {
		// The request asked this provider for a model it does not serve.
		// That is a request fault, so it aborts the chain like any other
		// client error.
		return nil, &providers.ClientError{
			Provider:   c.name,
			StatusCode: 400,
			Message:    fmt.Sprintf("%v: %q", providers.ErrModelNotServed, model),
		}
	}

	// Rewrite the model to the routed target; everything else passes
	// through.
	outbound := *req
	outbound.Model = model
	outbound.Stream = false

	body, err := json.Marshal(&outbound)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, c.classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.classifyStatusError(resp)
	}

	var out providers.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &providers.ParseError{Provider: c.name, Cause: err}
	}
	return &out, nil
}

// classifyTransportError maps a transport-level failure to the error
// taxonomy. Caller cancellation is passed through untouched so the executor
// can tell it apart from provider faults.
func (c *Client) classifyTransportError(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return context.DeadlineExceeded
	}
	return &providers.ConnectionError{Provider: c.name, Cause: err}
}

// classifyStatusError maps a non-2xx response to the error taxonomy.
func (c *Client) classifyStatusError(resp *http.Response) error {
	message := readErrorMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &providers.RateLimitError{
			Provider:   c.name,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    message,
		}
	case resp.StatusCode >= 500:
		return &providers.ServerError{Provider: c.name, StatusCode: resp.StatusCode, Message: message}
	default:
		return &providers.ClientError{Provider: c.name, StatusCode: resp.StatusCode, Message: message}
	}
}

// errorBody is the OpenAI-compatible error envelope.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// readErrorMessage extracts the error message from an upstream error body,
// falling back to the raw body when it is not the standard envelope.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var parsed errorBody
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

// parseRetryAfter parses a Retry-After header given in seconds. Date-form
// values are ignored.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
