package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"janus-llm/janus/pkg/decisionlog"
	"janus-llm/janus/pkg/processing"
	"janus-llm/janus/pkg/processing/tokens"
	"janus-llm/janus/pkg/providers"
	"janus-llm/janus/pkg/routing"
	"janus-llm/janus/pkg/telemetry/metrics"
)

// maxBodyBytes caps the request body size.
const maxBodyBytes = 10 << 20

// ChatHandler serves the chat completions endpoint: it routes the request,
// walks the fallback chain, and relays the winning response.
type ChatHandler struct {
	resolver  *routing.Resolver
	executor  *routing.Executor
	estimator *tokens.Estimator
	health    *providers.HealthTracker

	// metrics and recorder are optional; nil disables them.
	metrics  *metrics.Collector
	recorder *decisionlog.Recorder

	logger *slog.Logger
}

// NewChatHandler creates the chat completions handler.
func NewChatHandler(resolver *routing.Resolver, executor *routing.Executor, estimator *tokens.Estimator, health *providers.HealthTracker, collector *metrics.Collector, recorder *decisionlog.Recorder, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		resolver:  resolver,
		executor:  executor,
		estimator: estimator,
		health:    health,
		metrics:   collector,
		recorder:  recorder,
		logger:    logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, ErrorTypeInvalidRequest,
			"Method not allowed. Use POST.", CodeInvalidValue)
		return
	}

	var req providers.ChatRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest,
			"Request body is not valid JSON: "+err.Error(), CodeInvalidJSON)
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest,
			"At least one message is required.", CodeMissingField)
		return
	}

	routeReq, err := processing.BuildRouteRequest(&req, h.estimator)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest,
			err.Error(), CodeInvalidValue)
		return
	}

	decision := h.resolver.Resolve(routeReq)
	if h.metrics != nil {
		h.metrics.RecordDecision(decision.Tag.String())
	}

	resp, outcome, err := h.executor.Execute(r.Context(), decision.Chain, &req)
	if err != nil {
		h.handleDispatchError(r.Context(), w, routeReq, decision, err)
		return
	}

	h.publishOutcome(outcome)
	h.record(&decisionlog.Record{
		RequestID:       RequestID(r.Context()),
		Model:           routeReq.Model,
		Tag:             decision.Tag.String(),
		Chain:           decision.Chain.String(),
		Provider:        outcome.Target.Provider,
		ServedModel:     outcome.Target.Model,
		Attempts:        len(outcome.Attempted),
		LatencyMS:       outcome.Latency.Milliseconds(),
		Success:         true,
		EstimatedTokens: routeReq.EstimatedTokens,
		SessionID:       routeReq.SessionID,
	})

	writeJSON(w, http.StatusOK, resp)
}

// handleDispatchError maps an execution failure to a client-facing error
// envelope and records it.
func (h *ChatHandler) handleDispatchError(ctx context.Context, w http.ResponseWriter, routeReq *routing.Request, decision routing.Decision, err error) {
	// The client went away; there is nobody to answer.
	if errors.Is(err, context.Canceled) {
		h.logger.Debug("request cancelled by client",
			"request_id", RequestID(ctx))
		return
	}

	h.record(&decisionlog.Record{
		RequestID:       RequestID(ctx),
		Model:           routeReq.Model,
		Tag:             decision.Tag.String(),
		Chain:           decision.Chain.String(),
		Success:         false,
		ErrorType:       metrics.ErrorType(err),
		ErrorMessage:    err.Error(),
		EstimatedTokens: routeReq.EstimatedTokens,
		SessionID:       routeReq.SessionID,
	})

	var allFailed *routing.AllTargetsFailedError
	var clientErr *providers.ClientError
	var rateLimit *providers.RateLimitError
	switch {
	case errors.As(err, &clientErr):
		// The upstream rejected the request itself; relay the verdict.
		writeError(w, clientErr.StatusCode, ErrorTypeInvalidRequest,
			clientErr.Message, CodeProviderError)
	case errors.As(err, &allFailed):
		if h.metrics != nil {
			h.metrics.RecordDispatchError(
				lastProvider(allFailed.Attempted), allFailed.LastErr)
		}
		writeError(w, http.StatusBadGateway, ErrorTypeBadGateway,
			"All upstream targets failed: "+allFailed.Error(),
			CodeProviderUnavailable)
	case errors.As(err, &rateLimit):
		writeError(w, http.StatusTooManyRequests, ErrorTypeRateLimitExceeded,
			rateLimit.Error(), CodeProviderError)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, ErrorTypeGatewayTimeout,
			"Upstream request timed out.", CodeProviderTimeout)
	default:
		h.logger.Error("unexpected dispatch error",
			"request_id", RequestID(ctx), "error", err)
		writeError(w, http.StatusBadGateway, ErrorTypeBadGateway,
			err.Error(), CodeProviderError)
	}
}

// publishOutcome pushes a successful outcome's metrics and health gauges.
func (h *ChatHandler) publishOutcome(outcome *routing.Outcome) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordDispatch(
		outcome.Target.Provider,
		outcome.Target.Model,
		outcome.Latency.Seconds(),
		len(outcome.Attempted),
	)
	if h.health != nil {
		for _, target := range outcome.Attempted {
			h.metrics.SetProviderHealth(target.Provider, h.health.State(target.Provider))
		}
	}
}

func (h *ChatHandler) record(rec *decisionlog.Record) {
	if h.recorder != nil {
		rec.Timestamp = time.Now().UTC()
		h.recorder.Record(rec)
	}
}

func lastProvider(targets []routing.Target) string {
	if len(targets) == 0 {
		return ""
	}
	return targets[len(targets)-1].Provider
}

// HealthHandler reports process liveness and per-provider health.
type HealthHandler struct {
	health *providers.HealthTracker
}

// NewHealthHandler creates the health endpoint handler.
func NewHealthHandler(health *providers.HealthTracker) *HealthHandler {
	return &HealthHandler{health: health}
}

// healthResponse is the health endpoint body.
type healthResponse struct {
	Status    string           `json:"status"`
	Providers []providerHealth `json:"providers"`
}

type providerHealth struct {
	Provider            string `json:"provider"`
	State               string `json:"state"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	TotalSuccesses      int64  `json:"total_successes"`
	TotalFailures       int64  `json:"total_failures"`
	LastError           string `json:"last_error,omitempty"`
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, ErrorTypeInvalidRequest,
			"Method not allowed. Use GET.", CodeInvalidValue)
		return
	}

	resp := healthResponse{Status: "ok"}
	if h.health != nil {
		for _, ph := range h.health.Snapshot() {
			resp.Providers = append(resp.Providers, providerHealth{
				Provider:            ph.Provider,
				State:               ph.State.String(),
				ConsecutiveFailures: ph.ConsecutiveFailures,
				TotalSuccesses:      ph.TotalSuccesses,
				TotalFailures:       ph.TotalFailures,
				LastError:           ph.LastError,
			})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
