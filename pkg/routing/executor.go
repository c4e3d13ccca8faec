package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"janus-llm/janus/pkg/providers"
)

// Dispatcher maps a target and a request, under a deadline, to either a
// response or a classified dispatch error. Implemented by per-provider HTTP
// clients.
type Dispatcher interface {
	Dispatch(ctx context.Context, target Target, req *providers.ChatRequest) (*providers.ChatResponse, error)
}

// Executor walks a target chain, dispatching to each target in order until
// one succeeds, and feeds outcomes to the health tracker.
//
// Health is updated only for provider faults: retryable failures record a
// failure, successes record a success. Client errors and caller-initiated
// cancellation leave health untouched.
type Executor struct {
	dispatcher Dispatcher
	health     *providers.HealthTracker

	// targetTimeout bounds a single dispatch attempt.
	targetTimeout time.Duration

	// providerTimeouts overrides targetTimeout per provider.
	providerTimeouts map[string]time.Duration

	logger *slog.Logger
}

// NewExecutor creates an executor. health may be nil to disable tracking.
// providerTimeouts may be nil; providers without an override use
// targetTimeout.
func NewExecutor(dispatcher Dispatcher, health *providers.HealthTracker, targetTimeout time.Duration, providerTimeouts map[string]time.Duration, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		dispatcher:       dispatcher,
		health:           health,
		targetTimeout:    targetTimeout,
		providerTimeouts: providerTimeouts,
		logger:           logger,
	}
}

// Execute tries each target in the chain in order. On success it returns the
// response and the outcome immediately; no further targets are tried. On a
// retryable failure it records the failure and advances. On a non-retryable
// failure, or when ctx is cancelled, it aborts without trying further
// targets. A chain exhausted by retryable failures yields
// AllTargetsFailedError.
func (e *Executor) Execute(ctx context.Context, chain TargetChain, req *providers.ChatRequest) (*providers.ChatResponse, *Outcome, error) {
	if len(chain) == 0 {
		return nil, nil, ErrEmptyChain
	}

	start := time.Now()
	attempted := make([]Target, 0, len(chain))
	var lastErr error

	for _, target := range chain {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		attempted = append(attempted, target)

		resp, err := e.dispatchOne(ctx, target, req)
		if err == nil {
			e.recordSuccess(target.Provider)
			outcome := &Outcome{
				Target:    target,
				Attempted: attempted,
				Latency:   time.Since(start),
			}
			e.logger.Info("dispatch succeeded",
				"provider", target.Provider,
				"model", target.Model,
				"attempts", len(attempted),
				"latency", outcome.Latency,
			)
			return resp, outcome, nil
		}

		// The caller went away; the failure says nothing about the
		// provider.
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}

		if !providers.IsRetryable(err) {
			e.logger.Warn("dispatch rejected, aborting chain",
				"provider", target.Provider,
				"model", target.Model,
				"error", err,
			)
			return nil, nil, err
		}

		e.recordFailure(target.Provider, err)
		lastErr = err
		e.logger.Warn("dispatch failed, trying next target",
			"provider", target.Provider,
			"model", target.Model,
			"error", err,
			"remaining", len(chain)-len(attempted),
		)
	}

	e.logger.Error("all targets failed",
		"chain", chain.String(),
		"last_error", lastErr,
	)
	return nil, nil, &AllTargetsFailedError{Attempted: attempted, LastErr: lastErr}
}

// dispatchOne runs a single attempt under the per-target timeout, mapping a
// deadline expiry that the dispatcher did not classify itself into a
// TimeoutError.
func (e *Executor) dispatchOne(ctx context.Context, target Target, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	timeout := e.targetTimeout
	if t, ok := e.providerTimeouts[target.Provider]; ok && t > 0 {
		timeout = t
	}

	attemptCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := e.dispatcher.Dispatch(attemptCtx, target, req)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, &providers.TimeoutError{Provider: target.Provider, Timeout: timeout}
	}
	if err != nil {
		return nil, fmt.Errorf("dispatch to %s: %w", target.String(), err)
	}
	return resp, nil
}

func (e *Executor) recordSuccess(provider string) {
	if e.health != nil {
		e.health.RecordSuccess(provider)
	}
}

func (e *Executor) recordFailure(provider string, err error) {
	if e.health != nil {
		e.health.RecordFailure(provider, err)
	}
}
