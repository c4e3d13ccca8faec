package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"janus-llm/janus/pkg/config"
	"janus-llm/janus/pkg/providers"
	"janus-llm/janus/pkg/routing"
)

// Registry holds one client per configured provider and implements the
// routing.Dispatcher interface by addressing targets to them.
type Registry struct {
	clients map[string]*Client
	logger  *slog.Logger
}

// NewRegistry builds clients for every configured provider.
func NewRegistry(cfgs []config.ProviderConfig, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	clients := make(map[string]*Client, len(cfgs))
	for _, cfg := range cfgs {
		clients[cfg.Name] = NewClient(cfg)
		logger.Debug("provider registered", "provider", cfg.Name, "base_url", cfg.BaseURL)
	}

	return &Registry{clients: clients, logger: logger}
}

// Client returns the client for a provider name.
func (r *Registry) Client(name string) (*Client, bool) {
	c, ok := r.clients[name]
	return c, ok
}

// Providers returns the registered provider names.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}

// Dispatch implements routing.Dispatcher.
func (r *Registry) Dispatch(ctx context.Context, target routing.Target, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	client, ok := r.clients[target.Provider]
	if !ok {
		// Chains are validated against configuration, so this only
		// happens for explicit client-supplied chains naming an
		// unknown provider. The request is at fault, not a provider.
		return nil, &providers.ClientError{
			Provider:   target.Provider,
			StatusCode: 400,
			Message:    fmt.Sprintf("%v: %q", providers.ErrProviderNotFound, target.Provider),
		}
	}
	return client.Complete(ctx, target.Model, req)
}
