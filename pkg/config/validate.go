package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "router.default").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProxy(&cfg.Proxy)...)
	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateRouter(&cfg.Router, cfg.Providers)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateDecisionLog(&cfg.DecisionLog)...)
	errs = append(errs, validateTokens(&cfg.Tokens)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateProxy validates proxy server configuration.
func validateProxy(cfg *ProxyConfig) []FieldError {
	var errs []FieldError

	if cfg.Host == "" {
		errs = append(errs, FieldError{
			Field:   "proxy.host",
			Message: "host is required",
		})
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "proxy.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		})
	}
	if cfg.RequestTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.request_timeout",
			Message: "request timeout must be positive",
		})
	}
	if cfg.TargetTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.target_timeout",
			Message: "target timeout must be positive",
		})
	}

	return errs
}

// validateProviders validates the provider list.
func validateProviders(providers []ProviderConfig) []FieldError {
	var errs []FieldError

	if len(providers) == 0 {
		errs = append(errs, FieldError{
			Field:   "providers",
			Message: "at least one provider is required",
		})
		return errs
	}

	seen := make(map[string]bool, len(providers))
	for i, p := range providers {
		field := fmt.Sprintf("providers[%d]", i)

		if p.Name == "" {
			errs = append(errs, FieldError{
				Field:   field + ".name",
				Message: "provider name is required",
			})
			continue
		}
		if seen[p.Name] {
			errs = append(errs, FieldError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate provider name %q", p.Name),
			})
		}
		seen[p.Name] = true

		if p.BaseURL == "" {
			errs = append(errs, FieldError{
				Field:   field + ".base_url",
				Message: "base URL is required",
			})
		} else if u, err := url.Parse(p.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   field + ".base_url",
				Message: fmt.Sprintf("invalid base URL %q", p.BaseURL),
			})
		}
		if p.Timeout < 0 {
			errs = append(errs, FieldError{
				Field:   field + ".timeout",
				Message: "timeout must be positive",
			})
		}
	}

	return errs
}

// validateRouter validates routing configuration. Every configured chain
// expression must parse and may only reference configured providers.
func validateRouter(cfg *RouterConfig, providers []ProviderConfig) []FieldError {
	var errs []FieldError

	known := make(map[string]bool, len(providers))
	for _, p := range providers {
		known[p.Name] = true
	}

	if cfg.Default == "" {
		errs = append(errs, FieldError{
			Field:   "router.default",
			Message: "default chain is required",
		})
	}

	chains := []struct {
		field string
		expr  string
	}{
		{"router.default", cfg.Default},
		{"router.background", cfg.Background},
		{"router.image", cfg.Image},
		{"router.long_context", cfg.LongContext},
		{"router.cost_optimized", cfg.CostOptimized},
		{"router.low_latency", cfg.LowLatency},
	}
	for _, c := range chains {
		if c.expr == "" {
			continue
		}
		errs = append(errs, validateChainExpr(c.field, c.expr, known)...)
	}
	for model, expr := range cfg.ModelMappings {
		field := fmt.Sprintf("router.model_mappings[%q]", model)
		if model == "" {
			errs = append(errs, FieldError{
				Field:   field,
				Message: "mapped model name must not be empty",
			})
		}
		errs = append(errs, validateChainExpr(field, expr, known)...)
	}

	if cfg.LongContextThreshold < 0 {
		errs = append(errs, FieldError{
			Field:   "router.long_context_threshold",
			Message: "threshold must be non-negative",
		})
	}
	if cfg.CostTokenThreshold < 0 {
		errs = append(errs, FieldError{
			Field:   "router.cost_token_threshold",
			Message: "threshold must be non-negative",
		})
	}
	if cfg.SessionTTL < 0 {
		errs = append(errs, FieldError{
			Field:   "router.session_ttl",
			Message: "session TTL must be positive",
		})
	}
	if cfg.SessionMaxEntries < 0 {
		errs = append(errs, FieldError{
			Field:   "router.session_max_entries",
			Message: "session cache size must be non-negative",
		})
	}

	return errs
}

// validateChainExpr checks a chain expression against the wire format:
// "provider,model" segments joined by "|", each referencing a configured
// provider.
func validateChainExpr(field, expr string, known map[string]bool) []FieldError {
	var errs []FieldError

	for _, segment := range strings.Split(expr, "|") {
		provider, model, ok := strings.Cut(segment, ",")
		provider = strings.TrimSpace(provider)
		model = strings.TrimSpace(model)
		if !ok || provider == "" || model == "" {
			errs = append(errs, FieldError{
				Field:   field,
				Message: fmt.Sprintf("malformed chain segment %q, want \"provider,model\"", segment),
			})
			continue
		}
		if !known[provider] {
			errs = append(errs, FieldError{
				Field:   field,
				Message: fmt.Sprintf("chain references unknown provider %q", provider),
			})
		}
	}

	return errs
}

// validateTelemetry validates logging and metrics configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid level %q, want debug, info, warn, or error", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid format %q, want json or text", cfg.Logging.Format),
		})
	}

	return errs
}

// validateDecisionLog validates decision log configuration.
func validateDecisionLog(cfg *DecisionLogConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return nil
	}
	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "decision_log.path",
			Message: "path is required when the decision log is enabled",
		})
	}
	if cfg.Buffer < 1 {
		errs = append(errs, FieldError{
			Field:   "decision_log.buffer",
			Message: "buffer must be at least 1",
		})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "decision_log.retention_days",
			Message: "retention days must be non-negative",
		})
	}

	return errs
}

// validateTokens validates token estimation configuration.
func validateTokens(cfg *TokensConfig) []FieldError {
	var errs []FieldError

	for model, ratio := range cfg.CharsPerToken {
		if ratio <= 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("tokens.chars_per_token[%q]", model),
				Message: fmt.Sprintf("ratio must be positive, got %v", ratio),
			})
		}
	}

	return errs
}
