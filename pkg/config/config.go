package config

import "time"

// Config is the root configuration structure for Janus.
type Config struct {
	// Proxy contains HTTP server configuration.
	Proxy ProxyConfig `yaml:"proxy"`

	// Router contains routing engine configuration.
	Router RouterConfig `yaml:"router"`

	// Providers lists the upstream LLM providers.
	Providers []ProviderConfig `yaml:"providers"`

	// Taxonomy contains routing taxonomy configuration.
	Taxonomy TaxonomyConfig `yaml:"taxonomy"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// DecisionLog contains routing decision persistence configuration.
	DecisionLog DecisionLogConfig `yaml:"decision_log"`

	// Tokens contains token estimation configuration.
	Tokens TokensConfig `yaml:"tokens"`
}

// ProxyConfig contains configuration for the HTTP proxy server.
type ProxyConfig struct {
	// Host is the listen address (e.g., "127.0.0.1" or "0.0.0.0").
	Host string `yaml:"host"`

	// Port is the listen port.
	Port int `yaml:"port"`

	// RequestTimeout bounds an entire inbound request, across all
	// fallback attempts.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// TargetTimeout bounds a single dispatch attempt to one target.
	// A target that exceeds it is treated as a retryable timeout and the
	// next target in the chain is tried.
	TargetTimeout time.Duration `yaml:"target_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RouterConfig contains configuration for the routing decision engine.
//
// All chain fields use the chain expression syntax: "provider,model"
// segments joined by "|". Default is required; scenario chains are optional
// and their phases are skipped when unset.
type RouterConfig struct {
	// Default is the chain used when no earlier phase produces one.
	Default string `yaml:"default"`

	// Background is the chain for background-priority requests.
	Background string `yaml:"background"`

	// Image is the chain for requests carrying image content.
	Image string `yaml:"image"`

	// LongContext is the chain for requests above LongContextThreshold
	// or carrying an explicit long-context hint.
	LongContext string `yaml:"long_context"`

	// CostOptimized is the chain substituted when a budget constraint is
	// present or the request is large enough to make Default uneconomical.
	CostOptimized string `yaml:"cost_optimized"`

	// LowLatency is the chain substituted when the client asks for the
	// fastest response.
	LowLatency string `yaml:"low_latency"`

	// LongContextThreshold is the estimated token count at which
	// long-context routing triggers automatically.
	LongContextThreshold int `yaml:"long_context_threshold"`

	// CostTokenThreshold is the estimated token count at which the
	// default chain is considered uneconomical. 0 disables the
	// token-count trigger (budget hints still apply).
	CostTokenThreshold int `yaml:"cost_token_threshold"`

	// SessionTTL is the retention window for session-pinned decisions.
	SessionTTL time.Duration `yaml:"session_ttl"`

	// SessionMaxEntries caps the session pin cache (LRU beyond it).
	SessionMaxEntries int `yaml:"session_max_entries"`

	// ModelMappings maps raw client model values to chain expressions.
	// A mapped model resolves exactly like explicit chain syntax.
	ModelMappings map[string]string `yaml:"model_mappings"`
}

// ProviderConfig describes a single upstream provider.
type ProviderConfig struct {
	// Name is the provider identifier used in chain expressions
	// (e.g., "groq", "deepseek", "openrouter").
	Name string `yaml:"name"`

	// BaseURL is the provider's OpenAI-compatible API base URL.
	BaseURL string `yaml:"base_url"`

	// APIKey is the authentication key.
	APIKey string `yaml:"api_key"`

	// Models lists the models this provider serves. "*" accepts any
	// model; entries may use a single "*" glob (e.g., "llama-3.3-*").
	Models []string `yaml:"models"`

	// Timeout overrides the global target timeout for this provider.
	Timeout time.Duration `yaml:"timeout"`
}

// TaxonomyConfig contains configuration for the routing taxonomy.
type TaxonomyConfig struct {
	// Path is the directory holding rule source files.
	Path string `yaml:"path"`

	// Watch enables fsnotify-driven recompilation when rule sources
	// change on disk.
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a reload after file
	// changes are detected.
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// TelemetryConfig contains logging and metrics configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json" or "text").
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled enables the /metrics endpoint and metric collection.
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	Namespace string `yaml:"namespace"`
}

// DecisionLogConfig contains routing decision persistence configuration.
type DecisionLogConfig struct {
	// Enabled enables decision recording.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	Path string `yaml:"path"`

	// Buffer is the async writer channel capacity.
	Buffer int `yaml:"buffer"`

	// RetentionDays is how long records are kept. 0 disables pruning.
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for scheduled pruning
	// (e.g., "0 3 * * *" for daily at 3 AM). Empty disables the
	// scheduler.
	PruneSchedule string `yaml:"prune_schedule"`
}

// TokensConfig contains token estimation configuration.
type TokensConfig struct {
	// CharsPerToken maps model name prefixes to characters-per-token
	// ratios. The "default" key is the fallback ratio.
	CharsPerToken map[string]float64 `yaml:"chars_per_token"`
}
