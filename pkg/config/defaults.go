package config

import "time"

// Default values for configuration fields.
const (
	// Proxy defaults
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 3456
	DefaultRequestTimeout  = 120 * time.Second
	DefaultTargetTimeout   = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Router defaults
	DefaultLongContextThreshold = 60000
	DefaultSessionTTL           = 5 * time.Minute
	DefaultSessionMaxEntries    = 10000

	// Taxonomy defaults
	DefaultTaxonomyDebounce = 100 * time.Millisecond

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsNamespace = "janus"

	// Decision log defaults
	DefaultDecisionLogPath      = "data/decisions.db"
	DefaultDecisionLogBuffer    = 1000
	DefaultDecisionLogRetention = 30
	DefaultDecisionLogSchedule  = "0 3 * * *"

	// Token estimation defaults
	DefaultCharsPerToken = 4.0
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Proxy defaults
	if cfg.Proxy.Host == "" {
		cfg.Proxy.Host = DefaultHost
	}
	if cfg.Proxy.Port == 0 {
		cfg.Proxy.Port = DefaultPort
	}
	if cfg.Proxy.RequestTimeout == 0 {
		cfg.Proxy.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Proxy.TargetTimeout == 0 {
		cfg.Proxy.TargetTimeout = DefaultTargetTimeout
	}
	if cfg.Proxy.ShutdownTimeout == 0 {
		cfg.Proxy.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Router defaults
	if cfg.Router.LongContextThreshold == 0 {
		cfg.Router.LongContextThreshold = DefaultLongContextThreshold
	}
	if cfg.Router.SessionTTL == 0 {
		cfg.Router.SessionTTL = DefaultSessionTTL
	}
	if cfg.Router.SessionMaxEntries == 0 {
		cfg.Router.SessionMaxEntries = DefaultSessionMaxEntries
	}

	// Provider defaults, applied per provider. A provider without its own
	// timeout inherits the global target timeout.
	for i := range cfg.Providers {
		if cfg.Providers[i].Timeout == 0 {
			cfg.Providers[i].Timeout = cfg.Proxy.TargetTimeout
		}
		if len(cfg.Providers[i].Models) == 0 {
			cfg.Providers[i].Models = []string{"*"}
		}
	}

	// Taxonomy defaults
	if cfg.Taxonomy.DebounceInterval == 0 {
		cfg.Taxonomy.DebounceInterval = DefaultTaxonomyDebounce
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}

	// Decision log defaults
	if cfg.DecisionLog.Path == "" {
		cfg.DecisionLog.Path = DefaultDecisionLogPath
	}
	if cfg.DecisionLog.Buffer == 0 {
		cfg.DecisionLog.Buffer = DefaultDecisionLogBuffer
	}
	if cfg.DecisionLog.RetentionDays == 0 {
		cfg.DecisionLog.RetentionDays = DefaultDecisionLogRetention
	}
	if cfg.DecisionLog.PruneSchedule == "" {
		cfg.DecisionLog.PruneSchedule = DefaultDecisionLogSchedule
	}

	// Token estimation defaults
	if cfg.Tokens.CharsPerToken == nil {
		cfg.Tokens.CharsPerToken = map[string]float64{
			"default": DefaultCharsPerToken,
		}
	}
	if _, ok := cfg.Tokens.CharsPerToken["default"]; !ok {
		cfg.Tokens.CharsPerToken["default"] = DefaultCharsPerToken
	}
}
