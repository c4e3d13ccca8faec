package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"janus-llm/janus/pkg/config"
	"janus-llm/janus/pkg/decisionlog"
	"janus-llm/janus/pkg/dispatch"
	"janus-llm/janus/pkg/processing/tokens"
	"janus-llm/janus/pkg/providers"
	"janus-llm/janus/pkg/routing"
	"janus-llm/janus/pkg/server"
	"janus-llm/janus/pkg/taxonomy"
	"janus-llm/janus/pkg/telemetry/logging"
	"janus-llm/janus/pkg/telemetry/metrics"
)

var runFlags struct {
	logLevel string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Janus proxy server",
	Long: `Start the Janus proxy server with the specified configuration.

The server listens on the configured address, resolves each chat completion
request to a provider chain, and walks the chain until a target answers.

Examples:
  # Start with default config
  janus run

  # Start with custom config
  janus run --config /etc/janus/config.yaml

  # Override log level
  janus run --log-level debug`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := logging.Setup(&cfg.Telemetry.Logging, nil)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Taxonomy compiles fail-closed: a malformed rule set refuses to start.
	var index routing.PatternIndex
	if cfg.Taxonomy.Path != "" {
		ix, err := taxonomy.CompileDir(cfg.Taxonomy.Path)
		if err != nil {
			return fmt.Errorf("compile taxonomy: %w", err)
		}
		index = ix
		logger.Info("taxonomy compiled",
			"path", cfg.Taxonomy.Path,
			"rules", ix.RuleCount(),
			"phrases", ix.PhraseCount(),
		)
	}

	snapshot, err := routing.BuildSnapshot(&cfg.Router, index)
	if err != nil {
		return fmt.Errorf("build routing snapshot: %w", err)
	}

	sessions := routing.NewSessionCache(cfg.Router.SessionTTL, cfg.Router.SessionMaxEntries)
	defer sessions.Close()

	resolver := routing.NewResolver(snapshot, sessions, logger)
	health := providers.NewHealthTracker()
	registry := dispatch.NewRegistry(cfg.Providers, logger)

	providerTimeouts := make(map[string]time.Duration, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if p.Timeout > 0 {
			providerTimeouts[p.Name] = p.Timeout
		}
	}
	executor := routing.NewExecutor(registry, health, cfg.Proxy.TargetTimeout, providerTimeouts, logger)

	var collector *metrics.Collector
	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		metricsHandler = collector.Handler()
	}

	var recorder *decisionlog.Recorder
	if cfg.DecisionLog.Enabled {
		store, err := decisionlog.OpenStore(decisionlog.DefaultStoreConfig(cfg.DecisionLog.Path))
		if err != nil {
			return fmt.Errorf("open decision log: %w", err)
		}
		defer store.Close()

		recorder = decisionlog.NewRecorder(store, cfg.DecisionLog.Buffer)
		defer recorder.Close()

		pruner := decisionlog.NewPruner(store, cfg.DecisionLog.RetentionDays, cfg.DecisionLog.PruneSchedule)
		if err := pruner.Start(ctx); err != nil {
			logger.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer pruner.Stop()
		}
	}

	if cfg.Taxonomy.Path != "" && cfg.Taxonomy.Watch {
		if err := startTaxonomyWatcher(ctx, cfg, resolver, logger); err != nil {
			return err
		}
	}

	estimator := tokens.NewEstimator(&cfg.Tokens)
	chat := server.NewChatHandler(resolver, executor, estimator, health, collector, recorder, logger)
	healthHandler := server.NewHealthHandler(health)
	srv := server.NewServer(&cfg.Proxy, chat, healthHandler, metricsHandler, logger)

	return srv.Start(ctx)
}

// startTaxonomyWatcher recompiles the taxonomy on file changes and swaps the
// routing snapshot. A failed recompile keeps the previous snapshot serving.
func startTaxonomyWatcher(ctx context.Context, cfg *config.Config, resolver *routing.Resolver, logger *slog.Logger) error {
	watcher, err := taxonomy.NewWatcher(cfg.Taxonomy.Path, cfg.Taxonomy.DebounceInterval, logger)
	if err != nil {
		return fmt.Errorf("start taxonomy watcher: %w", err)
	}

	reload := func() error {
		index, err := taxonomy.CompileDir(cfg.Taxonomy.Path)
		if err != nil {
			return fmt.Errorf("recompile taxonomy: %w", err)
		}
		snapshot, err := routing.BuildSnapshot(&cfg.Router, index)
		if err != nil {
			return fmt.Errorf("rebuild routing snapshot: %w", err)
		}
		resolver.Swap(snapshot)
		logger.Info("taxonomy reloaded",
			"rules", index.RuleCount(),
			"phrases", index.PhraseCount(),
		)
		return nil
	}

	go func() {
		if err := watcher.Watch(ctx, reload); err != nil && ctx.Err() == nil {
			logger.Error("taxonomy watcher stopped", "error", err)
		}
	}()

	return nil
}
