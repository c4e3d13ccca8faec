package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "janus",
	Short: "Janus - multi-provider LLM routing proxy",
	Long: `Janus is a routing proxy for LLM API traffic.

It exposes an OpenAI-compatible chat completions endpoint and decides, per
request, which provider and model should serve it:
  - Explicit provider chains and model mappings
  - Content-based routing from a markdown taxonomy
  - Session affinity, cost, latency, and metadata-hint scenarios
  - Ordered fallback across providers with health tracking`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
}
