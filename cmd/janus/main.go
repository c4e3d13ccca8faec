// Janus is a routing proxy for LLM API traffic.
//
// It exposes an OpenAI-compatible chat completions endpoint and decides, per
// request, which provider and model should serve it:
//   - Explicit provider chains and model mappings
//   - Content-based routing from a markdown taxonomy
//   - Session affinity, cost, latency, and metadata-hint scenarios
//   - Ordered fallback across providers with health tracking
//
// Usage:
//
//	# Start the proxy with the default configuration
//	janus run
//
//	# Start with a custom configuration file
//	janus run --config /path/to/config.yaml
//
//	# Validate configuration and taxonomy without serving
//	janus validate
//
//	# Show version information
//	janus version
package main

func main() {
	Execute()
}
