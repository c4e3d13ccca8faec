// Package server provides the HTTP surface of the proxy: the
// OpenAI-compatible chat completions endpoint, provider health reporting,
// and the metrics endpoint.
package server
