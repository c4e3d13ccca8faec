package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"janus-llm/janus/pkg/config"
	"janus-llm/janus/pkg/providers"
)

func TestCollector_Exposition(t *testing.T) {
	c := NewCollector(&config.MetricsConfig{Namespace: "janus"}, prometheus.NewRegistry())

	c.RecordDecision("pattern(think_routing)")
	c.RecordDispatch("groq", "llama-3.3-70b-versatile", 0.42, 2)
	c.RecordDispatchError("deepseek", &providers.ServerError{Provider: "deepseek", StatusCode: 503})
	c.SetProviderHealth("deepseek", providers.Degraded)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		"janus_routing_decisions_total",
		"janus_dispatch_requests_total",
		"janus_dispatch_errors_total",
		"janus_dispatch_latency_seconds",
		"janus_fallback_attempts",
		"janus_provider_health",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
	if !strings.Contains(body, `error_type="server_error"`) {
		t.Error("error type label missing")
	}
	if !strings.Contains(body, `janus_provider_health{provider="deepseek"} 1`) {
		t.Error("health gauge should report degraded as 1")
	}
}

func TestErrorType(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&providers.TimeoutError{}, "timeout"},
		{&providers.ConnectionError{Cause: errors.New("x")}, "connection"},
		{&providers.ServerError{StatusCode: 500}, "server_error"},
		{&providers.RateLimitError{}, "rate_limit"},
		{&providers.ClientError{StatusCode: 400}, "client_error"},
		{&providers.ParseError{Cause: errors.New("x")}, "parse_error"},
		{errors.New("plain"), "other"},
	}
	for _, tc := range cases {
		if got := ErrorType(tc.err); got != tc.want {
			t.Errorf("ErrorType(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
