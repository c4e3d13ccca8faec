package processing

import (
	"encoding/json"
	"strings"
	"testing"

	"janus-llm/janus/pkg/config"
	"janus-llm/janus/pkg/processing/tokens"
	"janus-llm/janus/pkg/providers"
	"janus-llm/janus/pkg/routing"
)

func decodeRequest(t *testing.T, body string) *providers.ChatRequest {
	t.Helper()
	var req providers.ChatRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	return &req
}

func testTokenEstimator() *tokens.Estimator {
	return tokens.NewEstimator(&config.TokensConfig{
		CharsPerToken: map[string]float64{"default": 4.0},
	})
}

func TestParseHint(t *testing.T) {
	cases := []struct {
		name string
		want routing.Hint
	}{
		{"background", routing.HintBackground},
		{"Image", routing.HintImage},
		{"long_context", routing.HintLongContext},
		{"long-context", routing.HintLongContext},
		{" BACKGROUND ", routing.HintBackground},
	}
	for _, tc := range cases {
		got, err := ParseHint(tc.name)
		if err != nil {
			t.Errorf("ParseHint(%q) failed: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseHint(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}

	if _, err := ParseHint("turbo"); err == nil {
		t.Error("expected error for unknown hint")
	}
}

func TestBuildRouteRequest_Basic(t *testing.T) {
	req := decodeRequest(t, `{
		"model": "gpt-5.2",
		"messages": [
			{"role": "system", "content": "be helpful"},
			{"role": "user", "content": "first question"},
			{"role": "assistant", "content": "an answer"},
			{"role": "user", "content": "second question"}
		],
		"user": "user-42"
	}`)

	rr, err := BuildRouteRequest(req, testTokenEstimator())
	if err != nil {
		t.Fatalf("BuildRouteRequest failed: %v", err)
	}

	if rr.Model != "gpt-5.2" {
		t.Errorf("unexpected model: %q", rr.Model)
	}
	// Only user-role content is scanned by the pattern phase.
	if rr.UserText != "first question\nsecond question" {
		t.Errorf("unexpected user text: %q", rr.UserText)
	}
	if rr.SessionID != "user-42" {
		t.Errorf("expected user field as session id, got %q", rr.SessionID)
	}
	if rr.EstimatedTokens == 0 {
		t.Error("expected token estimate")
	}
}

func TestBuildRouteRequest_ControlFieldsConsumed(t *testing.T) {
	req := decodeRequest(t, `{
		"model": "gpt-5.2",
		"messages": [{"role": "user", "content": "hi"}],
		"session_id": "sess-7",
		"max_budget": 0.25,
		"low_latency": true,
		"hints": ["background", "long_context"],
		"top_p": 0.9
	}`)

	rr, err := BuildRouteRequest(req, testTokenEstimator())
	if err != nil {
		t.Fatalf("BuildRouteRequest failed: %v", err)
	}

	if rr.SessionID != "sess-7" {
		t.Errorf("session_id field should win, got %q", rr.SessionID)
	}
	if rr.MaxBudget != 0.25 {
		t.Errorf("unexpected budget: %v", rr.MaxBudget)
	}
	if !rr.LowLatency {
		t.Error("expected low latency flag")
	}
	if !rr.Hints.Background || !rr.Hints.LongContext || rr.Hints.Image {
		t.Errorf("unexpected hints: %+v", rr.Hints)
	}

	// Control fields are stripped; genuine pass-through fields survive.
	for _, key := range []string{"session_id", "max_budget", "low_latency", "hints"} {
		if _, ok := req.Extra[key]; ok {
			t.Errorf("control field %q not stripped", key)
		}
	}
	if _, ok := req.Extra["top_p"]; !ok {
		t.Error("pass-through field lost")
	}
}

func TestBuildRouteRequest_UnknownHintRejected(t *testing.T) {
	req := decodeRequest(t, `{
		"model": "gpt-5.2",
		"messages": [{"role": "user", "content": "hi"}],
		"hints": ["background", "warp_speed"]
	}`)

	if _, err := BuildRouteRequest(req, testTokenEstimator()); err == nil {
		t.Error("expected error for unknown hint")
	}
}

func TestBuildRouteRequest_InvalidControlField(t *testing.T) {
	req := decodeRequest(t, `{
		"model": "gpt-5.2",
		"messages": [{"role": "user", "content": "hi"}],
		"max_budget": "lots"
	}`)

	if _, err := BuildRouteRequest(req, testTokenEstimator()); err == nil {
		t.Error("expected error for non-numeric budget")
	}
}

func TestBuildRouteRequest_ImageDetectedFromContent(t *testing.T) {
	req := decodeRequest(t, `{
		"model": "gpt-5.2",
		"messages": [{"role": "user", "content": [
			{"type": "text", "text": "what is in this picture"},
			{"type": "image_url", "image_url": {"url": "https://example.com/cat.png"}}
		]}]
	}`)

	rr, err := BuildRouteRequest(req, testTokenEstimator())
	if err != nil {
		t.Fatalf("BuildRouteRequest failed: %v", err)
	}
	if !rr.Hints.Image {
		t.Error("expected image hint from message content")
	}
	if !strings.Contains(rr.UserText, "what is in this picture") {
		t.Errorf("text part missing from user text: %q", rr.UserText)
	}
}
