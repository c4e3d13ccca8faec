package tokens

import (
	"encoding/json"
	"strings"
	"testing"

	"janus-llm/janus/pkg/config"
	"janus-llm/janus/pkg/providers"
)

func testEstimator() *Estimator {
	return NewEstimator(&config.TokensConfig{
		CharsPerToken: map[string]float64{
			"default":  4.0,
			"deepseek": 3.5,
		},
	})
}

func TestEstimateText(t *testing.T) {
	e := testEstimator()

	if got := e.EstimateText("", "gpt-5.2"); got != 0 {
		t.Errorf("empty text should be 0 tokens, got %d", got)
	}
	if got := e.EstimateText("hi", "gpt-5.2"); got != 1 {
		t.Errorf("non-empty text is at least 1 token, got %d", got)
	}

	// 400 chars at 4 chars/token.
	text := strings.Repeat("abcd", 100)
	if got := e.EstimateText(text, "gpt-5.2"); got != 100 {
		t.Errorf("expected 100 tokens, got %d", got)
	}

	// deepseek models use their own ratio: 350/3.5 = 100.
	text = strings.Repeat("abcdefg", 50)
	if got := e.EstimateText(text, "deepseek-chat"); got != 100 {
		t.Errorf("expected 100 tokens with deepseek ratio, got %d", got)
	}
}

func TestEstimateMessages(t *testing.T) {
	e := testEstimator()

	if got := e.EstimateMessages(nil, "gpt-5.2"); got != 0 {
		t.Errorf("no messages should be 0 tokens, got %d", got)
	}

	messages := []providers.Message{
		{Role: providers.RoleSystem, Content: json.RawMessage(`"` + strings.Repeat("abcd", 10) + `"`)},
		{Role: providers.RoleUser, Content: json.RawMessage(`"` + strings.Repeat("abcd", 20) + `"`)},
	}

	// 10 + 20 content tokens, 4 overhead per message, 3 for the
	// conversation.
	want := 10 + 20 + 2*4 + 3
	if got := e.EstimateMessages(messages, "gpt-5.2"); got != want {
		t.Errorf("expected %d tokens, got %d", want, got)
	}
}

func TestEstimateMessages_ArrayContent(t *testing.T) {
	e := testEstimator()

	messages := []providers.Message{
		{Role: providers.RoleUser, Content: json.RawMessage(
			`[{"type":"text","text":"` + strings.Repeat("abcd", 10) + `"},{"type":"image_url","image_url":{"url":"https://example.com/x.png"}}]`)},
	}

	// Only the text part counts: 10 tokens plus overhead.
	want := 10 + 4 + 3
	if got := e.EstimateMessages(messages, "gpt-5.2"); got != want {
		t.Errorf("expected %d tokens, got %d", want, got)
	}
}
