// Package processing converts wire requests into the strongly typed view the
// routing engine consumes: concatenated user text, estimated token counts,
// and validated routing hints.
//
// Hints arrive as free-form strings on the wire and are converted to the
// closed routing.Hint set here; unknown hints are rejected at this boundary
// and never reach the resolver.
package processing

import (
	"encoding/json"
	"fmt"
	"strings"

	"janus-llm/janus/pkg/processing/tokens"
	"janus-llm/janus/pkg/providers"
	"janus-llm/janus/pkg/routing"
)

// Routing-control keys read from the request body. They are consumed here
// and stripped before the request is forwarded upstream.
const (
	keyHints      = "hints"
	keySessionID  = "session_id"
	keyMaxBudget  = "max_budget"
	keyLowLatency = "low_latency"
)

// ParseHint converts a wire hint name to the closed hint set. Unknown names
// are an error.
func ParseHint(name string) (routing.Hint, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "background":
		return routing.HintBackground, nil
	case "image":
		return routing.HintImage, nil
	case "long_context", "long-context":
		return routing.HintLongContext, nil
	default:
		return 0, fmt.Errorf("unknown routing hint %q", name)
	}
}

// BuildRouteRequest builds the resolver's request view from a decoded chat
// request, consuming the routing-control fields. The chat request is
// modified in place: control fields are removed from its pass-through set so
// they never reach the upstream provider.
func BuildRouteRequest(req *providers.ChatRequest, estimator *tokens.Estimator) (*routing.Request, error) {
	out := &routing.Request{
		Model:     req.Model,
		UserText:  userText(req.Messages),
		SessionID: req.User,
	}

	if raw, ok := takeExtra(req, keySessionID); ok {
		var sessionID string
		if err := json.Unmarshal(raw, &sessionID); err != nil {
			return nil, fmt.Errorf("invalid session_id: %w", err)
		}
		out.SessionID = sessionID
	}

	if raw, ok := takeExtra(req, keyMaxBudget); ok {
		if err := json.Unmarshal(raw, &out.MaxBudget); err != nil {
			return nil, fmt.Errorf("invalid max_budget: %w", err)
		}
		if out.MaxBudget < 0 {
			return nil, fmt.Errorf("max_budget must be non-negative")
		}
	}

	if raw, ok := takeExtra(req, keyLowLatency); ok {
		if err := json.Unmarshal(raw, &out.LowLatency); err != nil {
			return nil, fmt.Errorf("invalid low_latency: %w", err)
		}
	}

	if raw, ok := takeExtra(req, keyHints); ok {
		var names []string
		if err := json.Unmarshal(raw, &names); err != nil {
			return nil, fmt.Errorf("invalid hints: %w", err)
		}
		for _, name := range names {
			hint, err := ParseHint(name)
			if err != nil {
				return nil, err
			}
			switch hint {
			case routing.HintBackground:
				out.Hints.Background = true
			case routing.HintImage:
				out.Hints.Image = true
			case routing.HintLongContext:
				out.Hints.LongContext = true
			}
		}
	}

	// Image content is detected from the messages themselves; no hint
	// needed.
	for _, msg := range req.Messages {
		if msg.HasImage() {
			out.Hints.Image = true
			break
		}
	}

	if estimator != nil {
		out.EstimatedTokens = estimator.EstimateMessages(req.Messages, req.Model)
	}

	return out, nil
}

// userText concatenates the text of user-role messages in order.
func userText(messages []providers.Message) string {
	var sb strings.Builder
	for _, msg := range messages {
		if msg.Role != providers.RoleUser {
			continue
		}
		text := msg.Text()
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// takeExtra removes and returns a pass-through field.
func takeExtra(req *providers.ChatRequest, key string) (json.RawMessage, bool) {
	raw, ok := req.Extra[key]
	if ok {
		delete(req.Extra, key)
	}
	return raw, ok
}
