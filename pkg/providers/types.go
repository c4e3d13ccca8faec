package providers

import "encoding/json"

// Message roles in the OpenAI-compatible wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a single message in a conversation.
//
// Content is kept as raw JSON because the OpenAI wire format allows either a
// plain string or an array of typed content parts (text, image_url). The
// proxy forwards it untouched; Text and HasImage interpret it only as far as
// routing needs.
type Message struct {
	// Role identifies the message sender (system, user, assistant, tool)
	Role string `json:"role"`

	// Content is the message content, either a JSON string or an array of
	// content parts.
	Content json.RawMessage `json:"content,omitempty"`

	// Name is an optional name for the message sender
	Name string `json:"name,omitempty"`

	// ToolCallID is used when role is "tool" to reference which tool call
	// this responds to
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// contentPart is one element of an array-form message content.
type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Text returns the plain-text content of the message. For string content it
// is the string itself; for array content it is the concatenation of the
// text parts. Non-text parts contribute nothing.
func (m Message) Text() string {
	if len(m.Content) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(m.Content, &s); err == nil {
		return s
	}

	var parts []contentPart
	if err := json.Unmarshal(m.Content, &parts); err != nil {
		return ""
	}
	var text string
	for _, p := range parts {
		if p.Type == "text" {
			text += p.Text
		}
	}
	return text
}

// HasImage reports whether the message carries an image content part.
func (m Message) HasImage() bool {
	if len(m.Content) == 0 {
		return false
	}

	var parts []contentPart
	if err := json.Unmarshal(m.Content, &parts); err != nil {
		return false
	}
	for _, p := range parts {
		if p.Type == "image_url" || p.Type == "input_image" {
			return true
		}
	}
	return false
}

// ChatRequest represents an OpenAI-compatible chat completion request.
//
// Fields the proxy does not interpret are preserved in Extra so they survive
// the round trip to the upstream provider unchanged.
type ChatRequest struct {
	// Model is the model identifier as sent by the client. Routing may
	// rewrite it before dispatch.
	Model string `json:"model"`

	// Messages is the conversation history
	Messages []Message `json:"messages"`

	// MaxTokens is the maximum number of tokens to generate
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness
	Temperature *float64 `json:"temperature,omitempty"`

	// Stream indicates whether the client asked for a streaming response
	Stream bool `json:"stream,omitempty"`

	// User is an opaque end-user identifier, also used as the session key
	// when present
	User string `json:"user,omitempty"`

	// Extra holds request fields the proxy does not interpret.
	Extra map[string]json.RawMessage `json:"-"`
}

// chatRequestAlias holds the request keys the proxy interprets. Everything
// else passes through via Extra.
type chatRequestAlias struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
	User        string    `json:"user,omitempty"`
}

var knownRequestKeys = map[string]bool{
	"model":       true,
	"messages":    true,
	"max_tokens":  true,
	"temperature": true,
	"stream":      true,
	"user":        true,
}

// UnmarshalJSON decodes the interpreted fields and collects everything else
// into Extra.
func (r *ChatRequest) UnmarshalJSON(data []byte) error {
	var alias chatRequestAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Model = alias.Model
	r.Messages = alias.Messages
	r.MaxTokens = alias.MaxTokens
	r.Temperature = alias.Temperature
	r.Stream = alias.Stream
	r.User = alias.User
	r.Extra = nil
	for k, v := range raw {
		if knownRequestKeys[k] {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage)
		}
		r.Extra[k] = v
	}
	return nil
}

// MarshalJSON re-serializes the request with the pass-through fields restored.
func (r ChatRequest) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.Extra)+6)
	for k, v := range r.Extra {
		out[k] = v
	}

	alias := chatRequestAlias{
		Model:       r.Model,
		Messages:    r.Messages,
		MaxTokens:   r.MaxTokens,
		Temperature: r.Temperature,
		Stream:      r.Stream,
		User:        r.User,
	}
	known, err := json.Marshal(alias)
	if err != nil {
		return nil, err
	}
	var knownMap map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownMap); err != nil {
		return nil, err
	}
	for k, v := range knownMap {
		out[k] = v
	}

	return json.Marshal(out)
}

// ChatResponse represents an OpenAI-compatible chat completion response.
type ChatResponse struct {
	// ID is the provider-assigned completion identifier
	ID string `json:"id"`

	// Object is the response object type ("chat.completion")
	Object string `json:"object"`

	// Created is the completion creation time as a Unix timestamp
	Created int64 `json:"created"`

	// Model is the model that produced the completion
	Model string `json:"model"`

	// Choices contains the generated completions
	Choices []Choice `json:"choices"`

	// Usage reports token consumption
	Usage TokenUsage `json:"usage"`
}

// Choice is a single generated completion.
type Choice struct {
	// Index is the choice position
	Index int `json:"index"`

	// Message is the generated message
	Message Message `json:"message"`

	// FinishReason explains why generation stopped
	FinishReason string `json:"finish_reason"`
}

// TokenUsage tracks token consumption for a completion.
type TokenUsage struct {
	// PromptTokens is the number of tokens in the prompt
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens in the completion
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the total number of tokens used
	TotalTokens int `json:"total_tokens"`
}
