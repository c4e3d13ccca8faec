// Package mockllm provides a scriptable mock upstream provider for tests.
// It speaks just enough of the OpenAI chat completions API to exercise
// dispatch, fallback, and error classification end to end.
package mockllm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Response is one scripted upstream reply.
type Response struct {
	// StatusCode is the HTTP status to answer with. 0 means 200.
	StatusCode int

	// Body is the response body. Strings and []byte are written verbatim,
	// anything else is JSON-encoded.
	Body any

	// Delay is slept before answering, to simulate a slow upstream.
	Delay time.Duration

	// Headers are extra response headers.
	Headers map[string]string
}

// Server is a mock upstream provider. Responses are consumed in order; the
// last one repeats once the script runs out.
type Server struct {
	server *httptest.Server

	mu        sync.Mutex
	script    []Response
	requests  int
	lastModel string
}

// NewServer starts a mock upstream answering the given script.
func NewServer(script ...Response) *Server {
	s := &Server{script: script}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL returns the mock upstream's base URL.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the mock upstream down.
func (s *Server) Close() {
	s.server.Close()
}

// Requests returns how many requests the upstream has received.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// LastModel returns the model field of the most recent request body.
func (s *Server) LastModel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastModel
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests++
	var resp Response
	if len(s.script) > 0 {
		resp = s.script[0]
		if len(s.script) > 1 {
			s.script = s.script[1:]
		}
	}

	var body struct {
		Model string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
		s.lastModel = body.Model
	}
	s.mu.Unlock()

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	switch v := resp.Body.(type) {
	case nil:
		w.WriteHeader(status)
	case string:
		w.WriteHeader(status)
		_, _ = w.Write([]byte(v))
	case []byte:
		w.WriteHeader(status)
		_, _ = w.Write(v)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Completion builds a well-formed chat completion body answering with the
// given text.
func Completion(model, text string) map[string]any {
	return map[string]any{
		"id":      "cmpl-mock",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]any{{
			"index": 0,
			"message": map[string]any{
				"role":    "assistant",
				"content": text,
			},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{
			"prompt_tokens":     10,
			"completion_tokens": 5,
			"total_tokens":      15,
		},
	}
}

// APIError builds an OpenAI-style error body.
func APIError(message, errType string) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    errType,
		},
	}
}
