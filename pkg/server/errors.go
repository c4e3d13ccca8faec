package server

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is an OpenAI-compatible error envelope. All error conditions
// use it so OpenAI SDKs can parse the failure.
type ErrorResponse struct {
	// Error contains the error details.
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains detailed error information.
type ErrorDetail struct {
	// Message is a human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error.
	Type string `json:"type"`

	// Param is the parameter that caused the error, if applicable.
	Param string `json:"param,omitempty"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`
}

// Error type constants matching the OpenAI API.
const (
	ErrorTypeInvalidRequest    = "invalid_request_error"
	ErrorTypeRateLimitExceeded = "rate_limit_exceeded"
	ErrorTypeServerError       = "server_error"
	ErrorTypeBadGateway        = "bad_gateway"
	ErrorTypeGatewayTimeout    = "gateway_timeout"
)

// Error code constants for common scenarios.
const (
	CodeInvalidJSON         = "invalid_json"
	CodeInvalidValue        = "invalid_value"
	CodeMissingField        = "missing_field"
	CodeProviderError       = "provider_error"
	CodeProviderTimeout     = "provider_timeout"
	CodeProviderUnavailable = "provider_unavailable"
	CodeInternalError       = "internal_error"
)

// writeError writes an error envelope with the given status.
func writeError(w http.ResponseWriter, status int, errType, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errType,
			Code:    code,
		},
	})
}

// writeJSON writes a JSON body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
