// Package models holds the result envelope returned from every tool
// invocation and the response shapes shared by the HTTP surface.
package models

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Kind classifies an invocation failure.
type Kind string

const (
	// KindValidation covers caller input that fails presence, shape, or
	// format checks. The remote API is never reached.
	KindValidation Kind = "validation_error"
	// KindRemoteAPI covers failures reported by the Spool API itself.
	KindRemoteAPI Kind = "remote_api_error"
	// KindUnexpected covers everything else: panics, malformed remote
	// payloads, cancelled waits.
	KindUnexpected Kind = "unexpected_error"
)

// Failure carries the classified error of a failed invocation.
type Failure struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Envelope is the uniform result of one tool invocation. Exactly one of
// Payload or Failure is set. Both transports (MCP and REST) serialize it.
type Envelope struct {
	Payload interface{} `json:"result,omitempty"`
	Failure *Failure    `json:"error,omitempty"`
}

// Success wraps a normalized payload.
func Success(payload interface{}) Envelope {
	return Envelope{Payload: payload}
}

// Fail builds a failure envelope.
func Fail(kind Kind, message string) Envelope {
	return Envelope{Failure: &Failure{Kind: kind, Message: message}}
}

// Failf builds a failure envelope with a formatted message.
func Failf(kind Kind, format string, args ...interface{}) Envelope {
	return Fail(kind, fmt.Sprintf(format, args...))
}

// OK reports whether the invocation succeeded.
func (e Envelope) OK() bool {
	return e.Failure == nil
}

// HTTPStatus maps a failure kind to the REST surface's status code.
func (f *Failure) HTTPStatus() int {
	switch f.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindRemoteAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RenderText flattens the envelope to the text form shared by MCP
// content blocks and the agent transcript: pretty-printed JSON on
// success, a labeled error line otherwise. The second result reports
// whether the text describes a failure.
func (e Envelope) RenderText(toolName string) (string, bool) {
	if e.OK() {
		text, err := json.MarshalIndent(e.Payload, "", "  ")
		if err == nil {
			return string(text), false
		}
		e = Failf(KindUnexpected, "encode result: %v", err)
	}
	if e.Failure.Kind == KindRemoteAPI {
		return "spool api error: " + e.Failure.Message, true
	}
	return "error executing " + toolName + ": " + e.Failure.Message, true
}
