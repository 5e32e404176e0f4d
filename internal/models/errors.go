package models

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

func WriteError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{
		Status:  "error",
		Message: message,
		Code:    code,
	})
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// WriteEnvelope serializes an invocation result: 200 with the envelope on
// success, the failure's mapped status otherwise.
func WriteEnvelope(w http.ResponseWriter, env Envelope) {
	code := http.StatusOK
	if !env.OK() {
		code = env.Failure.HTTPStatus()
	}
	WriteJSON(w, code, env)
}
