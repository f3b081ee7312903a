// Package respond carries the tagged response envelope every API
// operation returns: business-rule failures come back as a failed
// envelope with a 4xx status, internal errors as a generic message so
// clients can tell "your request is invalid" from "try again later".
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Payload any    `json:"payload,omitempty"`
}

func JSON(w http.ResponseWriter, status int, message string, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	env := Envelope{Success: status < 400, Message: message, Payload: payload}

	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, message, nil)
}

// Internal hides unexpected errors behind a generic message; the cause is
// logged, never surfaced.
func Internal(w http.ResponseWriter, err error) {
	slog.Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "something went wrong, please try again later")
}
