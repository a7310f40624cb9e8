package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"mealbills/internal/core"
	applog "mealbills/internal/log"
	"mealbills/internal/services"
)

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response", applog.FieldError, err)
	}
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, services.ErrExportQueueUnavailable) {
		return http.StatusServiceUnavailable
	}
	switch core.KindOf(err) {
	case core.KindValidation, core.KindConflict:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": msg}. Unexpected errors show fallback
// and are logged with their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := statusFor(err)
	msg := core.Message(err, fallback)
	switch {
	case status == http.StatusServiceUnavailable:
		msg = "Export queue is not configured"
	case status >= http.StatusInternalServerError:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), fallback,
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeInternal,
			applog.FieldPath, r.URL.Path)
	}
	writeJSON(w, r, status, errorBody{Error: msg})
}

func writeMessage(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(w, r, http.StatusOK, messageBody{Message: msg})
}
