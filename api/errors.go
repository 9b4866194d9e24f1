package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MatheSouzaF/horas-extras/auth"
	"github.com/MatheSouzaF/horas-extras/overtime"
)

// Error codes carried in ErrorResponse.Code.
const (
	codeBadRequest   = "bad_request"
	codeValidation   = "validation_error"
	codeUnauthorized = "unauthorized"
	codeNotFound     = "not_found"
	codeConflict     = "conflict"
	codeTooLarge     = "payload_too_large"
	codeUnavailable  = "unavailable"
	codeInternal     = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an ErrorResponse. Details are only exposed for client
// errors.
func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: statusCode(status)}
	if err != nil && status < http.StatusInternalServerError {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return codeBadRequest
	case http.StatusUnauthorized:
		return codeUnauthorized
	case http.StatusNotFound:
		return codeNotFound
	case http.StatusConflict:
		return codeConflict
	case http.StatusRequestEntityTooLarge:
		return codeTooLarge
	case http.StatusServiceUnavailable:
		return codeUnavailable
	default:
		return codeInternal
	}
}

// writeDomainError maps engine, auth and store errors to a status code.
func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	var ve *auth.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: codeValidation, Details: ve.Fields})
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email already registered", err)
	case auth.IsUnauthorized(err):
		writeError(w, http.StatusUnauthorized, message, err)
	case errors.Is(err, auth.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found", err)
	case overtime.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case overtime.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		slog.ErrorContext(r.Context(), message, "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
