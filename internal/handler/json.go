package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/notegate/internal/domain"
)

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

// writeError sends a JSON error response. code is a stable machine-readable
// reason; message is for humans.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}

// writeDomainError maps the domain error taxonomy onto HTTP responses so
// every handler surfaces the same code for the same refusal. Unknown errors
// are logged and collapsed to a 500.
func writeDomainError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "conflict", "An account with that email already exists.")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, "invalid_input", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid credentials.")
	case errors.Is(err, domain.ErrEmailNotVerified):
		writeError(w, http.StatusForbidden, "email_not_verified", "Email not verified. Please check your inbox.")
	case errors.Is(err, domain.ErrPendingApproval):
		writeError(w, http.StatusForbidden, "pending_approval", "Account is pending administrator approval.")
	case errors.Is(err, domain.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, "invalid_token", "Invalid or expired token.")
	case errors.Is(err, domain.ErrNotOwner):
		writeError(w, http.StatusForbidden, "not_owner", "You do not own this resource.")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Not found.")
	default:
		slog.Error(logMsg, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "An unexpected error occurred. Please try again.")
	}
}

// readJSON decodes the request body into the given destination.
func readJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
