package handler

import (
	"net/http"

	"github.com/msomdec/notegate/internal/service"
)

// UserHandler handles self-service profile requests.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// HandleUpdateMe updates the caller's display name.
// PATCH /api/users/me
// Request:  {"displayName":"..."}
// Response: {"user": {...}}
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		DisplayName string `json:"displayName"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid request body.")
		return
	}

	updated, err := h.users.UpdateDisplayName(r.Context(), user.ID, req.DisplayName)
	if err != nil {
		writeDomainError(w, err, "update profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": toUserDTO(updated)})
}
