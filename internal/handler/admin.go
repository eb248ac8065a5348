package handler

import (
	"net/http"
	"strconv"

	"github.com/msomdec/notegate/internal/service"
)

// AdminHandler handles the administrator surface: listing accounts and
// approving them (PENDING -> ACTIVE, the second half of the double lock).
type AdminHandler struct {
	users *service.UserService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users *service.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

// HandleListUsers returns a page of accounts.
// GET /api/admin/users?page=1&pageSize=10
// Response: {"users": [...], "meta": {"total":N,"page":1,"pageSize":10}}
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 10)

	result, err := h.users.List(r.Context(), page, pageSize)
	if err != nil {
		writeDomainError(w, err, "list users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": toUserDTOs(result.Users),
		"meta": map[string]int{
			"total":    result.Total,
			"page":     result.Page,
			"pageSize": result.PageSize,
		},
	})
}

// HandleApproveUser sets an account ACTIVE.
// POST /api/admin/users/{id}/approve
// Response: {"user": {...}}
func (h *AdminHandler) HandleApproveUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Approve(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err, "approve user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": toUserDTO(user)})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
