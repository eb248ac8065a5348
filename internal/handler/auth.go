package handler

import (
	"net/http"

	"github.com/msomdec/notegate/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieSecure: cookieSecure}
}

// HandleRegister processes a JSON registration request. The new account is
// UNVERIFIED and receives a verification email; no token is issued.
// POST /api/auth/register
// Request:  {"email":"...","displayName":"...","password":"...","confirmPassword":"..."}
// Response: 201 {"user": {...}}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email           string `json:"email"`
		DisplayName     string `json:"displayName"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid request body.")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.DisplayName, req.Password, req.ConfirmPassword)
	if err != nil {
		writeDomainError(w, err, "register user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":    toUserDTO(user),
		"message": "Registration successful. Please check your inbox to verify your email address.",
	})
}

// HandleLogin processes a JSON login request. Both halves of the double lock
// are applied: an UNVERIFIED account gets email_not_verified, a PENDING one
// gets pending_approval, and only an ACTIVE account receives a token.
// POST /api/auth/login
// Request:  {"email":"...","password":"..."}
// Response: {"user": {...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid request body.")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err, "login user")
		return
	}

	h.setAuthCookie(w, token)

	userID, _ := h.auth.ValidateToken(token)
	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err, "get user after login")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleVerify consumes an email verification token.
// GET /api/auth/verify?token=...
// Response: {"user": {...}, "message": "..."}
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "invalid_token", "Missing verification token.")
		return
	}

	user, err := h.auth.VerifyEmail(r.Context(), token)
	if err != nil {
		writeDomainError(w, err, "verify email")
		return
	}

	// Verification never issues an access token; the account is PENDING
	// until an administrator approves it.
	writeJSON(w, http.StatusOK, map[string]any{
		"user":    toUserDTO(user),
		"message": "Email verified successfully. Your account is now awaiting administrator approval.",
	})
}

// HandleLogout clears the auth cookie.
// POST /api/auth/logout
// Response: 204 No Content
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the currently authenticated user.
// GET /api/auth/me
// Response: {"user": {...}} or 401
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Not authenticated.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 24 hours
	})
}
