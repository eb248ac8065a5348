package handler

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/msomdec/notegate/internal/service"
	"github.com/msomdec/notegate/internal/social"
)

const stateCookieName = "oauth_state"

// SocialHandler handles federated login through an external identity
// provider. A successful callback runs the provider's assertion through
// ResolveSocial and then the same credential decision as password login, so a
// freshly created PENDING account is told to wait for approval instead of
// receiving a token.
type SocialHandler struct {
	auth         *service.AuthService
	provider     social.Provider
	cookieSecure bool
}

// NewSocialHandler creates a SocialHandler for one provider.
func NewSocialHandler(auth *service.AuthService, provider social.Provider, cookieSecure bool) *SocialHandler {
	return &SocialHandler{auth: auth, provider: provider, cookieSecure: cookieSecure}
}

// HandleStart redirects the browser to the provider's consent page.
// GET /api/auth/{provider}
func (h *SocialHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		writeDomainError(w, err, "generate oauth state")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback processes the provider redirect: CSRF state check, code
// exchange, account resolution, then the double lock.
// GET /api/auth/{provider}/callback?code=...&state=...
func (h *SocialHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeError(w, http.StatusForbidden, "invalid_state", "OAuth state mismatch.")
		return
	}
	clearCookie(w, stateCookieName, h.cookieSecure)

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "Missing authorization code.")
		return
	}

	profile, err := h.provider.FetchProfile(r.Context(), code)
	if err != nil {
		writeDomainError(w, fmt.Errorf("fetch %s profile: %w", h.provider.Name(), err), "social profile")
		return
	}

	user, err := h.auth.ResolveSocial(r.Context(), profile.Email, profile.Name, profile.Provider, profile.ProviderID)
	if err != nil {
		writeDomainError(w, err, "resolve social user")
		return
	}

	// Same credential decision as password login; a PENDING social account
	// is recognized but still denied a token.
	if err := service.AuthorizeLogin(user); err != nil {
		writeDomainError(w, err, "authorize social login")
		return
	}

	token, err := h.auth.IssueToken(user)
	if err != nil {
		writeDomainError(w, err, "issue token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

func generateState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func clearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
