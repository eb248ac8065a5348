package handler

import (
	"net/http"
	"strings"

	"github.com/msomdec/notegate/internal/service"
	"github.com/msomdec/notegate/internal/social"
)

// RegisterRoutes sets up all HTTP routes on the given mux. Social login
// routes are only registered for the providers actually configured.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	notes *service.NoteService,
	users *service.UserService,
	providers []social.Provider,
	cookieSecure bool,
) {
	authHandler := NewAuthHandler(auth, cookieSecure)
	noteHandler := NewNoteHandler(notes)
	userHandler := NewUserHandler(users)
	adminHandler := NewAdminHandler(users)

	mux.HandleFunc("GET /healthz", HandleHealthz)

	// Account lifecycle.
	mux.HandleFunc("POST /api/auth/register", authHandler.HandleRegister)
	mux.HandleFunc("POST /api/auth/login", authHandler.HandleLogin)
	mux.HandleFunc("POST /api/auth/logout", authHandler.HandleLogout)
	mux.HandleFunc("GET /api/auth/verify", authHandler.HandleVerify)
	mux.Handle("GET /api/auth/me", RequireAuth(auth, http.HandlerFunc(authHandler.HandleMe)))

	// Federated login.
	for _, p := range providers {
		socialHandler := NewSocialHandler(auth, p, cookieSecure)
		name := strings.ToLower(p.Name())
		mux.HandleFunc("GET /api/auth/"+name, socialHandler.HandleStart)
		mux.HandleFunc("GET /api/auth/"+name+"/callback", socialHandler.HandleCallback)
	}

	// Notes: credential decision (RequireActive) composed explicitly with
	// the ownership decision inside the service.
	active := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, RequireActive(h))
	}
	mux.Handle("POST /api/notes", active(noteHandler.HandleCreate))
	mux.Handle("GET /api/notes", active(noteHandler.HandleList))
	mux.Handle("GET /api/notes/{id}", active(noteHandler.HandleGet))
	mux.Handle("PUT /api/notes/{id}", active(noteHandler.HandleUpdate))
	mux.Handle("DELETE /api/notes/{id}", active(noteHandler.HandleDelete))

	// Profile.
	mux.Handle("PATCH /api/users/me", active(userHandler.HandleUpdateMe))

	// Admin.
	admin := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, RequireAdmin(h))
	}
	mux.Handle("GET /api/admin/users", admin(adminHandler.HandleListUsers))
	mux.Handle("POST /api/admin/users/{id}/approve", admin(adminHandler.HandleApproveUser))
}
