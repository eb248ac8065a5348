package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/notegate/internal/domain"
	"github.com/msomdec/notegate/internal/handler"
	"github.com/msomdec/notegate/internal/mailer"
	"github.com/msomdec/notegate/internal/repository/sqlite"
	"github.com/msomdec/notegate/internal/service"
	"github.com/msomdec/notegate/internal/social"
)

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	slog.SetDefault(logger)

	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "notegate.db")
	baseURL := envOrDefault("BASE_URL", "http://localhost:"+port)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if len(jwtSecret) < 32 {
		slog.Error("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
		os.Exit(1)
	}

	// Default to secure cookies; disable only for local development.
	cookieSecure := os.Getenv("COOKIE_SECURE") != "false"

	bcryptCost := 12
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			slog.Error("invalid BCRYPT_COST", "error", err)
			os.Exit(1)
		}
		if parsed < 4 || parsed > 14 {
			slog.Error("BCRYPT_COST must be between 4 and 14", "value", parsed)
			os.Exit(1)
		}
		bcryptCost = parsed
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	var mail domain.Mailer
	if smtpAddr := os.Getenv("SMTP_ADDR"); smtpAddr != "" {
		mail = mailer.NewSMTP(
			smtpAddr,
			os.Getenv("SMTP_USERNAME"),
			os.Getenv("SMTP_PASSWORD"),
			envOrDefault("SMTP_FROM", "no-reply@notegate.local"),
			baseURL,
		)
		slog.Info("using SMTP mailer", "addr", smtpAddr)
	} else {
		mail = mailer.NewLog()
		slog.Info("SMTP_ADDR not set, verification tokens will be logged")
	}

	authService := service.NewAuthService(db.Users(), mail, jwtSecret, bcryptCost)
	noteService := service.NewNoteService(db.Notes())
	userService := service.NewUserService(db.Users())

	// Seed the bootstrap admin account (idempotent).
	if err := seedAdmin(context.Background(), db.Users(), bcryptCost); err != nil {
		slog.Error("failed to seed admin account", "error", err)
		os.Exit(1)
	}

	providers := configuredProviders(baseURL)
	for _, p := range providers {
		slog.Info("social login enabled", "provider", p.Name())
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, noteService, userService, providers, cookieSecure)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// seedAdmin creates the bootstrap administrator from ADMIN_EMAIL and
// ADMIN_PASSWORD if no account with that email exists. Without at least one
// ACTIVE admin nobody could ever approve the first PENDING registration.
func seedAdmin(ctx context.Context, users domain.UserRepository, bcryptCost int) error {
	email := service.NormalizeEmail(os.Getenv("ADMIN_EMAIL"))
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}

	admin := &domain.User{
		Email:        email,
		DisplayName:  "Administrator",
		Role:         domain.RoleAdmin,
		Status:       domain.StatusActive,
		PasswordHash: string(hash),
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	slog.Info("admin account seeded", "email", email)
	return nil
}

// configuredProviders builds the social providers whose credentials are set.
func configuredProviders(baseURL string) []social.Provider {
	var providers []social.Provider

	if id, secret := os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"); id != "" && secret != "" {
		providers = append(providers, social.NewGoogle(id, secret, baseURL+"/api/auth/google/callback"))
	}
	if id, secret := os.Getenv("GITHUB_CLIENT_ID"), os.Getenv("GITHUB_CLIENT_SECRET"); id != "" && secret != "" {
		providers = append(providers, social.NewGitHub(id, secret, baseURL+"/api/auth/github/callback"))
	}

	return providers
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
