package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/notegate/internal/domain"
	"github.com/msomdec/notegate/internal/repository/sqlite"
	"github.com/msomdec/notegate/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests"

// recordingMailer captures verification tokens instead of sending email.
type recordingMailer struct {
	mu     sync.Mutex
	tokens map[string]string // email -> last token
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{tokens: make(map[string]string)}
}

func (m *recordingMailer) SendVerificationEmail(ctx context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[email] = token
	return nil
}

func (m *recordingMailer) tokenFor(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[email]
}

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestAuthService(t *testing.T) (*service.AuthService, *recordingMailer, *sqlite.DB) {
	t.Helper()
	db := newTestDB(t)
	mail := newRecordingMailer()
	// Use cost 4 for fast tests.
	auth := service.NewAuthService(db.Users(), mail, testJWTSecret, 4)
	return auth, mail, db
}

func TestAuthService_Register_Success(t *testing.T) {
	auth, mail, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "new@example.com", "New User", "password123", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.ID == "" {
		t.Fatal("expected user ID to be set")
	}
	if user.Status != domain.StatusUnverified {
		t.Fatalf("expected UNVERIFIED, got %s", user.Status)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected USER role, got %s", user.Role)
	}
	if mail.tokenFor("new@example.com") == "" {
		t.Fatal("expected a verification email to be sent")
	}
}

func TestAuthService_Register_NormalizesEmail(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "  MiXeD@Example.COM ", "Mixed", "password123", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "mixed@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}

	// A differently-cased duplicate must collide.
	_, err = auth.Register(ctx, "MIXED@example.com", "Other", "password123", "password123")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "dup@example.com", "User 1", "password123", "password123")
	if err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err = auth.Register(ctx, "dup@example.com", "User 2", "password456", "password456")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		display  string
		password string
		confirm  string
	}{
		{"empty email", "", "Name", "password123", "password123"},
		{"empty display name", "a@b.com", "", "password123", "password123"},
		{"empty password", "a@b.com", "Name", "", ""},
		{"short password", "a@b.com", "Name", "short", "short"},
		{"password mismatch", "a@b.com", "Name", "password123", "different456"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tc.email, tc.display, tc.password, tc.confirm)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAuthorizeLogin(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.UserStatus
		wantErr error
	}{
		{"unverified denied", domain.StatusUnverified, domain.ErrEmailNotVerified},
		{"pending denied", domain.StatusPending, domain.ErrPendingApproval},
		{"active allowed", domain.StatusActive, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := service.AuthorizeLogin(&domain.User{Status: tc.status})
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected allow, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAuthService_Login_DeniedUntilVerifiedAndApproved(t *testing.T) {
	auth, mail, db := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "alice@example.com", "Alice", "password123", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Lock one: email not yet verified.
	_, err = auth.Login(ctx, "alice@example.com", "password123")
	if !errors.Is(err, domain.ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}

	// Verify email using the token from the mailer.
	verified, err := auth.VerifyEmail(ctx, mail.tokenFor("alice@example.com"))
	if err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if verified.Status != domain.StatusPending {
		t.Fatalf("expected PENDING after verification, got %s", verified.Status)
	}

	// Lock two: not yet approved.
	_, err = auth.Login(ctx, "alice@example.com", "password123")
	if !errors.Is(err, domain.ErrPendingApproval) {
		t.Fatalf("expected ErrPendingApproval, got %v", err)
	}

	// Approve and log in.
	verified.Approve()
	if err := db.Users().Update(ctx, verified); err != nil {
		t.Fatalf("Update: %v", err)
	}

	token, err := auth.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Login after approval: %v", err)
	}

	gotID, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if gotID != user.ID {
		t.Fatalf("expected sub %s, got %s", user.ID, gotID)
	}
}

func TestAuthService_Login_WrongCredentials(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "creds@example.com", "Creds", "password123", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Unknown email and wrong password must be indistinguishable.
	_, err = auth.Login(ctx, "nobody@example.com", "password123")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("unknown email: expected ErrUnauthorized, got %v", err)
	}

	_, err = auth.Login(ctx, "creds@example.com", "wrongpassword")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("wrong password: expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_VerifyEmail_Idempotent(t *testing.T) {
	auth, mail, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "twice@example.com", "Twice", "password123", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token := mail.tokenFor("twice@example.com")
	first, err := auth.VerifyEmail(ctx, token)
	if err != nil {
		t.Fatalf("first VerifyEmail: %v", err)
	}
	second, err := auth.VerifyEmail(ctx, token)
	if err != nil {
		t.Fatalf("second VerifyEmail: %v", err)
	}
	if first.Status != domain.StatusPending || second.Status != domain.StatusPending {
		t.Fatalf("expected PENDING both times, got %s then %s", first.Status, second.Status)
	}
}

func TestAuthService_VerifyEmail_InvalidTokens(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "tok@example.com", "Tok", "password123", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	expired := signTestToken(t, jwt.MapClaims{
		"sub":     user.ID,
		"purpose": "email-verification",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}, testJWTSecret)

	wrongKey := signTestToken(t, jwt.MapClaims{
		"sub":     user.ID,
		"purpose": "email-verification",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, "some-other-signing-key-entirely!")

	wrongPurpose := signTestToken(t, jwt.MapClaims{
		"sub":     user.ID,
		"purpose": "password-reset",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, testJWTSecret)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"expired", expired},
		{"tampered", wrongKey},
		{"wrong purpose", wrongPurpose},
	}

	// All failure causes collapse to the same ErrInvalidToken.
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.VerifyEmail(ctx, tc.token)
			if !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestAuthService_VerifyEmail_AccountGone(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	token := signTestToken(t, jwt.MapClaims{
		"sub":     "no-such-user",
		"purpose": "email-verification",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, testJWTSecret)

	_, err := auth.VerifyEmail(ctx, token)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAuthService_ValidateToken_RejectsVerificationToken(t *testing.T) {
	auth, mail, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "mixup@example.com", "Mixup", "password123", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// A verification token must not double as an access token even though
	// both are signed with the same key.
	_, err = auth.ValidateToken(mail.tokenFor("mixup@example.com"))
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_IssueToken_CarriesRoleClaim(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	user := &domain.User{
		ID:     "u-1",
		Email:  "claims@example.com",
		Role:   domain.RoleUser,
		Status: domain.StatusActive,
	}
	signed, err := auth.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	token, err := jwt.Parse(signed, func(token *jwt.Token) (any, error) {
		return []byte(testJWTSecret), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["role"] != "USER" {
		t.Fatalf("expected role USER, got %v", claims["role"])
	}
	if claims["sub"] != "u-1" {
		t.Fatalf("expected sub u-1, got %v", claims["sub"])
	}
}

func signTestToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return signed
}
