package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/notegate/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL       = 24 * time.Hour
	verificationTokenTTL = 24 * time.Hour
	verificationPurpose  = "email-verification"
)

// AuthService handles registration, email verification, login, and JWT
// operations. Login is gated by the double lock: an account must have proven
// its email (UNVERIFIED -> PENDING) and been approved by an administrator
// (PENDING -> ACTIVE) before any token is issued.
type AuthService struct {
	users      domain.UserRepository
	mailer     domain.Mailer
	jwtSecret  []byte
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, mailer domain.Mailer, jwtSecret string, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		mailer:     mailer,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
	}
}

// NormalizeEmail is the canonical form used everywhere an email enters the
// system. Email is the sole key correlating password and social registrations,
// so both paths must normalize identically.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new UNVERIFIED account and sends a verification email.
// The account cannot log in until the email is verified and an administrator
// approves it.
func (s *AuthService) Register(ctx context.Context, email, displayName, password, confirmPassword string) (*domain.User, error) {
	email = NormalizeEmail(email)

	if email == "" || displayName == "" || password == "" {
		return nil, fmt.Errorf("%w: email, display name, and password are required", domain.ErrInvalidInput)
	}
	if password != confirmPassword {
		return nil, fmt.Errorf("%w: passwords do not match", domain.ErrInvalidInput)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		DisplayName:  displayName,
		Role:         domain.RoleUser,
		Status:       domain.StatusUnverified,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.generateVerificationToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	// Delivery is fire-and-forget; a mailer outage must not undo the
	// registration.
	if err := s.mailer.SendVerificationEmail(ctx, user.Email, token); err != nil {
		slog.Warn("send verification email", "email", user.Email, "error", err)
	}

	return user, nil
}

// VerifyEmail consumes a verification token and advances the account from
// UNVERIFIED to PENDING. Expired, tampered, and wrong-purpose tokens all
// surface as ErrInvalidToken. Verifying twice is harmless.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if purpose, _ := claims["purpose"].(string); purpose != verificationPurpose {
		return nil, domain.ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, sub)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.VerifyEmail()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// AuthorizeLogin is the credential-issuance decision. It is pure so the two
// halves of the double lock stay independently testable: first the email
// proof, then the administrative approval. Only ACTIVE accounts pass.
func AuthorizeLogin(user *domain.User) error {
	if user.Status == domain.StatusUnverified {
		return domain.ErrEmailNotVerified
	}
	if user.Status != domain.StatusActive {
		return domain.ErrPendingApproval
	}
	return nil
}

// Login verifies credentials, applies the double lock, and returns a signed
// access token. Unknown emails and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	// Pure social accounts have no password hash; bcrypt rejects those too.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrUnauthorized
	}

	if err := AuthorizeLogin(user); err != nil {
		return "", err
	}

	return s.IssueToken(user)
}

// IssueToken signs an access token for an already-authorized user. The social
// callback shares this with password login so both paths issue identical
// tokens. Callers must run AuthorizeLogin first.
func (s *AuthService) IssueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    user.ID,
		"email":  user.Email,
		"role":   string(user.Role),
		"status": string(user.Status),
		"iat":    now.Unix(),
		"exp":    now.Add(accessTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates an access token string.
// Returns the user ID from the sub claim.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return "", domain.ErrUnauthorized
	}

	// A verification token is not an access token, even though both are
	// signed with the same key. The purpose claim keeps them apart.
	if _, isVerification := claims["purpose"]; isVerification {
		return "", domain.ErrUnauthorized
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrUnauthorized
	}
	return sub, nil
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) generateVerificationToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     user.ID,
		"purpose": verificationPurpose,
		"iat":     now.Unix(),
		"exp":     now.Add(verificationTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}
