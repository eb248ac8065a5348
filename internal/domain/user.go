package domain

import (
	"context"
	"time"
)

// UserStatus is the lifecycle state of an account. Status only ever moves
// forward: UNVERIFIED -> PENDING -> ACTIVE. Nothing in the core moves it back.
type UserStatus string

const (
	// StatusUnverified is the initial state for password registrations; the
	// account holder has not yet proven ownership of the email address.
	StatusUnverified UserStatus = "UNVERIFIED"
	// StatusPending means the email is proven (or vouched for by a social
	// provider) but an administrator has not approved the account yet.
	StatusPending UserStatus = "PENDING"
	// StatusActive accounts are fully approved and may hold access tokens.
	StatusActive UserStatus = "ACTIVE"
)

// UserRole distinguishes regular users from administrators.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// User represents an account, created either by password registration or by
// social login. Both paths correlate on the (normalized) email address.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	Role         UserRole
	Status       UserStatus
	PasswordHash string // empty for accounts created via social login
	Provider     string // e.g. "GOOGLE"; empty for password accounts
	ProviderID   string // subject id at the external provider
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VerifyEmail advances the account from UNVERIFIED to PENDING. Calling it in
// any other state is a no-op, so following a verification link twice is safe.
func (u *User) VerifyEmail() {
	if u.Status == StatusUnverified {
		u.Status = StatusPending
	}
}

// Approve sets the account ACTIVE unconditionally. This is the administrative
// override; it always succeeds and is idempotent.
func (u *User) Approve() {
	u.Status = StatusActive
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	List(ctx context.Context, offset, limit int) ([]User, int, error)
}
