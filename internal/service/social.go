package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/msomdec/notegate/internal/domain"
)

// ResolveSocial maps a verified external identity assertion to a local
// account. A brand-new email creates an account directly in PENDING: the
// provider already proved email ownership, so the UNVERIFIED stage is skipped
// on purpose. The account still needs administrative approval before it can
// log in; callers pass the result through AuthorizeLogin like any other login.
//
// When the email already has an account it is returned untouched. Provider
// data is never written onto an existing password account.
func (s *AuthService) ResolveSocial(ctx context.Context, email, displayName, provider, providerID string) (*domain.User, error) {
	email = NormalizeEmail(email)
	if email == "" || provider == "" || providerID == "" {
		return nil, fmt.Errorf("%w: email, provider, and provider id are required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	user = &domain.User{
		Email:       email,
		DisplayName: displayName,
		Role:        domain.RoleUser,
		Status:      domain.StatusPending,
		Provider:    provider,
		ProviderID:  providerID,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same email;
		// the winner's account is the account.
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return s.users.GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}
