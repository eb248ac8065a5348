package service

import (
	"context"
	"fmt"

	"github.com/msomdec/notegate/internal/domain"
)

// UserService handles account administration and profile updates.
type UserService struct {
	users domain.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// UserPage is one page of the admin account listing.
type UserPage struct {
	Users    []domain.User
	Total    int
	Page     int
	PageSize int
}

// List returns a page of accounts for the admin dashboard, newest first.
func (s *UserService) List(ctx context.Context, page, pageSize int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	users, total, err := s.users.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return &UserPage{Users: users, Total: total, Page: page, PageSize: pageSize}, nil
}

// Approve sets an account ACTIVE. The transition is unconditional, so
// approving an UNVERIFIED or already-ACTIVE account succeeds too; it is the
// administrative override.
func (s *UserService) Approve(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Approve()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// UpdateDisplayName changes the user's display name. Display names carry no
// uniqueness constraint.
func (s *UserService) UpdateDisplayName(ctx context.Context, id, displayName string) (*domain.User, error) {
	if displayName == "" {
		return nil, fmt.Errorf("%w: display name is required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.DisplayName = displayName
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}
