package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/notegate/internal/domain"
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db.SqlDB}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, role, status, password_hash, provider, provider_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, user.Email, user.DisplayName, string(user.Role), string(user.Status),
		user.PasswordHash, user.Provider, user.ProviderID, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET display_name = ?, role = ?, status = ?, password_hash = ?, provider = ?, provider_id = ?, updated_at = ?
		 WHERE id = ?`,
		user.DisplayName, string(user.Role), string(user.Status),
		user.PasswordHash, user.Provider, user.ProviderID, now, user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, display_name, role, status, password_hash, provider, provider_id, created_at, updated_at
		 FROM users ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows.Scan, &u); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	user := &domain.User{}
	err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, role, status, password_hash, provider, provider_id, created_at, updated_at
		 FROM users WHERE `+where, arg,
	).Scan, user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

func scanUser(scan func(...any) error, u *domain.User) error {
	var role, status string
	if err := scan(&u.ID, &u.Email, &u.DisplayName, &role, &status,
		&u.PasswordHash, &u.Provider, &u.ProviderID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return err
	}
	u.Role = domain.UserRole(role)
	u.Status = domain.UserStatus(status)
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
