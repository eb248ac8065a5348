package domain

import (
	"context"
	"time"
)

// Note is a user-owned record. Ownership is fixed at creation and never
// reassigned; every single-note operation is gated on UserID.
type Note struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteRepository defines persistence operations for notes.
type NoteRepository interface {
	Create(ctx context.Context, note *Note) error
	GetByID(ctx context.Context, id string) (*Note, error)
	ListByUser(ctx context.Context, userID string) ([]Note, error)
	Update(ctx context.Context, note *Note) error
	Delete(ctx context.Context, id string) error
}
