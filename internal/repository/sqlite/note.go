package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/notegate/internal/domain"
)

// NoteRepository implements domain.NoteRepository using SQLite.
type NoteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new SQLite-backed NoteRepository.
func NewNoteRepository(db *DB) *NoteRepository {
	return &NoteRepository{db: db.SqlDB}
}

func (r *NoteRepository) Create(ctx context.Context, note *domain.Note) error {
	now := time.Now().UTC()
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (id, user_id, title, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, note.UserID, note.Title, note.Content, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}

	note.ID = id
	note.CreatedAt = now
	note.UpdatedAt = now
	return nil
}

func (r *NoteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	note := &domain.Note{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, content, created_at, updated_at
		 FROM notes WHERE id = ?`, id,
	).Scan(&note.ID, &note.UserID, &note.Title, &note.Content, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query note by id: %w", err)
	}
	return note, nil
}

func (r *NoteRepository) ListByUser(ctx context.Context, userID string) ([]domain.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, content, created_at, updated_at
		 FROM notes WHERE user_id = ? ORDER BY updated_at DESC, id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query notes by user: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *NoteRepository) Update(ctx context.Context, note *domain.Note) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		note.Title, note.Content, now, note.ID,
	)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	note.UpdatedAt = now
	return nil
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
