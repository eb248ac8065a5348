package service

import (
	"context"
	"fmt"

	"github.com/msomdec/notegate/internal/domain"
)

// NoteService handles note CRUD with ownership checks.
//
// It decides a single question: may this already-authenticated principal
// touch this note? Whether the principal may authenticate at all is the
// credential decision (AuthorizeLogin), applied by middleware before any
// request reaches here. The two are composed explicitly, never implied.
type NoteService struct {
	notes domain.NoteRepository
}

// NewNoteService creates a new NoteService.
func NewNoteService(notes domain.NoteRepository) *NoteService {
	return &NoteService{notes: notes}
}

// AuthorizeNoteOwner is the ownership decision: nil iff the note belongs to
// the given user, ErrNotOwner otherwise. Existence is checked by the caller
// first so ErrNotFound and ErrNotOwner stay distinguishable.
func AuthorizeNoteOwner(userID string, note *domain.Note) error {
	if note.UserID != userID {
		return domain.ErrNotOwner
	}
	return nil
}

// Create creates a new note owned by the given user.
func (s *NoteService) Create(ctx context.Context, userID, title, content string) (*domain.Note, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}

	note := &domain.Note{
		UserID:  userID,
		Title:   title,
		Content: content,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

// List returns all notes owned by the user. Ownership is applied at the query
// boundary rather than per item.
func (s *NoteService) List(ctx context.Context, userID string) ([]domain.Note, error) {
	return s.notes.ListByUser(ctx, userID)
}

// Get returns a single note after the ownership check.
func (s *NoteService) Get(ctx context.Context, userID, id string) (*domain.Note, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeNoteOwner(userID, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Update replaces a note's title and content after the ownership check.
func (s *NoteService) Update(ctx context.Context, userID, id, title, content string) (*domain.Note, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeNoteOwner(userID, note); err != nil {
		return nil, err
	}

	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}

	note.Title = title
	note.Content = content
	if err := s.notes.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return note, nil
}

// Delete removes a note after the ownership check.
func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := AuthorizeNoteOwner(userID, note); err != nil {
		return err
	}

	return s.notes.Delete(ctx, id)
}
