package handler

import (
	"net/http"

	"github.com/msomdec/notegate/internal/service"
)

// NoteHandler handles note-related HTTP requests. All routes assume
// RequireAuth + RequireActive have run; the handlers only carry the
// ownership decision down into the service.
type NoteHandler struct {
	notes *service.NoteService
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// HandleCreate creates a note owned by the caller.
// POST /api/notes
// Request:  {"title":"...","content":"..."}
// Response: 201 {"note": {...}}
func (h *NoteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid request body.")
		return
	}

	note, err := h.notes.Create(r.Context(), user.ID, req.Title, req.Content)
	if err != nil {
		writeDomainError(w, err, "create note")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"note": toNoteDTO(note)})
}

// HandleList returns the caller's notes. Ownership is a query filter here,
// not a per-item guard.
// GET /api/notes
// Response: {"notes": [...]}
func (h *NoteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	notes, err := h.notes.List(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err, "list notes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"notes": toNoteDTOs(notes)})
}

// HandleGet returns a single note. A note owned by someone else yields
// not_owner (403), a missing note not_found (404).
// GET /api/notes/{id}
// Response: {"note": {...}}
func (h *NoteHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	note, err := h.notes.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err, "get note")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"note": toNoteDTO(note)})
}

// HandleUpdate replaces a note's title and content.
// PUT /api/notes/{id}
// Request:  {"title":"...","content":"..."}
// Response: {"note": {...}}
func (h *NoteHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid request body.")
		return
	}

	note, err := h.notes.Update(r.Context(), user.ID, r.PathValue("id"), req.Title, req.Content)
	if err != nil {
		writeDomainError(w, err, "update note")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"note": toNoteDTO(note)})
}

// HandleDelete deletes a note.
// DELETE /api/notes/{id}
// Response: 204 No Content
func (h *NoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := h.notes.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeDomainError(w, err, "delete note")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
