package repository

import (
	"context"
	"errors"

	"github.com/YoshitsuguKoike/lecnote/internal/domain/model/note"
)

// ErrNoteNotFound is returned by Find and Update for an unknown id.
// It is an expected outcome, not a storage failure.
var ErrNoteNotFound = errors.New("note not found")

// NoteRepository manages Note entities.
// Ids are assigned by the store, start at 1 and are never reused.
// Each call is atomic; concurrent updates to the same id are last-write-wins.
type NoteRepository interface {
	// Create assigns a fresh id and timestamps and persists the draft
	Create(ctx context.Context, d note.Draft) (*note.Note, error)

	// Find retrieves a note by id
	Find(ctx context.Context, id int64) (*note.Note, error)

	// Update merges the patch into the stored note and refreshes updatedAt
	Update(ctx context.Context, id int64, p note.Patch) (*note.Note, error)

	// Delete removes a note; it reports whether anything was removed
	Delete(ctx context.Context, id int64) (bool, error)

	// List retrieves notes ordered by id
	List(ctx context.Context, filter NoteFilter) ([]*note.Note, error)
}

// NoteFilter defines criteria for listing notes
type NoteFilter struct {
	OwnerID string // empty lists every note
}

// Matches reports whether n passes the filter
func (f NoteFilter) Matches(n *note.Note) bool {
	return f.OwnerID == "" || n.UserID == f.OwnerID
}
