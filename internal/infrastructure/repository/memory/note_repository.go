package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/YoshitsuguKoike/lecnote/internal/domain/model/note"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/repository"
)

// NoteRepository is an in-memory implementation of repository.NoteRepository.
// Notes are cloned on the way in and out, so callers never hold a reference into the store.
type NoteRepository struct {
	mu     sync.RWMutex
	notes  map[int64]*note.Note
	lastID int64
	now    func() time.Time
}

// NewNoteRepository creates a new in-memory note repository
func NewNoteRepository() *NoteRepository {
	return NewNoteRepositoryWithClock(time.Now)
}

// NewNoteRepositoryWithClock creates a repository that reads time from now (for testing)
func NewNoteRepositoryWithClock(now func() time.Time) *NoteRepository {
	return &NoteRepository{
		notes: make(map[int64]*note.Note),
		now:   now,
	}
}

var _ repository.NoteRepository = (*NoteRepository)(nil)

func (r *NoteRepository) Create(ctx context.Context, d note.Draft) (*note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	n := note.NewNote(r.lastID, d, r.now())
	r.notes[n.ID] = n
	return n.Clone(), nil
}

func (r *NoteRepository) Find(ctx context.Context, id int64) (*note.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, exists := r.notes[id]
	if !exists {
		return nil, repository.ErrNoteNotFound
	}
	return n.Clone(), nil
}

func (r *NoteRepository) Update(ctx context.Context, id int64, p note.Patch) (*note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, exists := r.notes[id]
	if !exists {
		return nil, repository.ErrNoteNotFound
	}
	n.Apply(p, r.now())
	return n.Clone(), nil
}

func (r *NoteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notes[id]; !exists {
		return false, nil
	}
	delete(r.notes, id)
	return true, nil
}

func (r *NoteRepository) List(ctx context.Context, filter repository.NoteFilter) ([]*note.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*note.Note, 0, len(r.notes))
	for _, n := range r.notes {
		if filter.Matches(n) {
			result = append(result, n.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Count returns the number of stored notes (for testing)
func (r *NoteRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.notes)
}
