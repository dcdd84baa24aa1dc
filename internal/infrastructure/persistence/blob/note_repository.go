package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/model/note"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/repository"
)

const (
	notesPrefix = "notes/"
	seqKey      = "notes/_seq"
	jsonType    = "application/json"
)

// NoteRepository stores each note as one JSON document in a BlobStore:
//
//	notes/<id>.json  the note in its wire shape
//	notes/_seq       the last id handed out
//
// Writes are serialised within the process. Two processes sharing one bucket
// are not coordinated.
type NoteRepository struct {
	store output.BlobStore
	mu    sync.Mutex
	now   func() time.Time
}

// NewNoteRepository creates a blob-backed note repository
func NewNoteRepository(store output.BlobStore) *NoteRepository {
	return &NoteRepository{store: store, now: time.Now}
}

var _ repository.NoteRepository = (*NoteRepository)(nil)

func noteKey(id int64) string {
	return notesPrefix + strconv.FormatInt(id, 10) + ".json"
}

func (r *NoteRepository) Create(ctx context.Context, d note.Draft) (*note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	last, err := r.lastID(ctx)
	if err != nil {
		return nil, err
	}

	n := note.NewNote(last+1, d, r.now().UTC())
	// The sequence is advanced first so a crash between the two writes skips an id
	// rather than reusing one
	if err := r.store.Put(ctx, seqKey, []byte(strconv.FormatInt(n.ID, 10)), "text/plain"); err != nil {
		return nil, fmt.Errorf("advance note sequence failed: %w", err)
	}
	if err := r.put(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *NoteRepository) Find(ctx context.Context, id int64) (*note.Note, error) {
	data, err := r.store.Get(ctx, noteKey(id))
	if errors.Is(err, output.ErrBlobNotFound) {
		return nil, repository.ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load note %d failed: %w", id, err)
	}

	var n note.Note
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("decode note %d failed: %w", id, err)
	}
	return &n, nil
}

func (r *NoteRepository) Update(ctx context.Context, id int64, p note.Patch) (*note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	n.Apply(p, r.now().UTC())
	if err := r.put(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *NoteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed, err := r.store.Delete(ctx, noteKey(id))
	if err != nil {
		return false, fmt.Errorf("delete note %d failed: %w", id, err)
	}
	return removed, nil
}

func (r *NoteRepository) List(ctx context.Context, filter repository.NoteFilter) ([]*note.Note, error) {
	ids, err := r.ids(ctx)
	if err != nil {
		return nil, err
	}

	notes := []*note.Note{}
	for _, id := range ids {
		n, err := r.Find(ctx, id)
		if errors.Is(err, repository.ErrNoteNotFound) {
			// deleted between listing and loading
			continue
		}
		if err != nil {
			return nil, err
		}
		if filter.Matches(n) {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

// Location describes the backing store
func (r *NoteRepository) Location() string {
	return r.store.Location()
}

func (r *NoteRepository) put(ctx context.Context, n *note.Note) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode note %d failed: %w", n.ID, err)
	}
	if err := r.store.Put(ctx, noteKey(n.ID), data, jsonType); err != nil {
		return fmt.Errorf("save note %d failed: %w", n.ID, err)
	}
	return nil
}

// lastID reads the sequence, falling back to the highest stored id when it is missing
func (r *NoteRepository) lastID(ctx context.Context) (int64, error) {
	data, err := r.store.Get(ctx, seqKey)
	if err == nil {
		last, perr := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
		if perr != nil {
			return 0, fmt.Errorf("parse note sequence %q failed: %w", string(data), perr)
		}
		return last, nil
	}
	if !errors.Is(err, output.ErrBlobNotFound) {
		return 0, fmt.Errorf("read note sequence failed: %w", err)
	}

	ids, err := r.ids(ctx)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[len(ids)-1], nil
}

// ids returns the stored note ids in ascending order
func (r *NoteRepository) ids(ctx context.Context) ([]int64, error) {
	keys, err := r.store.List(ctx, notesPrefix)
	if err != nil {
		return nil, fmt.Errorf("list notes failed: %w", err)
	}

	ids := make([]int64, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, notesPrefix)
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
