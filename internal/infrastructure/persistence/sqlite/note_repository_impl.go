package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/YoshitsuguKoike/lecnote/internal/domain/model/note"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/repository"
)

// dbExecutor is an interface for executing database queries
// Both *sql.DB and *sql.Tx implement this interface
type dbExecutor interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// NoteRepositoryImpl implements repository.NoteRepository with SQLite.
// Content is stored as its JSON wire shape; timestamps as RFC 3339 text.
type NoteRepositoryImpl struct {
	db  *sql.DB
	now func() time.Time
}

// NewNoteRepository creates a new SQLite-based note repository
func NewNoteRepository(db *sql.DB) *NoteRepositoryImpl {
	return &NoteRepositoryImpl{db: db, now: time.Now}
}

var _ repository.NoteRepository = (*NoteRepositoryImpl)(nil)

const noteColumns = `id, title, content, original_video, user_id, created_at, updated_at`

// Create persists a new note and returns it with its assigned id
func (r *NoteRepositoryImpl) Create(ctx context.Context, d note.Draft) (*note.Note, error) {
	n := note.NewNote(0, d, r.now().UTC())

	contentJSON, err := json.Marshal(n.Content)
	if err != nil {
		return nil, fmt.Errorf("marshal content failed: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (title, content, original_video, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		n.Title, string(contentJSON), n.OriginalVideo, n.UserID,
		formatTime(n.CreatedAt), formatTime(n.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert note failed: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id failed: %w", err)
	}
	n.ID = id
	return n, nil
}

// Find retrieves a note by its ID
func (r *NoteRepositoryImpl) Find(ctx context.Context, id int64) (*note.Note, error) {
	return r.find(ctx, r.db, id)
}

func (r *NoteRepositoryImpl) find(ctx context.Context, db dbExecutor, id int64) (*note.Note, error) {
	row := db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Update merges the patch inside a transaction so the read and write are atomic
func (r *NoteRepositoryImpl) Update(ctx context.Context, id int64, p note.Patch) (*note.Note, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback()

	n, err := r.find(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	n.Apply(p, r.now().UTC())

	contentJSON, err := json.Marshal(n.Content)
	if err != nil {
		return nil, fmt.Errorf("marshal content failed: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ?
	`, n.Title, string(contentJSON), formatTime(n.UpdatedAt), id); err != nil {
		return nil, fmt.Errorf("update note failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction failed: %w", err)
	}
	return n, nil
}

// Delete removes a note; RowsAffected tells whether it existed
func (r *NoteRepositoryImpl) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete note failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected failed: %w", err)
	}
	return rows > 0, nil
}

// List retrieves notes by filter, ordered by id
func (r *NoteRepositoryImpl) List(ctx context.Context, filter repository.NoteFilter) ([]*note.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE 1=1`
	args := []interface{}{}

	if filter.OwnerID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.OwnerID)
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes failed: %w", err)
	}
	defer rows.Close()

	notes := []*note.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes failed: %w", err)
	}
	return notes, nil
}

// Ping checks that the database is reachable
func (r *NoteRepositoryImpl) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(row rowScanner) (*note.Note, error) {
	var (
		n           note.Note
		contentJSON string
		createdAt   string
		updatedAt   string
	)

	if err := row.Scan(&n.ID, &n.Title, &contentJSON, &n.OriginalVideo, &n.UserID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan note failed: %w", err)
	}

	if err := json.Unmarshal([]byte(contentJSON), &n.Content); err != nil {
		return nil, fmt.Errorf("unmarshal content of note %d failed: %w", n.ID, err)
	}

	var err error
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at of note %d failed: %w", n.ID, err)
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at of note %d failed: %w", n.ID, err)
	}
	return &n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
