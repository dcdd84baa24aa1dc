package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/lecnote/internal/domain/model/note"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/repository"
	"github.com/YoshitsuguKoike/lecnote/internal/testutil"
)

// setupTestDB creates a migrated in-memory SQLite database private to the test
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// A named shared-cache database lets every pooled connection see the same data
	// while keeping tests isolated from each other
	db, err := sql.Open("sqlite3", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, NewMigrator(db).Migrate(context.Background()))
	return db
}

func TestNoteRepositoryImpl_Contract(t *testing.T) {
	testutil.RunNoteRepositoryContract(t, func(t *testing.T) repository.NoteRepository {
		return NewNoteRepository(setupTestDB(t))
	})
}

func TestNoteRepositoryImpl_StoresContentAsJSON(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, testutil.SampleDraft("JSON", "alice"))
	require.NoError(t, err)

	var raw, userID string
	err = db.QueryRow("SELECT content, user_id FROM notes WHERE id = ?", created.ID).Scan(&raw, &userID)
	require.NoError(t, err)
	assert.Contains(t, raw, `"videoMetadata"`)
	assert.Contains(t, raw, `"type":"todo"`)
	assert.Equal(t, "alice", userID)
}

func TestNoteRepositoryImpl_CorruptContent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, note.Draft{Title: "Broken", Content: note.NewEmptyContent()})
	require.NoError(t, err)

	_, err = db.Exec("UPDATE notes SET content = 'not json' WHERE id = ?", created.ID)
	require.NoError(t, err)

	_, err = repo.Find(ctx, created.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNoteNotFound)
	assert.Contains(t, err.Error(), "unmarshal content")
}

func TestNoteRepositoryImpl_Ping(t *testing.T) {
	repo := NewNoteRepository(setupTestDB(t))
	assert.NoError(t, repo.Ping(context.Background()))
}
