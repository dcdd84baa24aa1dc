package blob

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/lecnote/internal/adapter/gateway/storage"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/repository"
	"github.com/YoshitsuguKoike/lecnote/internal/testutil"
)

func TestNoteRepository_Contract_Afero(t *testing.T) {
	testutil.RunNoteRepositoryContract(t, func(t *testing.T) repository.NoteRepository {
		return NewNoteRepository(storage.NewAferoBlobStore(afero.NewMemMapFs(), "/data"))
	})
}

func TestNoteRepository_Contract_S3(t *testing.T) {
	testutil.RunNoteRepositoryContract(t, func(t *testing.T) repository.NoteRepository {
		return NewNoteRepository(storage.NewS3BlobStoreWithClient(storage.NewMockS3Client(), "bucket", "lecnote"))
	})
}

func TestNoteRepository_RecoversSequenceFromListing(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewAferoBlobStore(afero.NewMemMapFs(), "/data")
	repo := NewNoteRepository(blobs)

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, testutil.SampleDraft("n", ""))
		require.NoError(t, err)
	}

	// Losing the sequence object must not lead to id reuse for surviving notes
	_, err := blobs.Delete(ctx, seqKey)
	require.NoError(t, err)

	n, err := NewNoteRepository(blobs).Create(ctx, testutil.SampleDraft("after", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(4), n.ID)
}

func TestNoteRepository_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	first := NewNoteRepository(storage.NewAferoBlobStore(fs, "/data"))
	created, err := first.Create(ctx, testutil.SampleDraft("Persisted", "alice"))
	require.NoError(t, err)

	second := NewNoteRepository(storage.NewAferoBlobStore(fs, "/data"))
	found, err := second.Find(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Persisted", found.Title)
	assert.Equal(t, "alice", found.UserID)
	assert.Equal(t, "/data", second.Location())
}

func TestNoteRepository_IgnoresForeignKeys(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewAferoBlobStore(afero.NewMemMapFs(), "/data")
	require.NoError(t, blobs.Put(ctx, "notes/readme.txt", []byte("hi"), ""))
	require.NoError(t, blobs.Put(ctx, "notes/abc.json", []byte("{}"), ""))

	repo := NewNoteRepository(blobs)
	notes, err := repo.List(ctx, repository.NoteFilter{})
	require.NoError(t, err)
	assert.Empty(t, notes)
}
