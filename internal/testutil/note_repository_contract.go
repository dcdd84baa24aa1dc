package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/lecnote/internal/domain/model/note"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/repository"
)

// RunNoteRepositoryContract exercises the behaviour every NoteRepository must share.
// newRepo is called once per subtest and must return an empty store.
func RunNoteRepositoryContract(t *testing.T, newRepo func(t *testing.T) repository.NoteRepository) {
	t.Helper()
	ctx := context.Background()

	t.Run("create assigns increasing ids and timestamps", func(t *testing.T) {
		repo := newRepo(t)

		first, err := repo.Create(ctx, SampleDraft("First", "alice"))
		require.NoError(t, err)
		second, err := repo.Create(ctx, SampleDraft("Second", "bob"))
		require.NoError(t, err)

		assert.Equal(t, int64(1), first.ID)
		assert.Greater(t, second.ID, first.ID)
		assert.False(t, first.CreatedAt.IsZero())
		assert.Equal(t, first.CreatedAt, first.UpdatedAt)
		assert.Equal(t, "First", first.Title)
		assert.Equal(t, "lecture.mp4", first.OriginalVideo)
	})

	t.Run("create defaults the title", func(t *testing.T) {
		repo := newRepo(t)
		n, err := repo.Create(ctx, note.Draft{Content: note.NewEmptyContent()})
		require.NoError(t, err)
		assert.Equal(t, note.DefaultTitle, n.Title)
	})

	t.Run("find returns stored content and not found", func(t *testing.T) {
		repo := newRepo(t)
		draft := SampleDraft("Stored", "")
		created, err := repo.Create(ctx, draft)
		require.NoError(t, err)

		found, err := repo.Find(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, draft.Content.Blocks, found.Content.Blocks)
		require.NotNil(t, found.Content.VideoMetadata)
		assert.Equal(t, draft.Content.VideoMetadata.FileName, found.Content.VideoMetadata.FileName)
		assert.True(t, created.CreatedAt.Equal(found.CreatedAt))

		_, err = repo.Find(ctx, created.ID+100)
		assert.ErrorIs(t, err, repository.ErrNoteNotFound)
	})

	t.Run("update round trip bumps updatedAt", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, SampleDraft("Round trip", ""))
		require.NoError(t, err)

		content := created.Content.Clone()
		content.Blocks[0].Content = "X"
		_, err = repo.Update(ctx, created.ID, note.Patch{Content: &content})
		require.NoError(t, err)

		found, err := repo.Find(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "X", found.Content.Blocks[0].Content)
		assert.True(t, found.UpdatedAt.After(found.CreatedAt), "updatedAt %v should be after createdAt %v", found.UpdatedAt, found.CreatedAt)
		assert.True(t, found.CreatedAt.Equal(created.CreatedAt), "createdAt is immutable")
		assert.Equal(t, "Round trip", found.Title, "title untouched by a content-only patch")
	})

	t.Run("update title only keeps content", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, SampleDraft("Before", ""))
		require.NoError(t, err)

		title := "After"
		updated, err := repo.Update(ctx, created.ID, note.Patch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "After", updated.Title)
		assert.Equal(t, created.Content.Blocks, updated.Content.Blocks)
	})

	t.Run("update unknown id is not found", func(t *testing.T) {
		repo := newRepo(t)
		title := "x"
		_, err := repo.Update(ctx, 42, note.Patch{Title: &title})
		assert.ErrorIs(t, err, repository.ErrNoteNotFound)
	})

	t.Run("delete reports whether something was removed", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, SampleDraft("Doomed", ""))
		require.NoError(t, err)

		removed, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, removed)

		_, err = repo.Find(ctx, created.ID)
		assert.ErrorIs(t, err, repository.ErrNoteNotFound)
	})

	t.Run("ids are not reused after delete", func(t *testing.T) {
		repo := newRepo(t)
		a, err := repo.Create(ctx, SampleDraft("A", ""))
		require.NoError(t, err)
		b, err := repo.Create(ctx, SampleDraft("B", ""))
		require.NoError(t, err)
		_, err = repo.Delete(ctx, b.ID)
		require.NoError(t, err)

		c, err := repo.Create(ctx, SampleDraft("C", ""))
		require.NoError(t, err)
		assert.Greater(t, c.ID, b.ID)
		assert.Greater(t, c.ID, a.ID)
	})

	t.Run("list filters by owner", func(t *testing.T) {
		repo := newRepo(t)
		for _, owner := range []string{"alice", "bob", "alice", ""} {
			_, err := repo.Create(ctx, SampleDraft("owned by "+owner, owner))
			require.NoError(t, err)
		}

		all, err := repo.List(ctx, repository.NoteFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 4)
		for i := 1; i < len(all); i++ {
			assert.Less(t, all[i-1].ID, all[i].ID, "list is ordered by id")
		}

		alice, err := repo.List(ctx, repository.NoteFilter{OwnerID: "alice"})
		require.NoError(t, err)
		assert.Len(t, alice, 2)
		for _, n := range alice {
			assert.Equal(t, "alice", n.UserID)
		}

		nobody, err := repo.List(ctx, repository.NoteFilter{OwnerID: "carol"})
		require.NoError(t, err)
		assert.Empty(t, nobody)
	})

	t.Run("concurrent creates get distinct ids", func(t *testing.T) {
		repo := newRepo(t)
		const workers = 8

		var wg sync.WaitGroup
		idCh := make(chan int64, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, err := repo.Create(ctx, SampleDraft("parallel", ""))
				if assert.NoError(t, err) {
					idCh <- n.ID
				}
			}()
		}
		wg.Wait()
		close(idCh)

		seen := make(map[int64]bool)
		for id := range idCh {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
		assert.Len(t, seen, workers)
	})
}

// SampleDraft builds a small pipeline-shaped draft
func SampleDraft(title, owner string) note.Draft {
	heading := note.NewBlock(note.BlockTypeHeading)
	heading.Content = "Introduction"
	todo := note.NewBlock(note.BlockTypeTodo)
	todo.Content = "Review"
	return note.Draft{
		Title: title,
		Content: note.Content{
			Blocks: []note.Block{heading, todo},
			VideoMetadata: &note.VideoMetadata{
				Duration:      180,
				FileName:      "lecture.mp4",
				FileSize:      1024,
				DateProcessed: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			},
		},
		OriginalVideo: "lecture.mp4",
		UserID:        owner,
	}
}
