package storage_test

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/lecnote/internal/adapter/gateway/storage"
)

func TestTempWorkspace_StageReadRemove(t *testing.T) {
	ctx := context.Background()
	ws := storage.NewTempWorkspace(afero.NewMemMapFs(), "/tmp/lecnote-temp")

	p, err := ws.Stage(ctx, "Week 1/Intro Lecture.mp4", []byte("video-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/lecnote-temp", filepath.Dir(p))
	assert.True(t, strings.HasSuffix(p, "_Intro_Lecture.mp4"), p)
	assert.True(t, ws.Exists(p))

	data, err := ws.ReadFile(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))

	require.NoError(t, ws.Remove(ctx, p))
	assert.False(t, ws.Exists(p))
	assert.NoError(t, ws.Remove(ctx, p), "removing twice is fine")

	_, err = ws.ReadFile(ctx, p)
	assert.Error(t, err)
}

func TestTempWorkspace_AudioPathIsReservedOnly(t *testing.T) {
	ctx := context.Background()
	ws := storage.NewTempWorkspace(afero.NewMemMapFs(), "/work")

	p, err := ws.AudioPath(ctx)
	require.NoError(t, err)
	assert.Equal(t, ".mp3", filepath.Ext(p))
	assert.False(t, ws.Exists(p))

	entries, err := ws.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTempWorkspace_UniqueNamesUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	ws := storage.NewTempWorkspace(afero.NewMemMapFs(), "/work")

	const n = 32
	var (
		mu    sync.Mutex
		paths = make(map[string]bool)
		wg    sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			video, err := ws.Stage(ctx, "same-name.mp4", []byte("x"))
			require.NoError(t, err)
			audio, err := ws.AudioPath(ctx)
			require.NoError(t, err)

			mu.Lock()
			defer mu.Unlock()
			paths[video] = true
			paths[audio] = true
		}()
	}
	wg.Wait()

	assert.Len(t, paths, 2*n)
}

func TestTempWorkspace_DefaultRoot(t *testing.T) {
	ws := storage.NewTempWorkspace(afero.NewMemMapFs(), "")
	assert.Equal(t, storage.DefaultTempDirName, filepath.Base(ws.Root()))
}
