package media

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
)

type mockRunner struct {
	runFunc     func(ctx context.Context, args ...string) (string, error)
	versionFunc func(ctx context.Context) (string, error)
}

func (m *mockRunner) Run(ctx context.Context, args ...string) (string, error) {
	return m.runFunc(ctx, args...)
}

func (m *mockRunner) Version(ctx context.Context) (string, error) {
	return m.versionFunc(ctx)
}

func TestFFmpegExtractor_Extract(t *testing.T) {
	fs := afero.NewMemMapFs()
	var gotArgs []string
	runner := &mockRunner{runFunc: func(ctx context.Context, args ...string) (string, error) {
		gotArgs = args
		return "", afero.WriteFile(fs, args[len(args)-1], []byte("mp3"), 0o600)
	}}

	err := NewFFmpegExtractor(runner, fs).Extract(context.Background(), "/tmp/v.mp4", "/tmp/a.mp3")
	require.NoError(t, err)
	assert.Equal(t, []string{"-nostdin", "-i", "/tmp/v.mp4", "-q:a", "0", "-map", "a", "/tmp/a.mp3"}, gotArgs)
}

func TestFFmpegExtractor_FailureCarriesOutput(t *testing.T) {
	cause := errors.New("exit status 1")
	runner := &mockRunner{runFunc: func(ctx context.Context, args ...string) (string, error) {
		return "moov atom not found", cause
	}}

	err := NewFFmpegExtractor(runner, afero.NewMemMapFs()).Extract(context.Background(), "v.mp4", "a.mp3")

	var extractionErr *output.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "moov atom not found", extractionErr.Output)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "moov atom not found")
}

func TestFFmpegExtractor_MissingOutput(t *testing.T) {
	runner := &mockRunner{runFunc: func(ctx context.Context, args ...string) (string, error) {
		return "Output file #0 does not contain any stream", nil
	}}

	err := NewFFmpegExtractor(runner, afero.NewMemMapFs()).Extract(context.Background(), "v.mp4", "a.mp3")

	var extractionErr *output.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Contains(t, extractionErr.Output, "does not contain any stream")
}

func TestFFmpegExtractor_HealthCheck(t *testing.T) {
	ok := &mockRunner{versionFunc: func(ctx context.Context) (string, error) { return "ffmpeg version 6", nil }}
	assert.NoError(t, NewFFmpegExtractor(ok, afero.NewMemMapFs()).HealthCheck(context.Background()))

	missing := &mockRunner{versionFunc: func(ctx context.Context) (string, error) {
		return "", errors.New("executable file not found in $PATH")
	}}
	err := NewFFmpegExtractor(missing, afero.NewMemMapFs()).HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffmpeg unavailable")
}
