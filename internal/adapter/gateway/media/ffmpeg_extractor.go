// Package media extracts audio tracks from uploaded videos
package media

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
	"github.com/YoshitsuguKoike/lecnote/internal/interface/external/ffmpeg"
)

// CommandRunner executes the extraction tool; ffmpeg.Runner satisfies it
type CommandRunner interface {
	Run(ctx context.Context, args ...string) (string, error)
	Version(ctx context.Context) (string, error)
}

var _ CommandRunner = ffmpeg.Runner{}

// FFmpegExtractor implements output.AudioExtractor with ffmpeg
type FFmpegExtractor struct {
	runner CommandRunner
	fs     afero.Fs
}

var _ output.AudioExtractor = (*FFmpegExtractor)(nil)

// NewFFmpegExtractor creates an extractor; fs is where ffmpeg writes its output
func NewFFmpegExtractor(runner CommandRunner, fs afero.Fs) *FFmpegExtractor {
	return &FFmpegExtractor{runner: runner, fs: fs}
}

// Extract runs `ffmpeg -nostdin -i video -q:a 0 -map a audio`
func (e *FFmpegExtractor) Extract(ctx context.Context, videoPath, audioPath string) error {
	out, err := e.runner.Run(ctx, "-nostdin", "-i", videoPath, "-q:a", "0", "-map", "a", audioPath)
	if err != nil {
		return &output.ExtractionError{Output: out, Err: err}
	}

	// ffmpeg exits 0 for some inputs without an audio stream
	exists, err := afero.Exists(e.fs, audioPath)
	if err != nil {
		return &output.ExtractionError{Output: out, Err: fmt.Errorf("stat %s: %w", audioPath, err)}
	}
	if !exists {
		return &output.ExtractionError{Output: out, Err: fmt.Errorf("ffmpeg produced no output at %s", audioPath)}
	}
	return nil
}

// HealthCheck verifies ffmpeg can be executed
func (e *FFmpegExtractor) HealthCheck(ctx context.Context) error {
	if _, err := e.runner.Version(ctx); err != nil {
		return fmt.Errorf("ffmpeg unavailable: %w", err)
	}
	return nil
}
