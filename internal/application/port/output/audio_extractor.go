package output

import (
	"context"
	"fmt"
)

// AudioExtractor turns a staged video file into an audio-only file.
// Failures carry the diagnostic output of the underlying tool.
type AudioExtractor interface {
	// Extract writes the audio track of videoPath to audioPath
	Extract(ctx context.Context, videoPath, audioPath string) error

	// HealthCheck verifies the extraction tool is available
	HealthCheck(ctx context.Context) error
}

// ExtractionError is returned by AudioExtractor when the tool fails or produces no audio
type ExtractionError struct {
	Output string // Diagnostic output of the tool
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("audio extraction failed: %v", e.Err)
	}
	return fmt.Sprintf("audio extraction failed: %v\n%s", e.Err, e.Output)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
