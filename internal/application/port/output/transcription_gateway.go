package output

import "context"

// TranscriptionGateway converts audio into text.
// Implementations retry transient failures themselves and only return an error
// once their retry budget is exhausted.
type TranscriptionGateway interface {
	// Transcribe returns the transcript of the audio
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResult, error)

	// Name identifies the backing provider (e.g. "openai-whisper", "stub")
	Name() string

	// HealthCheck verifies the provider is reachable
	HealthCheck(ctx context.Context) error
}

// TranscriptionRequest represents a request to transcribe audio
type TranscriptionRequest struct {
	Audio    []byte // Raw audio bytes (mp3)
	FileName string // Original upload name, used as a hint by deterministic providers
}

// TranscriptionResult represents the transcript of an audio file
type TranscriptionResult struct {
	Text     string  // Transcript text
	Duration float64 // Audio duration in seconds, 0 when unknown
}
