package lecture

import (
	"errors"
	"fmt"
)

// ErrorKind names the pipeline stage that failed
type ErrorKind string

const (
	KindStorage         ErrorKind = "storage"
	KindAudioExtraction ErrorKind = "audio_extraction"
	KindTranscription   ErrorKind = "transcription"
	KindNoteGeneration  ErrorKind = "note_generation"
	KindValidation      ErrorKind = "validation"
)

// Sentinels for errors.Is against a PipelineError kind
var (
	ErrStorage         = errors.New("storage error")
	ErrAudioExtraction = errors.New("audio extraction error")
	ErrTranscription   = errors.New("transcription error")
	ErrNoteGeneration  = errors.New("note generation error")
	ErrValidation      = errors.New("validation error")
)

var sentinels = map[ErrorKind]error{
	KindStorage:         ErrStorage,
	KindAudioExtraction: ErrAudioExtraction,
	KindTranscription:   ErrTranscription,
	KindNoteGeneration:  ErrNoteGeneration,
	KindValidation:      ErrValidation,
}

// PipelineError is the single user-facing failure of a video processing run
type PipelineError struct {
	Kind    ErrorKind
	Message string // User-facing message naming the failed stage
	Detail  string // Tool output for extraction failures
	Err     error  // Underlying cause
}

func (e *PipelineError) Error() string {
	msg := e.Message
	if e.Err != nil && e.Kind != KindAudioExtraction {
		msg += ": " + e.Err.Error()
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s\n%s", msg, e.Detail)
	}
	return msg
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind
func (e *PipelineError) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

func newPipelineError(kind ErrorKind, message string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Err: err}
}
