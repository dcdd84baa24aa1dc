// Package lecture turns uploaded lecture videos into persisted notes
package lecture

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/lecnote/internal/app"
	"github.com/YoshitsuguKoike/lecnote/internal/application/dto"
	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
	"github.com/YoshitsuguKoike/lecnote/internal/application/service"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/model/note"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/repository"
)

// DefaultMaxUploadBytes is the largest accepted video (200 MiB)
const DefaultMaxUploadBytes int64 = 200 * 1024 * 1024

// DefaultVideoExtensions are the accepted upload extensions
var DefaultVideoExtensions = []string{".mp4", ".mov", ".m4v", ".webm", ".mkv", ".avi", ".mpeg", ".mpg", ".wmv", ".3gp"}

// ProcessVideoUseCase runs the video to note pipeline.
// It is safe for concurrent use; runs share only the store and the workspace root.
type ProcessVideoUseCase struct {
	workspace   output.Workspace
	extractor   output.AudioExtractor
	transcriber output.TranscriptionGateway
	generator   output.NoteGenerationGateway
	repo        repository.NoteRepository
	normalizer  *service.ContentNormalizer

	logger         app.Logger
	now            func() time.Time
	maxUploadBytes int64
	extensions     map[string]bool
}

// Option customises a ProcessVideoUseCase
type Option func(*ProcessVideoUseCase)

// WithLogger sets the logger
func WithLogger(l app.Logger) Option {
	return func(u *ProcessVideoUseCase) { u.logger = l }
}

// WithClock sets the time source for videoMetadata.dateProcessed
func WithClock(now func() time.Time) Option {
	return func(u *ProcessVideoUseCase) { u.now = now }
}

// WithMaxUploadBytes overrides the upload size limit; n <= 0 keeps the default
func WithMaxUploadBytes(n int64) Option {
	return func(u *ProcessVideoUseCase) {
		if n > 0 {
			u.maxUploadBytes = n
		}
	}
}

// WithVideoExtensions replaces the accepted extensions
func WithVideoExtensions(exts ...string) Option {
	return func(u *ProcessVideoUseCase) {
		if len(exts) > 0 {
			u.extensions = extensionSet(exts)
		}
	}
}

// NewProcessVideoUseCase creates a new pipeline
func NewProcessVideoUseCase(
	workspace output.Workspace,
	extractor output.AudioExtractor,
	transcriber output.TranscriptionGateway,
	generator output.NoteGenerationGateway,
	repo repository.NoteRepository,
	opts ...Option,
) *ProcessVideoUseCase {
	u := &ProcessVideoUseCase{
		workspace:      workspace,
		extractor:      extractor,
		transcriber:    transcriber,
		generator:      generator,
		repo:           repo,
		normalizer:     service.NewContentNormalizer(),
		now:            time.Now,
		maxUploadBytes: DefaultMaxUploadBytes,
		extensions:     extensionSet(DefaultVideoExtensions),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = app.LoggerOr(u.logger)
	return u
}

// Execute processes one video into a persisted note.
// Temporary files are removed on every path once staging has succeeded.
func (u *ProcessVideoUseCase) Execute(ctx context.Context, in dto.ProcessVideoInput) (*note.Note, error) {
	if err := u.precheck(in); err != nil {
		return nil, err
	}
	u.logger.Info("Processing video %s (%d bytes)", in.FileName, in.Size())

	// 1. Stage the upload
	videoPath, err := u.workspace.Stage(ctx, in.FileName, in.Video)
	if err != nil {
		return nil, newPipelineError(KindStorage, "Failed to store uploaded video", err)
	}
	u.logger.Debug("Staged video at %s", videoPath)
	defer u.cleanup(videoPath)

	audioPath, err := u.workspace.AudioPath(ctx)
	if err != nil {
		return nil, newPipelineError(KindStorage, "Failed to prepare audio file", err)
	}
	defer u.cleanup(audioPath)

	// 2. Extract the audio track
	u.logger.Info("Extracting audio to %s", audioPath)
	if err := u.extractor.Extract(ctx, videoPath, audioPath); err != nil {
		pe := newPipelineError(KindAudioExtraction, "Failed to extract audio", err)
		var ee *output.ExtractionError
		if errors.As(err, &ee) {
			pe.Detail = strings.TrimSpace(ee.Output)
		} else {
			pe.Detail = err.Error()
		}
		return nil, pe
	}

	// 3. Read it back
	audio, err := u.workspace.ReadFile(ctx, audioPath)
	if err != nil {
		return nil, newPipelineError(KindStorage, "Failed to read audio file", err)
	}
	u.logger.Debug("Read audio file %s, size: %d bytes", audioPath, len(audio))

	// 4. Transcribe
	u.logger.Info("Transcribing audio with %s", u.transcriber.Name())
	transcript, err := u.transcriber.Transcribe(ctx, output.TranscriptionRequest{Audio: audio, FileName: in.FileName})
	if err != nil {
		return nil, newPipelineError(KindTranscription, "Transcription failed", err)
	}
	u.logger.Debug("Transcript: %d characters, %.0fs", len(transcript.Text), transcript.Duration)

	// 5. Generate
	u.logger.Info("Generating notes with %s", u.generator.Name())
	generated, err := u.generator.Generate(ctx, output.GenerationRequest{Transcript: transcript.Text, FileName: in.FileName})
	if err != nil {
		return nil, newPipelineError(KindNoteGeneration, "Notes generation failed", err)
	}

	// 6. Normalize; never fails
	normalized := u.normalizer.Normalize(generated)
	if normalized.Fallback {
		u.logger.Warn("Using fallback notes for %s: %s", in.FileName, normalized.Reason)
	}

	title := normalized.Title
	if title == "" {
		title = note.DefaultGeneratedTitle
	}

	// 7. Persist
	created, err := u.repo.Create(ctx, note.Draft{
		Title: title,
		Content: note.Content{
			Blocks: normalized.Blocks,
			VideoMetadata: &note.VideoMetadata{
				Duration:      transcript.Duration,
				FileName:      in.FileName,
				FileSize:      in.Size(),
				DateProcessed: u.now().UTC(),
			},
		},
		OriginalVideo: in.FileName,
		UserID:        in.OwnerID,
	})
	if err != nil {
		return nil, newPipelineError(KindStorage, "Failed to save note", err)
	}

	u.logger.Info("Created note %d %q with %d blocks", created.ID, created.Title, len(created.Content.Blocks))
	return created, nil
}

func (u *ProcessVideoUseCase) precheck(in dto.ProcessVideoInput) error {
	var problem string
	switch {
	case strings.TrimSpace(in.FileName) == "":
		problem = "No video file uploaded: file name is empty"
	case len(in.Video) == 0:
		problem = "No video file uploaded: video is empty"
	case in.Size() > u.maxUploadBytes:
		problem = fmt.Sprintf("Video is too large: %d bytes exceeds the %d byte limit", in.Size(), u.maxUploadBytes)
	case !u.extensions[strings.ToLower(filepath.Ext(in.FileName))]:
		problem = fmt.Sprintf("Only video files are allowed: %s", in.FileName)
	default:
		return nil
	}
	return &PipelineError{Kind: KindValidation, Message: problem}
}

// cleanup removes a temp file; failures are logged, never returned
func (u *ProcessVideoUseCase) cleanup(path string) {
	// The request context may already be cancelled here
	if err := u.workspace.Remove(context.Background(), path); err != nil {
		u.logger.Warn("Clean-up of %s failed: %v", path, err)
	}
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	return set
}
