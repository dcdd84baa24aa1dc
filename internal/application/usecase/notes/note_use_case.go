// Package notes manages persisted notes and edits their blocks
package notes

import (
	"context"
	"fmt"

	"github.com/YoshitsuguKoike/lecnote/internal/app"
	"github.com/YoshitsuguKoike/lecnote/internal/application/dto"
	"github.com/YoshitsuguKoike/lecnote/internal/application/service"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/model/note"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/repository"
)

// NoteUseCase implements the note CRUD operations
type NoteUseCase struct {
	repo     repository.NoteRepository
	exporter *service.MarkdownExporter
	logger   app.Logger
}

// NewNoteUseCase creates a new note use case; a nil logger uses the global one
func NewNoteUseCase(repo repository.NoteRepository, logger app.Logger) *NoteUseCase {
	return &NoteUseCase{
		repo:     repo,
		exporter: service.NewMarkdownExporter(),
		logger:   app.LoggerOr(logger),
	}
}

// Create stores a note built directly from content.
// Blocks submitted without an id get one; the result must pass validation.
func (u *NoteUseCase) Create(ctx context.Context, in dto.CreateNoteInput) (*note.Note, error) {
	content := note.NewEmptyContent()
	if in.Content != nil {
		content = in.Content.AssignMissingIDs()
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}

	n, err := u.repo.Create(ctx, note.Draft{
		Title:         in.Title,
		Content:       content,
		OriginalVideo: in.OriginalVideo,
		UserID:        in.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	u.logger.Info("Created note %d", n.ID)
	return n, nil
}

// Get returns repository.ErrNoteNotFound for an unknown id
func (u *NoteUseCase) Get(ctx context.Context, id int64) (*note.Note, error) {
	return u.repo.Find(ctx, id)
}

// List returns the summaries of the notes owned by ownerID, or of all notes when empty
func (u *NoteUseCase) List(ctx context.Context, ownerID string) ([]note.Summary, error) {
	notes, err := u.repo.List(ctx, repository.NoteFilter{OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	summaries := make([]note.Summary, 0, len(notes))
	for _, n := range notes {
		summaries = append(summaries, n.Summary())
	}
	return summaries, nil
}

// Update applies a partial update. An empty patch still refreshes updatedAt.
func (u *NoteUseCase) Update(ctx context.Context, id int64, in dto.UpdateNoteInput) (*note.Note, error) {
	patch := note.Patch{Title: in.Title}
	if in.Content != nil {
		content := in.Content.AssignMissingIDs()
		if content.VideoMetadata == nil {
			// Editors send blocks only; keep the provenance of generated notes
			current, err := u.repo.Find(ctx, id)
			if err != nil {
				return nil, err
			}
			content.VideoMetadata = current.Content.Clone().VideoMetadata
		}
		if err := content.Validate(); err != nil {
			return nil, err
		}
		patch.Content = &content
	}

	n, err := u.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	u.logger.Debug("Updated note %d", id)
	return n, nil
}

// Delete reports whether a note was removed
func (u *NoteUseCase) Delete(ctx context.Context, id int64) (bool, error) {
	removed, err := u.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete note %d: %w", id, err)
	}
	if removed {
		u.logger.Info("Deleted note %d", id)
	}
	return removed, nil
}

// Export renders a note as Markdown and returns it with its download name
func (u *NoteUseCase) Export(ctx context.Context, id int64, opts service.ExportOptions) (string, string, error) {
	n, err := u.repo.Find(ctx, id)
	if err != nil {
		return "", "", err
	}
	return u.exporter.Render(n, opts), u.exporter.FileName(n), nil
}
