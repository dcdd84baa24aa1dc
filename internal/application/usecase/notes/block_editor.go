package notes

import (
	"context"

	"github.com/YoshitsuguKoike/lecnote/internal/app"
	"github.com/YoshitsuguKoike/lecnote/internal/application/dto"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/model/note"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/repository"
)

// BlockEditor applies block operations to a persisted note.
// Each call loads the note, transforms its blocks and saves them through Update.
type BlockEditor struct {
	repo   repository.NoteRepository
	logger app.Logger
}

// NewBlockEditor creates a new block editor; a nil logger uses the global one
func NewBlockEditor(repo repository.NoteRepository, logger app.Logger) *BlockEditor {
	return &BlockEditor{repo: repo, logger: app.LoggerOr(logger)}
}

// AddBlock inserts a block after in.AfterID and returns the note and the new block id
func (e *BlockEditor) AddBlock(ctx context.Context, in dto.AddBlockInput) (*note.Note, string, error) {
	t := in.Type
	if t == "" {
		t = note.BlockTypeEmpty
	}
	if _, err := note.ParseBlockType(string(t)); err != nil {
		return nil, "", err
	}

	var newID string
	n, err := e.edit(ctx, in.NoteID, func(blocks []note.Block) ([]note.Block, error) {
		var out []note.Block
		out, newID = note.InsertAfterWithType(blocks, in.AfterID, t)
		return out, nil
	})
	if err != nil {
		return nil, "", err
	}
	return n, newID, nil
}

// RemoveBlock deletes a block; the document keeps at least one block
func (e *BlockEditor) RemoveBlock(ctx context.Context, noteID int64, blockID string) (*note.Note, error) {
	return e.edit(ctx, noteID, func(blocks []note.Block) ([]note.Block, error) {
		return note.DeleteBlock(blocks, blockID), nil
	})
}

// ConvertBlock changes a block's type, keeping its id and content
func (e *BlockEditor) ConvertBlock(ctx context.Context, noteID int64, blockID string, t note.BlockType) (*note.Note, error) {
	if _, err := note.ParseBlockType(string(t)); err != nil {
		return nil, err
	}
	return e.edit(ctx, noteID, func(blocks []note.Block) ([]note.Block, error) {
		pos := note.IndexOf(blocks, blockID)
		if pos < 0 {
			return nil, &note.ValidationError{Problems: []string{"block not found: " + blockID}}
		}
		return note.ReplaceBlock(blocks, note.ConvertType(blocks[pos], t))
	})
}

// SetBlockContent replaces a block's text
func (e *BlockEditor) SetBlockContent(ctx context.Context, noteID int64, blockID, text string) (*note.Note, error) {
	return e.edit(ctx, noteID, func(blocks []note.Block) ([]note.Block, error) {
		return note.SetContent(blocks, blockID, text)
	})
}

// CheckBlock ticks or unticks a todo block
func (e *BlockEditor) CheckBlock(ctx context.Context, noteID int64, blockID string, checked bool) (*note.Note, error) {
	return e.edit(ctx, noteID, func(blocks []note.Block) ([]note.Block, error) {
		return note.SetChecked(blocks, blockID, checked)
	})
}

// MoveBlock shifts a block by delta positions
func (e *BlockEditor) MoveBlock(ctx context.Context, noteID int64, blockID string, delta int) (*note.Note, error) {
	return e.edit(ctx, noteID, func(blocks []note.Block) ([]note.Block, error) {
		return note.MoveBlock(blocks, blockID, delta)
	})
}

func (e *BlockEditor) edit(ctx context.Context, noteID int64, op func([]note.Block) ([]note.Block, error)) (*note.Note, error) {
	current, err := e.repo.Find(ctx, noteID)
	if err != nil {
		return nil, err
	}

	blocks, err := op(current.Content.Blocks)
	if err != nil {
		return nil, err
	}

	content := current.Content.Clone()
	content.Blocks = blocks
	if err := content.Validate(); err != nil {
		return nil, err
	}

	updated, err := e.repo.Update(ctx, noteID, note.Patch{Content: &content})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Edited note %d, now %d blocks", noteID, len(blocks))
	return updated, nil
}
