package dto

import "github.com/YoshitsuguKoike/lecnote/internal/domain/model/note"

// CreateNoteInput represents input for creating a note directly
type CreateNoteInput struct {
	Title         string
	Content       *note.Content // nil means a blank document
	OriginalVideo string
	UserID        string
}

// UpdateNoteInput represents a partial update; nil fields are left unchanged
type UpdateNoteInput struct {
	Title   *string
	Content *note.Content
}

// AddBlockInput represents input for inserting a block
type AddBlockInput struct {
	NoteID  int64
	AfterID string         // Anchor block; empty or unknown appends
	Type    note.BlockType // Zero value inserts an empty block
}
