package note

import (
	"fmt"
	"time"
)

const (
	// DefaultGeneratedTitle is used when generation yields no title
	DefaultGeneratedTitle = "Untitled Notes"

	// FallbackMessage is the paragraph placed in documents whose generation failed
	FallbackMessage = "There was an error generating structured notes."
)

// VideoMetadata describes the upload a note was generated from
type VideoMetadata struct {
	Duration      float64   `json:"duration"` // seconds
	FileName      string    `json:"fileName"`
	FileSize      int64     `json:"fileSize"` // bytes
	DateProcessed time.Time `json:"dateProcessed"`
}

// Content is the ordered block document of a note
type Content struct {
	Blocks        []Block        `json:"blocks"`
	VideoMetadata *VideoMetadata `json:"videoMetadata,omitempty"`
}

// Validate checks the document against the block model:
// at least one block, known types, unique non-empty ids, checked only on todo blocks.
func (c Content) Validate() error {
	var problems []string

	if len(c.Blocks) == 0 {
		problems = append(problems, "content must contain at least one block")
	}

	seen := make(map[string]int, len(c.Blocks))
	for i, b := range c.Blocks {
		if !b.Type.IsValid() {
			problems = append(problems, fmt.Sprintf("blocks[%d]: unknown block type %q", i, b.Type))
		}
		if b.ID == "" {
			problems = append(problems, fmt.Sprintf("blocks[%d]: missing id", i))
		} else if prev, dup := seen[b.ID]; dup {
			problems = append(problems, fmt.Sprintf("blocks[%d]: id %s already used by blocks[%d]", i, b.ID, prev))
		} else {
			seen[b.ID] = i
		}
		if b.Checked != nil && b.Type != BlockTypeTodo {
			problems = append(problems, fmt.Sprintf("blocks[%d]: checked is only allowed on todo blocks", i))
		}
	}

	if c.VideoMetadata != nil {
		if c.VideoMetadata.Duration < 0 {
			problems = append(problems, "videoMetadata.duration must not be negative")
		}
		if c.VideoMetadata.FileSize < 0 {
			problems = append(problems, "videoMetadata.fileSize must not be negative")
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Clone returns a deep copy of the document
func (c Content) Clone() Content {
	out := Content{Blocks: cloneAll(c.Blocks)}
	if c.VideoMetadata != nil {
		vm := *c.VideoMetadata
		out.VideoMetadata = &vm
	}
	return out
}

// AssignMissingIDs gives a fresh identifier to every block without one
func (c Content) AssignMissingIDs() Content {
	out := c.Clone()
	for i := range out.Blocks {
		if out.Blocks[i].ID == "" {
			out.Blocks[i].ID = NewBlockID()
		}
	}
	return out
}

// NewEmptyContent returns the document of a blank note
func NewEmptyContent() Content {
	title := NewBlock(BlockTypeTitle)
	title.Content = DefaultGeneratedTitle
	return Content{Blocks: []Block{title, NewEmptyBlock()}}
}

// FallbackContent returns the minimal valid document substituted for malformed generator output
func FallbackContent(title string) Content {
	if title == "" {
		title = DefaultGeneratedTitle
	}
	head := NewBlock(BlockTypeTitle)
	head.Content = title
	body := NewBlock(BlockTypeParagraph)
	body.Content = FallbackMessage
	return Content{Blocks: []Block{head, body}}
}
