package note

import (
	"strings"
	"time"
)

// DefaultTitle replaces a blank title on create and update
const DefaultTitle = "Untitled"

// Note is a persisted block document
type Note struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Content       Content   `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	OriginalVideo string    `json:"originalVideo,omitempty"`
	UserID        string    `json:"userId,omitempty"`
}

// Draft carries the fields of a note that does not exist yet
type Draft struct {
	Title         string
	Content       Content
	OriginalVideo string
	UserID        string
}

// Patch is a partial update; nil fields are left untouched
type Patch struct {
	Title   *string
	Content *Content
}

// Summary is the list view of a note without its content
type Summary struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	OriginalVideo string    `json:"originalVideo,omitempty"`
}

// NewNote materialises a draft with the id and clock supplied by a store
func NewNote(id int64, d Draft, now time.Time) *Note {
	title := d.Title
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	return &Note{
		ID:            id,
		Title:         title,
		Content:       d.Content.Clone(),
		CreatedAt:     now,
		UpdatedAt:     now,
		OriginalVideo: d.OriginalVideo,
		UserID:        d.UserID,
	}
}

// Apply merges the patch and refreshes UpdatedAt.
// UpdatedAt always moves strictly forward, even when the clock has not advanced.
func (n *Note) Apply(p Patch, now time.Time) {
	if p.Title != nil {
		n.Title = *p.Title
		if strings.TrimSpace(n.Title) == "" {
			n.Title = DefaultTitle
		}
	}
	if p.Content != nil {
		n.Content = p.Content.Clone()
	}
	if !now.After(n.UpdatedAt) {
		now = n.UpdatedAt.Add(time.Nanosecond)
	}
	n.UpdatedAt = now
}

// Summary returns the list view of the note
func (n *Note) Summary() Summary {
	return Summary{
		ID:            n.ID,
		Title:         n.Title,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
		OriginalVideo: n.OriginalVideo,
	}
}

// Clone returns a deep copy so stores never hand out shared references
func (n *Note) Clone() *Note {
	c := *n
	c.Content = n.Content.Clone()
	return &c
}
