package note

import (
	"fmt"
	"maps"
)

// Block is one typed unit of note content.
// Checked is only ever set on todo blocks.
type Block struct {
	ID       string         `json:"id" yaml:"id,omitempty"`
	Type     BlockType      `json:"type" yaml:"type"`
	Content  string         `json:"content" yaml:"content"`
	Checked  *bool          `json:"checked,omitempty" yaml:"checked,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NewBlock creates an empty block of the given type with a fresh identifier
func NewBlock(t BlockType) Block {
	b := Block{ID: NewBlockID(), Type: t}
	if t == BlockTypeTodo {
		b.Checked = boolPtr(false)
	}
	return b
}

// NewEmptyBlock creates a block of type empty
func NewEmptyBlock() Block {
	return NewBlock(BlockTypeEmpty)
}

// IsChecked reports whether a todo block is ticked
func (b Block) IsChecked() bool {
	return b.Checked != nil && *b.Checked
}

// clone copies the block so callers never share Checked or Metadata with the input
func (b Block) clone() Block {
	c := b
	if b.Checked != nil {
		c.Checked = boolPtr(*b.Checked)
	}
	if b.Metadata != nil {
		c.Metadata = maps.Clone(b.Metadata)
	}
	return c
}

// ConvertType returns the block with a new type. Identifier and content are kept verbatim.
// Converting into todo initialises checked to false when absent; converting away from
// todo drops checked, so a todo -> other -> todo round trip always comes back unchecked.
func ConvertType(b Block, t BlockType) Block {
	c := b.clone()
	c.Type = t
	if t == BlockTypeTodo {
		if c.Checked == nil {
			c.Checked = boolPtr(false)
		}
	} else {
		c.Checked = nil
	}
	return c
}

// IndexOf returns the position of the block with id, or -1
func IndexOf(blocks []Block, id string) int {
	for i := range blocks {
		if blocks[i].ID == id {
			return i
		}
	}
	return -1
}

// InsertAfter inserts a new empty block directly after anchorID and returns the new
// sequence plus the new block's id. An unknown anchor appends the block at the end.
func InsertAfter(blocks []Block, anchorID string) ([]Block, string) {
	return InsertAfterWithType(blocks, anchorID, BlockTypeEmpty)
}

// InsertAfterWithType is InsertAfter with an explicit type for the new block
func InsertAfterWithType(blocks []Block, anchorID string, t BlockType) ([]Block, string) {
	nb := NewBlock(t)
	pos := IndexOf(blocks, anchorID)
	if pos < 0 {
		pos = len(blocks) - 1
	}

	out := make([]Block, 0, len(blocks)+1)
	out = append(out, cloneAll(blocks[:pos+1])...)
	out = append(out, nb)
	out = append(out, cloneAll(blocks[pos+1:])...)
	return out, nb.ID
}

// DeleteBlock removes the block with id. A document never ends up empty: removing the
// last block leaves a single fresh empty block. An unknown id returns an unchanged copy.
func DeleteBlock(blocks []Block, id string) []Block {
	pos := IndexOf(blocks, id)
	if pos < 0 {
		return cloneAll(blocks)
	}
	if len(blocks) <= 1 {
		return []Block{NewEmptyBlock()}
	}

	out := make([]Block, 0, len(blocks)-1)
	out = append(out, cloneAll(blocks[:pos])...)
	out = append(out, cloneAll(blocks[pos+1:])...)
	return out
}

// SetContent replaces the text of one block
func SetContent(blocks []Block, id, text string) ([]Block, error) {
	pos := IndexOf(blocks, id)
	if pos < 0 {
		return nil, blockNotFound(id)
	}
	out := cloneAll(blocks)
	out[pos].Content = text
	return out, nil
}

// SetChecked ticks or unticks a todo block
func SetChecked(blocks []Block, id string, checked bool) ([]Block, error) {
	pos := IndexOf(blocks, id)
	if pos < 0 {
		return nil, blockNotFound(id)
	}
	if blocks[pos].Type != BlockTypeTodo {
		return nil, &ValidationError{Problems: []string{
			fmt.Sprintf("block %s is %s, only todo blocks can be checked", id, blocks[pos].Type),
		}}
	}
	out := cloneAll(blocks)
	out[pos].Checked = boolPtr(checked)
	return out, nil
}

// ReplaceBlock swaps the block carrying b.ID for b
func ReplaceBlock(blocks []Block, b Block) ([]Block, error) {
	pos := IndexOf(blocks, b.ID)
	if pos < 0 {
		return nil, blockNotFound(b.ID)
	}
	out := cloneAll(blocks)
	out[pos] = b.clone()
	return out, nil
}

// MoveBlock shifts a block by delta positions, clamped to the document bounds
func MoveBlock(blocks []Block, id string, delta int) ([]Block, error) {
	pos := IndexOf(blocks, id)
	if pos < 0 {
		return nil, blockNotFound(id)
	}
	target := pos + delta
	if target < 0 {
		target = 0
	}
	if target > len(blocks)-1 {
		target = len(blocks) - 1
	}

	out := cloneAll(blocks)
	moved := out[pos]
	out = append(out[:pos], out[pos+1:]...)
	out = append(out[:target], append([]Block{moved}, out[target:]...)...)
	return out, nil
}

func cloneAll(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i := range blocks {
		out[i] = blocks[i].clone()
	}
	return out
}

func blockNotFound(id string) error {
	return &ValidationError{Problems: []string{fmt.Sprintf("block not found: %s", id)}}
}

func boolPtr(b bool) *bool {
	return &b
}
