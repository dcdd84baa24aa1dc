package note

import "fmt"

// BlockType is the closed set of content block kinds. The string values are
// part of the persisted and wire format.
type BlockType string

const (
	BlockTypeTitle        BlockType = "title"
	BlockTypeHeading      BlockType = "heading"
	BlockTypeSubheading   BlockType = "subheading"
	BlockTypeParagraph    BlockType = "paragraph"
	BlockTypeBulletList   BlockType = "bullet-list"
	BlockTypeNumberedList BlockType = "numbered-list"
	BlockTypeQuote        BlockType = "quote"
	BlockTypeCode         BlockType = "code"
	BlockTypeImage        BlockType = "image"
	BlockTypeTodo         BlockType = "todo"
	BlockTypeCallout      BlockType = "callout"
	BlockTypeDivider      BlockType = "divider"
	BlockTypeEmpty        BlockType = "empty"
)

// AllBlockTypes returns every block type in declaration order
func AllBlockTypes() []BlockType {
	return []BlockType{
		BlockTypeTitle,
		BlockTypeHeading,
		BlockTypeSubheading,
		BlockTypeParagraph,
		BlockTypeBulletList,
		BlockTypeNumberedList,
		BlockTypeQuote,
		BlockTypeCode,
		BlockTypeImage,
		BlockTypeTodo,
		BlockTypeCallout,
		BlockTypeDivider,
		BlockTypeEmpty,
	}
}

// String returns the string representation
func (t BlockType) String() string {
	return string(t)
}

// IsValid validates the block type
func (t BlockType) IsValid() bool {
	switch t {
	case BlockTypeTitle, BlockTypeHeading, BlockTypeSubheading, BlockTypeParagraph,
		BlockTypeBulletList, BlockTypeNumberedList, BlockTypeQuote, BlockTypeCode,
		BlockTypeImage, BlockTypeTodo, BlockTypeCallout, BlockTypeDivider, BlockTypeEmpty:
		return true
	default:
		return false
	}
}

// ParseBlockType converts a wire string into a BlockType
func ParseBlockType(s string) (BlockType, error) {
	t := BlockType(s)
	if !t.IsValid() {
		return "", &ValidationError{Problems: []string{fmt.Sprintf("unknown block type %q", s)}}
	}
	return t, nil
}
