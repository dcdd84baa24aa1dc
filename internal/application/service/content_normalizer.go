package service

import (
	"fmt"
	"maps"
	"strings"

	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/model/note"
)

// NormalizedContent is the outcome of normalizing one generation result
type NormalizedContent struct {
	Title    string       // Generated title, empty when none could be determined
	Blocks   []note.Block // Always valid and non-empty
	Fallback bool         // True when the fallback document was substituted
	Reason   string       // Why the fallback was used
}

// ContentNormalizer turns untrusted generator output into a valid block document
type ContentNormalizer struct{}

// NewContentNormalizer creates a new content normalizer
func NewContentNormalizer() *ContentNormalizer {
	return &ContentNormalizer{}
}

// Normalize never fails. Every block it returns carries a fresh identifier.
func (n *ContentNormalizer) Normalize(result output.GenerationResult) NormalizedContent {
	switch r := result.(type) {
	case output.Parsed:
		return n.normalizeParsed(r)
	case output.Malformed:
		return fallback("", "malformed response: "+r.Reason)
	default:
		return fallback("", fmt.Sprintf("unsupported generation result %T", result))
	}
}

func (n *ContentNormalizer) normalizeParsed(p output.Parsed) NormalizedContent {
	title := strings.TrimSpace(p.Title)

	if len(p.Blocks) == 0 {
		return fallback(title, "generated document has no blocks")
	}

	blocks := make([]note.Block, 0, len(p.Blocks)+1)
	hasTitleBlock := false
	for i, gb := range p.Blocks {
		t, err := note.ParseBlockType(gb.Type)
		if err != nil {
			return fallback(title, fmt.Sprintf("blocks[%d]: unknown block type %q", i, gb.Type))
		}

		b := note.NewBlock(t)
		b.Content = gb.Content
		if t == note.BlockTypeTodo && gb.Checked != nil {
			v := *gb.Checked
			b.Checked = &v
		}
		if len(gb.Metadata) > 0 {
			b.Metadata = maps.Clone(gb.Metadata)
		}

		if t == note.BlockTypeTitle {
			hasTitleBlock = true
			if title == "" {
				title = strings.TrimSpace(b.Content)
			}
		}
		blocks = append(blocks, b)
	}

	if !hasTitleBlock && title != "" {
		head := note.NewBlock(note.BlockTypeTitle)
		head.Content = title
		blocks = append([]note.Block{head}, blocks...)
	}

	content := note.Content{Blocks: blocks}
	if err := content.Validate(); err != nil {
		return fallback(title, err.Error())
	}
	return NormalizedContent{Title: title, Blocks: blocks}
}

func fallback(title, reason string) NormalizedContent {
	return NormalizedContent{
		Title:    title,
		Blocks:   note.FallbackContent(title).Blocks,
		Fallback: true,
		Reason:   reason,
	}
}
