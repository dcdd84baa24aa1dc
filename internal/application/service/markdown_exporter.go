package service

import (
	"fmt"
	"strings"

	"github.com/YoshitsuguKoike/lecnote/internal/domain/model/note"
	"github.com/YoshitsuguKoike/lecnote/internal/pkg/filename"
)

// ExportOptions controls what MarkdownExporter emits besides the blocks
type ExportOptions struct {
	IncludeTitle    bool
	IncludeMetadata bool
}

// DefaultExportOptions includes both the title and the video metadata header
var DefaultExportOptions = ExportOptions{IncludeTitle: true, IncludeMetadata: true}

// MarkdownExporter renders notes as Markdown documents
type MarkdownExporter struct{}

// NewMarkdownExporter creates a new markdown exporter
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Render converts a note to Markdown
func (e *MarkdownExporter) Render(n *note.Note, opts ExportOptions) string {
	var sb strings.Builder

	if opts.IncludeTitle && n.Title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", n.Title)
	}

	if vm := n.Content.VideoMetadata; opts.IncludeMetadata && vm != nil {
		total := int(vm.Duration)
		fmt.Fprintf(&sb, "> Generated from: %s\n", vm.FileName)
		fmt.Fprintf(&sb, "> Duration: %dm %ds\n", total/60, total%60)
		fmt.Fprintf(&sb, "> Processed: %s\n\n", vm.DateProcessed.Format("2006-01-02"))
	}

	for _, b := range n.Content.Blocks {
		writeBlock(&sb, b)
	}
	return sb.String()
}

// FileName returns the download name for an exported note
func (e *MarkdownExporter) FileName(n *note.Note) string {
	return filename.ExportName(n.Title, ".md")
}

func writeBlock(sb *strings.Builder, b note.Block) {
	switch b.Type {
	case note.BlockTypeTitle:
		fmt.Fprintf(sb, "# %s\n\n", b.Content)
	case note.BlockTypeHeading:
		fmt.Fprintf(sb, "## %s\n\n", b.Content)
	case note.BlockTypeSubheading:
		fmt.Fprintf(sb, "### %s\n\n", b.Content)
	case note.BlockTypeParagraph:
		fmt.Fprintf(sb, "%s\n\n", b.Content)
	case note.BlockTypeBulletList:
		fmt.Fprintf(sb, "* %s\n", b.Content)
	case note.BlockTypeNumberedList:
		fmt.Fprintf(sb, "1. %s\n", b.Content)
	case note.BlockTypeQuote:
		fmt.Fprintf(sb, "> %s\n\n", b.Content)
	case note.BlockTypeCode:
		fmt.Fprintf(sb, "```\n%s\n```\n\n", b.Content)
	case note.BlockTypeTodo:
		mark := " "
		if b.IsChecked() {
			mark = "x"
		}
		fmt.Fprintf(sb, "- [%s] %s\n", mark, b.Content)
	case note.BlockTypeCallout:
		fmt.Fprintf(sb, "> 💡 **Note:** %s\n\n", b.Content)
	case note.BlockTypeDivider:
		sb.WriteString("---\n\n")
	case note.BlockTypeEmpty:
		sb.WriteString("\n")
	case note.BlockTypeImage:
		url, _ := b.Metadata["url"].(string)
		fmt.Fprintf(sb, "![%s](%s)\n\n", b.Content, url)
	}
}
