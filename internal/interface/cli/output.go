package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/YoshitsuguKoike/lecnote/internal/application/service"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/model/note"
)

const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

func parseNoteID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid note id %q", s)
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// printNote writes a note as JSON or as exported Markdown
func printNote(w io.Writer, n *note.Note, format string) error {
	switch format {
	case "", formatJSON:
		return writeJSON(w, n)
	case formatMarkdown, "md":
		_, err := io.WriteString(w, service.NewMarkdownExporter().Render(n, service.DefaultExportOptions))
		return err
	default:
		return fmt.Errorf("unknown format %q (want json or markdown)", format)
	}
}

// printBlocks writes one line per block: id, type, checkbox and content
func printBlocks(w io.Writer, n *note.Note) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Note %d: %s\n", n.ID, n.Title)
	for _, b := range n.Content.Blocks {
		mark := ""
		if b.Type == note.BlockTypeTodo {
			mark = "[ ]"
			if b.IsChecked() {
				mark = "[x]"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, b.Type, mark, firstLine(b.Content))
	}
	return tw.Flush()
}

func printSummaries(w io.Writer, summaries []note.Summary) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "No notes")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tUPDATED\tVIDEO")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.ID, s.Title, s.UpdatedAt.Local().Format("2006-01-02 15:04"), s.OriginalVideo)
	}
	return tw.Flush()
}

// readContentFile decodes a block document from a JSON file; "-" reads stdin
func readContentFile(path string, stdin io.Reader) (*note.Content, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}

	var content note.Content
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("failed to parse content file %s: %w", path, err)
	}
	return &content, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
