package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/model/note"
)

func boolPtr(b bool) *bool { return &b }

func TestContentNormalizer_Parsed(t *testing.T) {
	result := output.Parsed{
		Title: "Merge Sort",
		Blocks: []output.GeneratedBlock{
			{ID: "dup", Type: "title", Content: "Merge Sort"},
			{ID: "dup", Type: "heading", Content: "Intro"},
			{Type: "todo", Content: "Practice"},
			{Type: "todo", Content: "Done already", Checked: boolPtr(true)},
			{Type: "paragraph", Content: "text", Checked: boolPtr(true)},
			{Type: "image", Content: "diagram", Metadata: map[string]any{"url": "https://example.com/a.png"}},
		},
	}

	got := NewContentNormalizer().Normalize(result)

	assert.False(t, got.Fallback)
	assert.Equal(t, "Merge Sort", got.Title)
	require.Len(t, got.Blocks, 6)
	require.NoError(t, note.Content{Blocks: got.Blocks}.Validate())

	assert.NotEqual(t, "dup", got.Blocks[0].ID, "generator ids are replaced")
	assert.NotEqual(t, got.Blocks[0].ID, got.Blocks[1].ID)

	require.NotNil(t, got.Blocks[2].Checked)
	assert.False(t, *got.Blocks[2].Checked, "todo without checked becomes false")
	assert.True(t, got.Blocks[3].IsChecked())
	assert.Nil(t, got.Blocks[4].Checked, "checked is dropped from non-todo blocks")
	assert.Equal(t, "https://example.com/a.png", got.Blocks[5].Metadata["url"])
}

func TestContentNormalizer_PrependsTitleBlock(t *testing.T) {
	got := NewContentNormalizer().Normalize(output.Parsed{
		Title:  "Graphs",
		Blocks: []output.GeneratedBlock{{Type: "paragraph", Content: "BFS"}},
	})

	require.Len(t, got.Blocks, 2)
	assert.Equal(t, note.BlockTypeTitle, got.Blocks[0].Type)
	assert.Equal(t, "Graphs", got.Blocks[0].Content)
}

func TestContentNormalizer_TitleFromBlock(t *testing.T) {
	got := NewContentNormalizer().Normalize(output.Parsed{
		Blocks: []output.GeneratedBlock{{Type: "title", Content: " Heaps "}, {Type: "paragraph", Content: "p"}},
	})
	assert.Equal(t, "Heaps", got.Title)
	assert.Len(t, got.Blocks, 2)
}

func TestContentNormalizer_Fallback(t *testing.T) {
	tests := []struct {
		name      string
		result    output.GenerationResult
		wantTitle string
	}{
		{"malformed", output.Malformed{Raw: "oops", Reason: "invalid JSON"}, note.DefaultGeneratedTitle},
		{"no blocks", output.Parsed{Title: "Kept"}, "Kept"},
		{"unknown type", output.Parsed{Title: "Kept", Blocks: []output.GeneratedBlock{{Type: "table", Content: "x"}}}, "Kept"},
		{"nil result", nil, note.DefaultGeneratedTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewContentNormalizer().Normalize(tt.result)

			assert.True(t, got.Fallback)
			assert.NotEmpty(t, got.Reason)
			require.Len(t, got.Blocks, 2)
			assert.Equal(t, note.BlockTypeTitle, got.Blocks[0].Type)
			assert.Equal(t, tt.wantTitle, got.Blocks[0].Content)
			assert.Equal(t, note.BlockTypeParagraph, got.Blocks[1].Type)
			assert.Equal(t, note.FallbackMessage, got.Blocks[1].Content)
			assert.NoError(t, note.Content{Blocks: got.Blocks}.Validate())
		})
	}
}

func TestContentNormalizer_FreshIDsEachCall(t *testing.T) {
	n := NewContentNormalizer()
	in := output.Parsed{Blocks: []output.GeneratedBlock{{Type: "paragraph", Content: "p"}}}

	a := n.Normalize(in)
	b := n.Normalize(in)
	assert.NotEqual(t, a.Blocks[0].ID, b.Blocks[0].ID)
}
