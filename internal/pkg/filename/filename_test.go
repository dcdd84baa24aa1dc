package filename

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "lecture.mp4", "lecture.mp4"},
		{"spaces", "Week 3 - Merge Sort.mp4", "Week_3_-_Merge_Sort.mp4"},
		{"path traversal", "../../etc/passwd", "passwd"},
		{"windows path", `C:\videos\intro.mov`, "intro.mov"},
		{"control characters", "bad\x00name\n.mkv", "bad_name_.mkv"},
		{"fullwidth is normalised", "ｌｅｃｔｕｒｅ.mp4", "lecture.mp4"},
		{"unicode letters kept", "クイックソート.mp4", "クイックソート.mp4"},
		{"empty", "", "upload"},
		{"only dots", "...", "upload"},
		{"reserved", "con.mp4", "_con.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in, 0))
		})
	}
}

func TestSanitize_Truncates(t *testing.T) {
	long := strings.Repeat("あ", 100) + ".mp4"
	got := Sanitize(long, 64)
	assert.LessOrEqual(t, len(got), 64)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, ".mp4"), "extension kept: %s", got)
}

func TestExportName(t *testing.T) {
	assert.Equal(t, "merge_sort_algorithm__divide_and_conquer.md", ExportName("Merge Sort Algorithm: Divide and Conquer", ".md"))
	assert.Equal(t, "note.md", ExportName("", ".md"))
}
