package notegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
)

func TestDecodeResult_Parsed(t *testing.T) {
	raw := `{"title":"Graphs","blocks":[{"type":"heading","content":"BFS"},{"type":"todo","content":"Practice","checked":true}]}`

	parsed, ok := DecodeResult(raw).(output.Parsed)
	require.True(t, ok)
	assert.Equal(t, "Graphs", parsed.Title)
	require.Len(t, parsed.Blocks, 2)
	assert.Equal(t, "heading", parsed.Blocks[0].Type)
	require.NotNil(t, parsed.Blocks[1].Checked)
	assert.True(t, *parsed.Blocks[1].Checked)
}

func TestDecodeResult_FencedAndWrapped(t *testing.T) {
	tests := map[string]string{
		"json fence":  "```json\n{\"title\":\"T\",\"blocks\":[{\"type\":\"paragraph\",\"content\":\"p\"}]}\n```",
		"bare fence":  "```\n{\"title\":\"T\",\"blocks\":[{\"type\":\"paragraph\",\"content\":\"p\"}]}\n```",
		"with prose":  "Here are your notes:\n{\"title\":\"T\",\"blocks\":[{\"type\":\"paragraph\",\"content\":\"p\"}]}\nEnjoy!",
		"extra space": "  \n {\"title\":\" T \",\"blocks\":[{\"type\":\"paragraph\",\"content\":\"p\"}]} \n",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			parsed, ok := DecodeResult(raw).(output.Parsed)
			require.True(t, ok, "expected Parsed for %q", raw)
			assert.Equal(t, "T", parsed.Title)
			assert.Len(t, parsed.Blocks, 1)
		})
	}
}

func TestDecodeResult_Malformed(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"prose only":     "I could not produce notes for this lecture.",
		"broken json":    `{"title":"T","blocks":[{"type":"paragraph"`,
		"no blocks":      `{"title":"T","blocks":[]}`,
		"missing blocks": `{"title":"T"}`,
		"wrong shape":    `{"title":"T","blocks":"heading"}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			m, ok := DecodeResult(raw).(output.Malformed)
			require.True(t, ok)
			assert.Equal(t, raw, m.Raw)
			assert.NotEmpty(t, m.Reason)
		})
	}
}
