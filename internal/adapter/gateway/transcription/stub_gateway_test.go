package transcription

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/lecnote/internal/app"
	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
)

func TestStubGateway_KeysOnFileName(t *testing.T) {
	tests := []struct {
		fileName string
		contains string
	}{
		{"Merge_Sort_Lecture.mp4", "merge sort"},
		{"quicksort-week3.mov", "quick sort"},
		{"binary.webm", "binary search"},
	}

	gw := NewStubGateway()
	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			result, err := gw.Transcribe(context.Background(), output.TranscriptionRequest{FileName: tt.fileName})
			require.NoError(t, err)
			assert.Contains(t, strings.ToLower(result.Text), tt.contains)
			assert.Equal(t, float64(StubDuration), result.Duration)
		})
	}
}

func TestStubGateway_GenericTextHasNoSubjectKeywords(t *testing.T) {
	result, err := NewStubGateway().Transcribe(context.Background(), output.TranscriptionRequest{FileName: "week1.mp4"})
	require.NoError(t, err)

	lower := strings.ToLower(result.Text)
	for _, kw := range []string{"merge", "quick", "binary"} {
		assert.NotContains(t, lower, kw)
	}
}

func TestStubGateway_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStubGateway().Transcribe(ctx, output.TranscriptionRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGateway(t *testing.T) {
	stub := NewGateway(Config{Logger: app.NopLogger})
	assert.Equal(t, "stub", stub.Name())

	whisper := NewGateway(Config{OpenAIAPIKey: "sk-test", Logger: app.NopLogger})
	assert.Equal(t, "openai-whisper", whisper.Name())
}
