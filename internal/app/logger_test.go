package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf)

	l.Info("staged %s", "video.mp4")
	l.Warn("cleanup failed: %d", 2)

	assert.Equal(t, "INFO: staged video.mp4\nWARN: cleanup failed: 2\n", buf.String())
}

func TestSetLogger_IgnoresNil(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	var buf bytes.Buffer
	custom := NewWriterLogger(&buf)
	SetLogger(custom)
	SetLogger(nil)

	assert.Same(t, custom, GetLogger())
	assert.Same(t, custom, LoggerOr(nil))
	assert.Equal(t, NopLogger, LoggerOr(NopLogger))
}
