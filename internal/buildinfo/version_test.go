package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = ""
	assert.Equal(t, "dev", GetVersion())

	Version = "v0.3.0"
	assert.Equal(t, "v0.3.0", GetVersion())
}
