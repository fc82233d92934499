package handlers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsee/mami/internal/publish"
)

func TestRegions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Regions(&buf, ""))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, publish.SupportedRegions(), lines)
}

func TestRegions_WithSource(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Regions(&buf, "us-east-1"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, len(publish.SupportedRegions())-1)
	assert.NotContains(t, lines, "us-east-1")
}

func TestRegions_UnsupportedSource(t *testing.T) {
	var buf bytes.Buffer
	err := Regions(&buf, "mars-north-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mars-north-1")
}
