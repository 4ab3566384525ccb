package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReadsEntriesUntilBlankLine(t *testing.T) {
	entries, err := parse(strings.NewReader("gzip 2\nnop 1\n\nbcompress 4\n"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "gzip", entries[0].Name)
	assert.Equal(t, 2, entries[0].Capacity)
	assert.Equal(t, "nop", entries[1].Name)
	assert.Equal(t, 1, entries[1].Capacity)
}

func TestParseRejectsMalformedLine(t *testing.T) {
	_, err := parse(strings.NewReader("gzip notanumber\n"))
	assert.Error(t, err)
}

func TestParseRejectsNegativeCapacity(t *testing.T) {
	_, err := parse(strings.NewReader("gzip -1\n"))
	assert.Error(t, err)
}

func TestParseRejectsWrongFieldCount(t *testing.T) {
	_, err := parse(strings.NewReader("gzip\n"))
	assert.Error(t, err)
}
