package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srijanshukla18/kubectl-smart/internal/model"
)

func TestWrapText_SplitsOnWidth(t *testing.T) {
	lines := WrapText("the quick brown fox jumps over the lazy dog", 10)
	for _, l := range lines {
		assert.LessOrEqual(t, len(l), 10)
	}
	assert.Equal(t, "the quick", lines[0])
}

func TestWrapText_Empty(t *testing.T) {
	assert.Nil(t, WrapText("", 10))
	assert.Nil(t, WrapText("   ", 10))
}

func TestSeverityGlyph_UnicodeAndPlain(t *testing.T) {
	assert.Equal(t, "✖", SeverityGlyph(model.SeverityCritical, Capabilities{Unicode: true}))
	assert.Equal(t, "[CRIT]", SeverityGlyph(model.SeverityCritical, Capabilities{Unicode: false}))
	assert.Equal(t, "[ok]", SeverityGlyph(model.SeverityInfo, Capabilities{Unicode: false}))
}

func TestWriteJSON_EnvelopeShape(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSON(&buf, Envelope{
		SchemaVersion: SchemaVersion,
		Command:       "diag",
		GeneratedAt:   "2026-01-01T00:00:00Z",
		Subject:       "Pod/prod/checkout-abc",
		Result:        map[string]string{"ok": "true"},
		Notes:         []string{"n1"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"schema_version": "1.0"`)
	assert.Contains(t, out, `"command": "diag"`)
	assert.Contains(t, out, `"notes"`)
}
