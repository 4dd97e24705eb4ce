package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	t.Run("passes through plain text", func(t *testing.T) {
		out, err := RenderTemplate("no markers here", nil)
		require.NoError(t, err)
		assert.Equal(t, "no markers here", out)
	})

	t.Run("expands markers from state", func(t *testing.T) {
		out, err := RenderTemplate("Summary for {{.Brand}}: {{.Content}}", map[string]any{
			"Brand":   "Avino",
			"Content": "trial results",
		})
		require.NoError(t, err)
		assert.Equal(t, "Summary for Avino: trial results", out)
	})

	t.Run("errors on missing key", func(t *testing.T) {
		_, err := RenderTemplate("{{.Missing}}", map[string]any{})
		assert.Error(t, err)
	})

	t.Run("errors on malformed template", func(t *testing.T) {
		_, err := RenderTemplate("{{.Brand", map[string]any{"Brand": "Avino"})
		assert.Error(t, err)
	})
}
