package gemini

import (
	"testing"

	"github.com/hupe1980/pharmamesh/core"
	"github.com/hupe1980/pharmamesh/model"
	"github.com/hupe1980/pharmamesh/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

var (
	_ model.Model     = (*Model)(nil)
	_ vector.Embedder = (*Embedder)(nil)
)

func TestBuildContents(t *testing.T) {
	contents := buildContents(model.Request{
		Contents: []core.Content{
			core.NewTextContent("user", "how many open CAPAs?"),
			core.NewTextContent("assistant", "Found 3 open CAPAs"),
			core.NewTextContent("user", ""),
		},
	})

	require.Len(t, contents, 2) // Empty text is skipped
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "how many open CAPAs?", contents[0].Parts[0].Text)
}

func TestBuildConfig(t *testing.T) {
	m := &Model{opts: Options{Model: "gemini-1.5-flash", Temperature: 0.1}}

	cfg := m.buildConfig(model.Request{
		Instructions: "You are a pharmaceutical data analyst.",
		Temperature:  model.Temperature(0.7),
		ResponseJSON: true,
	})

	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.7, float64(*cfg.Temperature), 1e-6)
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
}

func TestEmbedderDefaults(t *testing.T) {
	e := NewEmbedderFromClient(nil)

	assert.Equal(t, "gemini-embedding-001", e.opts.Model)
	assert.Equal(t, "SEMANTIC_SIMILARITY", e.opts.TaskType)
	assert.Equal(t, 768, e.Dimensions())
}
