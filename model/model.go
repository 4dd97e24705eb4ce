package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/pharmamesh/core"
)

// Request captures the normalized model input produced by pipeline stages.
type Request struct {
	Instructions string         `json:"instructions"` // System-level instructions for the model
	Contents     []core.Content `json:"contents"`     // Conversation contents (the pipeline sends a single user turn)
	Temperature  *float64       `json:"temperature,omitempty"`
	ResponseJSON bool           `json:"response_json,omitempty"` // Request application/json output where supported
	Stream       bool           `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a streaming model.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"`
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "gemini", "openai", "anthropic", "mock"
}

// Model is the minimal interface required by pipeline stages to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Temperature returns a pointer suitable for Request.Temperature.
func Temperature(t float64) *float64 { return &t }

// GenerateText drives a non-streaming generation and returns the concatenated
// final text. It is the convenience path used by all pipeline stages, which
// never need token-level streaming.
func GenerateText(ctx context.Context, m Model, req Request) (string, error) {
	req.Stream = false

	respCh, errCh := m.Generate(ctx, req)

	var sb strings.Builder
	for resp := range respCh {
		if resp.Partial {
			continue
		}
		sb.WriteString(resp.Content.Text())
	}

	if err := <-errCh; err != nil {
		return "", err
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response from %s", m.Info().Provider)
	}

	return text, nil
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
type MockModel struct {
	info      Info
	responses map[string]string
	err       error
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// FailWith makes every subsequent Generate call terminate with err.
func (m *MockModel) FailWith(err error) { m.err = err }

// Generate implements Model; emits optional streaming char chunks then the final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)
		if m.err != nil {
			errCh <- m.err
			return
		}
		if len(req.Contents) == 0 {
			errCh <- fmt.Errorf("no contents provided")
			return
		}
		last := req.Contents[len(req.Contents)-1]
		inputText := last.Text()
		full := m.responses[inputText]
		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", inputText)
		}
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{
					Partial: true,
					Content: core.NewTextContent("assistant", string(r)),
				}:
				}
			}
		}
		respCh <- Response{
			Partial:      false,
			Content:      core.NewTextContent("assistant", full),
			FinishReason: "stop",
		}
	}()
	return respCh, errCh
}

// Info implements the Model interface.
func (m *MockModel) Info() Info { return m.info }
