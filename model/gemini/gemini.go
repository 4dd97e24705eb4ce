// Package gemini provides a model wrapper for the Google Gemini API via the
// google.golang.org/genai SDK. It covers the two capabilities the pipeline
// needs from Gemini: text generation (with optional JSON response mode) and
// text embeddings.
package gemini

import (
	"context"
	"fmt"

	"github.com/hupe1980/pharmamesh/core"
	"github.com/hupe1980/pharmamesh/model"
	"google.golang.org/genai"
)

// Options configures the Gemini model adapter.
type Options struct {
	Model       string
	Temperature float64
	APIKey      string
}

// Model wraps the Gemini generate-content API behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel creates a new Gemini model. The API key is read from the options;
// if empty the SDK falls back to its own environment lookup.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:       "gemini-1.5-flash",
		Temperature: 0.1,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: opts.APIKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Model{client: client, opts: opts}, nil
}

// NewModelFromClient creates a new Gemini model from an existing client.
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       "gemini-1.5-flash",
		Temperature: 0.1,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{client: client, opts: opts}
}

// Generate implements model.Model. The pipeline never needs token streaming
// from Gemini, so the adapter issues a single generate-content call and emits
// one final response on the channel.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		contents := buildContents(req)
		cfg := m.buildConfig(req)

		resp, err := m.client.Models.GenerateContent(ctx, m.opts.Model, contents, cfg)
		if err != nil {
			errCh <- fmt.Errorf("gemini generate failed: %w", err)
			return
		}

		text := resp.Text()
		if text == "" {
			errCh <- fmt.Errorf("empty response from gemini model %s", m.opts.Model)
			return
		}

		out <- model.Response{
			Partial:      false,
			Content:      core.NewTextContent("assistant", text),
			FinishReason: "stop",
		}
	}()

	return out, errCh
}

// Info implements the model.Model interface.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "gemini"}
}

// buildContents flattens the normalized request into genai contents. System
// instructions are carried via the generation config, not the contents.
func buildContents(req model.Request) []*genai.Content {
	var contents []*genai.Content
	for _, c := range req.Contents {
		text := c.Text()
		if text == "" {
			continue
		}
		var role genai.Role = genai.RoleUser
		if c.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(text, role))
	}
	return contents
}

func (m *Model) buildConfig(req model.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	temp := m.opts.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	cfg.Temperature = genai.Ptr(float32(temp))

	if req.Instructions != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.Instructions, genai.RoleUser)
	}

	if req.ResponseJSON {
		cfg.ResponseMIMEType = "application/json"
	}

	return cfg
}
