// Package vector implements the document similarity index consulted by the
// search stage. Documents carry 768-dimensional embeddings; search embeds the
// query text, ranks documents by cosine similarity and drops anything under
// the relevance threshold.
package vector

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"

	"github.com/hupe1980/pharmamesh/logging"
)

// Embedder turns text into a fixed-size embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// FallbackDimensions is the vector size produced by FallbackEmbedder, chosen
// to match the Gemini embedding model so the two are interchangeable.
const FallbackDimensions = 768

// FallbackEmbedder produces deterministic pseudo-embeddings without calling
// any external service. The text's MD5 digest seeds a PRNG, so identical
// texts always map to identical unit vectors. Used when no embedding API is
// configured and in tests.
type FallbackEmbedder struct {
	dims int
}

// NewFallbackEmbedder creates a deterministic local embedder.
func NewFallbackEmbedder() *FallbackEmbedder {
	return &FallbackEmbedder{dims: FallbackDimensions}
}

// Embed implements Embedder. The returned vector is normalized to unit length.
func (e *FallbackEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	sum := md5.Sum([]byte(text))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	rng := rand.New(rand.NewSource(seed))

	vec := make([]float32, e.dims)
	var norm float64
	for i := range vec {
		v := rng.NormFloat64()
		vec[i] = float32(v)
		norm += v * v
	}

	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}

	return vec, nil
}

// Dimensions implements Embedder.
func (e *FallbackEmbedder) Dimensions() int { return e.dims }

// ResilientEmbedderOptions configures a ResilientEmbedder.
type ResilientEmbedderOptions struct {
	Logger logging.Logger
}

// ResilientEmbedder tries a primary embedder and degrades to the
// deterministic fallback when it fails, so a flaky embedding API never takes
// the search stage down. Empty text is still an error.
type ResilientEmbedder struct {
	primary  Embedder
	fallback *FallbackEmbedder
	opts     ResilientEmbedderOptions
}

// NewResilientEmbedder wraps primary with fallback-on-error behavior.
func NewResilientEmbedder(primary Embedder, optFns ...func(o *ResilientEmbedderOptions)) *ResilientEmbedder {
	opts := ResilientEmbedderOptions{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ResilientEmbedder{
		primary:  primary,
		fallback: NewFallbackEmbedder(),
		opts:     opts,
	}
}

// Embed implements Embedder.
func (e *ResilientEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	vec, err := e.primary.Embed(ctx, text)
	if err != nil {
		e.opts.Logger.Warn("Primary embedder failed, using deterministic fallback", "error", err.Error())
		return e.fallback.Embed(ctx, text)
	}

	return vec, nil
}

// Dimensions implements Embedder.
func (e *ResilientEmbedder) Dimensions() int { return e.primary.Dimensions() }

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
