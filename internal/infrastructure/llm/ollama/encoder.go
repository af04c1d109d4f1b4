package ollama

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
)

// Encoder turns free text into fixed-dimension dense vectors. It does not
// auto-initialize: the first embedding call against a cold model is
// expensive, so Init must run once, synchronously, at startup, and any
// encode before that fails loudly.
type Encoder struct {
	client *Client

	mu     sync.RWMutex
	dim    int
	loaded bool
}

func NewEncoder(client *Client) *Encoder {
	return &Encoder{client: client}
}

// Init probes the embedding model once and records its dimensionality.
func (e *Encoder) Init(ctx context.Context) error {
	vectors, err := e.embed(ctx, []string{"hydrogen"})
	if err != nil {
		return fmt.Errorf("probe embedding model: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return fmt.Errorf("probe embedding model: empty vector for model %q", e.client.embedModel)
	}

	e.mu.Lock()
	e.dim = len(vectors[0])
	e.loaded = true
	e.mu.Unlock()
	return nil
}

// Dim reports the vector dimensionality, 0 before Init.
func (e *Encoder) Dim() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dim
}

// Encode embeds a batch in a single request. Batching is a performance
// discipline only: the vectors are identical to sequential single-text
// encodes.
func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.ensureLoaded(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := e.embed(ctx, texts)
	if err != nil {
		return nil, wrapTemporaryIfNeeded("encode", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("encode: got %d vectors for %d texts", len(vectors), len(texts))
	}
	for i, vector := range vectors {
		if len(vector) != e.Dim() {
			return nil, fmt.Errorf("encode: vector %d has dimension %d, expected %d", i, len(vector), e.Dim())
		}
		vectors[i] = l2Normalize(vector)
	}
	return vectors, nil
}

func (e *Encoder) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Encode(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("encode query: empty embedding result")
	}
	return vectors[0], nil
}

func (e *Encoder) ensureLoaded() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.loaded {
		return domain.WrapError(domain.ErrModelNotLoaded, "encode", fmt.Errorf("call Init before encoding"))
	}
	return nil
}

func (e *Encoder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}
	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.postJSON(ctx, "/api/embed", request, &response, "embed"); err != nil {
		return nil, err
	}
	return response.Embeddings, nil
}

// l2Normalize scales the vector to unit length so cosine similarity
// collapses to a dot product downstream.
func l2Normalize(vector []float32) []float32 {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vector
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(vector))
	for i, v := range vector {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
