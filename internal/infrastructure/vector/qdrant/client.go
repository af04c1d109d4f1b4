// Package qdrant talks to a Qdrant instance over its HTTP API. The
// collection carries a named dense vector and a named sparse vector per
// document, so one upsert feeds both retrieval passes of hybrid search.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
	"github.com/chemi-labs/chemtutor/internal/infrastructure/resilience"
)

const (
	denseVectorName  = "dense"
	sparseVectorName = "sparse"
)

type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	Timeout            time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, collection string) *Client {
	return NewWithOptions(baseURL, collection, Options{})
}

func NewWithOptions(baseURL, collection string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

// RecreateCollection drops and recreates the collection. The corpus is
// small enough that a full rebuild replaces incremental diffing.
func (c *Client) RecreateCollection(ctx context.Context, vectorSize int) error {
	if vectorSize <= 0 {
		return fmt.Errorf("vector size must be positive, got %d", vectorSize)
	}

	deleteURL := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	// 404 on delete is fine: first run has nothing to drop.
	if err := c.do(ctx, http.MethodDelete, deleteURL, nil, nil, "delete collection", http.StatusNotFound); err != nil {
		return err
	}

	body := map[string]any{
		"vectors": map[string]any{
			denseVectorName: map[string]any{
				"size":     vectorSize,
				"distance": "Cosine",
			},
		},
		"sparse_vectors": map[string]any{
			sparseVectorName: map[string]any{
				"modifier": "idf",
			},
		},
	}
	createURL := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	return c.do(ctx, http.MethodPut, createURL, body, nil, "create collection")
}

// UpsertDocuments writes one point per document: the given dense vector,
// a client-side sparse encoding of the searchable text, and the full
// document as payload.
func (c *Client) UpsertDocuments(ctx context.Context, docs []domain.ChemDocument, vectors [][]float32) error {
	if len(docs) == 0 {
		return nil
	}
	if len(docs) != len(vectors) {
		return fmt.Errorf("documents/vectors mismatch: %d vs %d", len(docs), len(vectors))
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  map[string]any `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(docs))
	for i, doc := range docs {
		points = append(points, point{
			ID: uuid.NewString(),
			Vector: map[string]any{
				denseVectorName:  vectors[i],
				sparseVectorName: encodeSparseDocument(doc.SearchableText(), doc.Formula),
			},
			Payload: map[string]any{
				"doc_id":     doc.DocID,
				"type":       string(doc.Type),
				"iupac_name": doc.IUPACName,
				"formula":    doc.Formula,
				"image_path": doc.ImagePath,
				"audio_path": doc.AudioPath,
			},
		})
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	return c.do(ctx, http.MethodPut, url, map[string]any{"points": points}, nil, "upsert points")
}

// SearchDense is the semantic candidate pass: nearest neighbors of the
// query vector.
func (c *Client) SearchDense(ctx context.Context, queryVector []float32, limit int) ([]domain.ScoredResult, error) {
	if len(queryVector) == 0 {
		return nil, nil
	}
	body := map[string]any{
		"query":        queryVector,
		"using":        denseVectorName,
		"limit":        limit,
		"with_payload": true,
	}
	return c.queryPoints(ctx, body, "dense query")
}

// SearchSparse is the lexical candidate pass: BM25-style match of the
// query text against each document's searchable text.
func (c *Client) SearchSparse(ctx context.Context, queryText string, limit int) ([]domain.ScoredResult, error) {
	sparse := encodeSparseQuery(queryText)
	if len(sparse.Indices) == 0 {
		return nil, nil
	}
	body := map[string]any{
		"query":        sparse,
		"using":        sparseVectorName,
		"limit":        limit,
		"with_payload": true,
	}
	return c.queryPoints(ctx, body, "sparse query")
}

func (c *Client) queryPoints(ctx context.Context, body map[string]any, operation string) ([]domain.ScoredResult, error) {
	url := fmt.Sprintf("%s/collections/%s/points/query", c.baseURL, c.collection)

	var response struct {
		Result struct {
			Points []struct {
				Score   float64        `json:"score"`
				Payload map[string]any `json:"payload"`
			} `json:"points"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, url, body, &response, operation); err != nil {
		return nil, err
	}

	out := make([]domain.ScoredResult, 0, len(response.Result.Points))
	for _, p := range response.Result.Points {
		out = append(out, domain.ScoredResult{
			ChemDocument: domain.ChemDocument{
				DocID:     payloadString(p.Payload, "doc_id"),
				Type:      domain.DocumentType(payloadString(p.Payload, "type")),
				IUPACName: payloadString(p.Payload, "iupac_name"),
				Formula:   payloadString(p.Payload, "formula"),
				ImagePath: payloadString(p.Payload, "image_path"),
				AudioPath: payloadString(p.Payload, "audio_path"),
			},
			Score: p.Score,
		})
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, url string, payload any, out any, operation string, tolerated ...int) error {
	call := func(callCtx context.Context) error {
		var reader io.Reader
		if payload != nil {
			body, err := json.Marshal(payload)
			if err != nil {
				return fmt.Errorf("marshal %s body: %w", operation, err)
			}
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(callCtx, method, url, reader)
		if err != nil {
			return fmt.Errorf("create %s request: %w", operation, err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("qdrant %s request: %w", operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 && !statusTolerated(resp.StatusCode, tolerated) {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return &HTTPStatusError{
				Operation:  operation,
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       strings.TrimSpace(string(body)),
			}
		}
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decode %s response: %w", operation, err)
			}
		}
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "qdrant."+operation, call, classifyQdrantError)
	} else {
		err = call(ctx)
	}
	return wrapBackendUnavailable(operation, err)
}

func statusTolerated(code int, tolerated []int) bool {
	for _, t := range tolerated {
		if code == t {
			return true
		}
	}
	return false
}

func payloadString(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
