package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
)

func TestRecreateCollectionToleratesMissingCollection(t *testing.T) {
	var deleteSeen, putSeen bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			deleteSeen = true
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			putSeen = true
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode create body: %v", err)
			}
			vectors, _ := body["vectors"].(map[string]any)
			if _, ok := vectors[denseVectorName]; !ok {
				t.Error("create body missing dense vector config")
			}
			if _, ok := body["sparse_vectors"].(map[string]any)[sparseVectorName]; !ok {
				t.Error("create body missing sparse vector config")
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer server.Close()

	client := New(server.URL, "chem_documents")
	if err := client.RecreateCollection(context.Background(), 768); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleteSeen || !putSeen {
		t.Fatalf("expected delete then put, got delete=%v put=%v", deleteSeen, putSeen)
	}
}

func TestRecreateCollectionRejectsNonPositiveDim(t *testing.T) {
	client := New("http://unused", "chem_documents")
	if err := client.RecreateCollection(context.Background(), 0); err == nil {
		t.Fatal("expected error for zero dimension")
	}
}

func TestUpsertDocumentsSendsBothVectors(t *testing.T) {
	var captured struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  map[string]any `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode upsert body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL, "chem_documents")
	docs := []domain.ChemDocument{
		{DocID: "element_011", Type: domain.TypeElement, IUPACName: "sodium", Formula: "Na"},
	}
	vectors := [][]float32{{0.1, 0.2, 0.3}}

	if err := client.UpsertDocuments(context.Background(), docs, vectors); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(captured.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(captured.Points))
	}
	point := captured.Points[0]
	if point.ID == "" {
		t.Fatal("expected a point id")
	}
	if _, ok := point.Vector[denseVectorName]; !ok {
		t.Fatal("point missing dense vector")
	}
	if _, ok := point.Vector[sparseVectorName]; !ok {
		t.Fatal("point missing sparse vector")
	}
	if point.Payload["doc_id"] != "element_011" || point.Payload["formula"] != "Na" {
		t.Fatalf("unexpected payload: %v", point.Payload)
	}
}

func TestUpsertDocumentsLengthMismatch(t *testing.T) {
	client := New("http://unused", "chem_documents")
	docs := []domain.ChemDocument{{DocID: "a"}, {DocID: "b"}}

	if err := client.UpsertDocuments(context.Background(), docs, [][]float32{{0.1}}); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestSearchDenseDecodesPoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/chem_documents/points/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["using"] != denseVectorName {
			t.Errorf("expected dense pass, got %v", body["using"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"points": []map[string]any{
					{
						"score": 0.93,
						"payload": map[string]any{
							"doc_id":     "element_011",
							"type":       "element",
							"iupac_name": "sodium",
							"formula":    "Na",
							"image_path": "elements/na.png",
						},
					},
				},
			},
		})
	}))
	defer server.Close()

	client := New(server.URL, "chem_documents")
	results, err := client.SearchDense(context.Background(), []float32{0.1, 0.2}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.DocID != "element_011" || r.Type != domain.TypeElement || r.Score != 0.93 {
		t.Fatalf("unexpected result: %+v", r)
	}
	if r.ImagePath != "elements/na.png" {
		t.Fatalf("expected media path decoded, got %q", r.ImagePath)
	}
}

func TestSearchSparseSkipsEmptyQuery(t *testing.T) {
	client := New("http://unused", "chem_documents")

	results, err := client.SearchSparse(context.Background(), "!!!", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Fatalf("expected nil for untokenizable query, got %v", results)
	}
}

func TestServerErrorMapsToBackendUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, "chem_documents")
	_, err := client.SearchDense(context.Background(), []float32{0.1}, 3)
	if !domain.IsKind(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected backend unavailable, got %v", err)
	}
}

func TestClientErrorIsNotWrappedAsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad vector", http.StatusBadRequest)
	}))
	defer server.Close()

	client := New(server.URL, "chem_documents")
	_, err := client.SearchDense(context.Background(), []float32{0.1}, 3)
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.IsKind(err, domain.ErrBackendUnavailable) {
		t.Fatalf("400 must not count as backend unavailable: %v", err)
	}
}
