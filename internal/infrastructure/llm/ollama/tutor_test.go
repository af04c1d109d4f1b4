package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
)

func generateServer(t *testing.T, respond func(req map[string]any) string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode generate request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": respond(req)})
	}))
}

func TestGenerateAnswerEmbedsRetrievalFacts(t *testing.T) {
	var prompt string
	server := generateServer(t, func(req map[string]any) string {
		prompt, _ = req["prompt"].(string)
		return "Natri là kim loại kiềm, ký hiệu Na."
	})
	defer server.Close()

	tutor := NewTutor(New(server.URL, "gen", "embed"))
	retrieval := domain.RetrievalContext{
		Found: true,
		Query: "sodium",
		Primary: &domain.PrimaryResult{
			Name:    "sodium",
			Formula: "Na",
			Type:    domain.TypeElement,
		},
		Related: []domain.RelatedResult{
			{Name: "sodium chloride", Formula: "NaCl", Type: domain.TypeCompound},
		},
	}

	answer, err := tutor.GenerateAnswer(context.Background(), "Natri là gì?", retrieval)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer == "" {
		t.Fatal("expected an answer")
	}
	for _, fact := range []string{"sodium", "Na", "sodium chloride", "Natri là gì?"} {
		if !strings.Contains(prompt, fact) {
			t.Fatalf("prompt missing %q:\n%s", fact, prompt)
		}
	}
}

func TestGenerateAnswerNoMatchInstructsNotFound(t *testing.T) {
	var prompt string
	server := generateServer(t, func(req map[string]any) string {
		prompt, _ = req["prompt"].(string)
		return "ok"
	})
	defer server.Close()

	tutor := NewTutor(New(server.URL, "gen", "embed"))
	retrieval := domain.RetrievalContext{Found: false, Message: domain.NotFoundMessage}

	if _, err := tutor.GenerateAnswer(context.Background(), "chất X là gì?", retrieval); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "Không tìm thấy") {
		t.Fatalf("expected not-found instruction in prompt:\n%s", prompt)
	}
}

func TestExtractSearchQueryParsesStrictJSON(t *testing.T) {
	server := generateServer(t, func(req map[string]any) string {
		if req["format"] != "json" {
			t.Errorf("expected json format request, got %v", req["format"])
		}
		return `{"search_query": "ethanol", "is_chemistry_question": true}`
	})
	defer server.Close()

	tutor := NewTutor(New(server.URL, "gen", "embed"))
	extraction, err := tutor.ExtractSearchQuery(context.Background(), "rượu etanol là gì?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extraction.SearchQuery != "ethanol" || !extraction.IsChemistry {
		t.Fatalf("unexpected extraction: %+v", extraction)
	}
}

func TestExtractSearchQueryRecoversJSONFromChatter(t *testing.T) {
	server := generateServer(t, func(map[string]any) string {
		return "Sure! Here is the result:\n{\"search_query\": \"NaCl\", \"is_chemistry_question\": true}\nHope this helps."
	})
	defer server.Close()

	tutor := NewTutor(New(server.URL, "gen", "embed"))
	extraction, err := tutor.ExtractSearchQuery(context.Background(), "muối ăn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extraction.SearchQuery != "NaCl" {
		t.Fatalf("unexpected extraction: %+v", extraction)
	}
}

func TestExtractSearchQueryMalformedJSONFails(t *testing.T) {
	server := generateServer(t, func(map[string]any) string {
		return "no json here"
	})
	defer server.Close()

	tutor := NewTutor(New(server.URL, "gen", "embed"))
	if _, err := tutor.ExtractSearchQuery(context.Background(), "muối ăn"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGenerateAnswerServerErrorIsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	tutor := NewTutor(New(server.URL, "gen", "embed"))
	_, err := tutor.GenerateAnswer(context.Background(), "Natri là gì?", domain.RetrievalContext{})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}
