package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
)

// Tutor generates the student-facing answers and the structured query
// extraction used before retrieval.
type Tutor struct {
	client *Client
}

func NewTutor(client *Client) *Tutor {
	return &Tutor{client: client}
}

func (t *Tutor) GenerateAnswer(ctx context.Context, question string, retrieval domain.RetrievalContext) (string, error) {
	answer, err := t.generateText(ctx, buildAnswerPrompt(question, retrieval))
	if err != nil {
		return "", wrapTemporaryIfNeeded("generate answer", err)
	}
	return answer, nil
}

func (t *Tutor) ExtractSearchQuery(ctx context.Context, question string) (domain.QueryExtraction, error) {
	raw, err := t.generateJSON(ctx, buildExtractionPrompt(question))
	if err != nil {
		return domain.QueryExtraction{}, wrapTemporaryIfNeeded("extract query", err)
	}

	var extraction domain.QueryExtraction
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &extraction); err != nil {
		return domain.QueryExtraction{}, fmt.Errorf("parse extraction json: %w", err)
	}
	extraction.SearchQuery = strings.TrimSpace(extraction.SearchQuery)
	return extraction, nil
}

func (t *Tutor) generateText(ctx context.Context, prompt string) (string, error) {
	return t.generate(ctx, map[string]any{
		"model":  t.client.genModel,
		"prompt": prompt,
		"stream": false,
	})
}

func (t *Tutor) generateJSON(ctx context.Context, prompt string) (string, error) {
	return t.generate(ctx, map[string]any{
		"model":  t.client.genModel,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	})
}

func (t *Tutor) generate(ctx context.Context, reqBody map[string]any) (string, error) {
	var response struct {
		Response string `json:"response"`
	}
	if err := t.client.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
