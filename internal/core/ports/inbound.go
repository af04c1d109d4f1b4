package ports

import (
	"context"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
)

// Searcher is the retrieval facade the conversational layer consumes.
// Per-query failures are absorbed behind this boundary: callers see an
// empty list or found=false, never an error.
type Searcher interface {
	Search(ctx context.Context, query string, topK int, threshold float64) []domain.ScoredResult
	SearchWithContext(ctx context.Context, query string) domain.RetrievalContext
}

// TutorChat answers one student turn, grounding the answer in retrieval.
type TutorChat interface {
	Ask(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error)
	History(ctx context.Context, threadID string, limit int) ([]domain.ConversationMessage, error)
}

// CorpusIndexer rebuilds the vector index from the loaded corpus.
type CorpusIndexer interface {
	Reindex(ctx context.Context) error
}
