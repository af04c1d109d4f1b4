package ports

import (
	"context"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
)

// DocumentCorpus is the read-only, fully loaded chemistry corpus.
type DocumentCorpus interface {
	All() []domain.ChemDocument
	ByID(docID string) (domain.ChemDocument, bool)
	Len() int
}

// Embedder maps free text to fixed-dimension, L2-normalized dense vectors.
// Init must be called once at startup before any encode.
type Embedder interface {
	Init(ctx context.Context) error
	Dim() int
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	EncodeQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex stores the dense and sparse representation per document and
// serves the two candidate-retrieval passes of hybrid search.
type VectorIndex interface {
	RecreateCollection(ctx context.Context, vectorSize int) error
	UpsertDocuments(ctx context.Context, docs []domain.ChemDocument, vectors [][]float32) error
	SearchDense(ctx context.Context, queryVector []float32, limit int) ([]domain.ScoredResult, error)
	SearchSparse(ctx context.Context, queryText string, limit int) ([]domain.ScoredResult, error)
}

// LexicalMatcher ranks the corpus against a query by fuzzy string
// similarity. Pure in-memory scan, no index, no network.
type LexicalMatcher interface {
	Search(query string, topK int) []domain.ScoredResult
}

// AnswerGenerator is the language-model collaborator: free-form answers and
// structured query extraction.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, retrieval domain.RetrievalContext) (string, error)
	ExtractSearchQuery(ctx context.Context, question string) (domain.QueryExtraction, error)
}

// ConversationStore persists chat turns per thread.
type ConversationStore interface {
	AppendMessage(ctx context.Context, message domain.ConversationMessage) error
	ListRecentMessages(ctx context.Context, threadID string, limit int) ([]domain.ConversationMessage, error)
}

// MessageQueue carries corpus-reindex events between the API and the
// indexer process.
type MessageQueue interface {
	PublishCorpusReindex(ctx context.Context, reason string) error
	SubscribeCorpusReindex(ctx context.Context, handler func(context.Context, string) error) error
}
