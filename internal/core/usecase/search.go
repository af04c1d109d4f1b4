package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
	"github.com/chemi-labs/chemtutor/internal/core/ports"
)

const (
	defaultTopK      = 3
	defaultThreshold = 0.3

	// Each pass retrieves a deeper pool than the final cut so fusion has
	// enough overlap to work with.
	candidateMultiplier = 2
)

// SearchService is the retrieval facade. It normalizes the query, runs
// hybrid dense+sparse retrieval when a vector backend is wired, falls back
// to the fuzzy lexical matcher otherwise, and absorbs every per-query
// failure: a broken backend degrades to "not found", never to an error in
// the calling conversation.
type SearchService struct {
	embedder   ports.Embedder
	index      ports.VectorIndex
	matcher    ports.LexicalMatcher
	expansions map[string]string
	topK       int
	threshold  float64
	logger     *slog.Logger
}

type SearchOptions struct {
	TopK       int
	Threshold  float64
	Expansions map[string]string
	Logger     *slog.Logger
}

// NewSearchService accepts nil embedder/index for keyword-only
// deployments; matcher is required.
func NewSearchService(
	embedder ports.Embedder,
	index ports.VectorIndex,
	matcher ports.LexicalMatcher,
	options SearchOptions,
) *SearchService {
	topK := options.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	threshold := options.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	expansions := options.Expansions
	if expansions == nil {
		expansions = DefaultExpansions()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		embedder:   embedder,
		index:      index,
		matcher:    matcher,
		expansions: expansions,
		topK:       topK,
		threshold:  threshold,
		logger:     logger,
	}
}

// Search returns at most topK results with score >= threshold. Zero
// values select the configured defaults.
func (s *SearchService) Search(ctx context.Context, query string, topK int, threshold float64) []domain.ScoredResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if topK <= 0 {
		topK = s.topK
	}
	if threshold <= 0 {
		threshold = s.threshold
	}

	expanded := expandQuery(query, s.expansions)
	if expanded != query {
		s.logger.Debug("query_expanded", "query", query, "expanded", expanded)
	}

	if s.hybridReady() {
		results, err := s.hybridSearch(ctx, expanded, topK, threshold)
		if err == nil {
			s.logger.Info("search_complete", "mode", "hybrid", "query", query, "results", len(results))
			return results
		}
		s.logger.Warn("hybrid_search_failed", "query", query, "error", err)
		if s.matcher == nil {
			// No fallback wired: degrade to a legitimate no-match.
			return nil
		}
	}

	results := truncateResults(filterByThreshold(s.matcher.Search(expanded, topK), threshold), topK)
	s.logger.Info("search_complete", "mode", "keyword", "query", query, "results", len(results))
	return results
}

// SearchWithContext shapes results for the conversational layer: the best
// match with its full payload, the rest trimmed to name/formula/type.
func (s *SearchService) SearchWithContext(ctx context.Context, query string) domain.RetrievalContext {
	results := s.Search(ctx, query, s.topK, s.threshold)
	if len(results) == 0 {
		return domain.RetrievalContext{
			Found:   false,
			Query:   query,
			Message: domain.NotFoundMessage,
		}
	}

	primary := results[0]
	related := make([]domain.RelatedResult, 0, len(results)-1)
	for _, r := range results[1:] {
		related = append(related, domain.RelatedResult{
			Name:    r.IUPACName,
			Formula: r.Formula,
			Type:    r.Type,
			Score:   r.Score,
		})
	}

	return domain.RetrievalContext{
		Found: true,
		Query: query,
		Primary: &domain.PrimaryResult{
			DocID:      primary.DocID,
			Name:       primary.IUPACName,
			Formula:    primary.Formula,
			Type:       primary.Type,
			ImagePath:  primary.ImagePath,
			AudioPath:  primary.AudioPath,
			Confidence: primary.Score,
		},
		Related:      related,
		TotalResults: len(results),
	}
}

func (s *SearchService) hybridReady() bool {
	return s.embedder != nil && s.index != nil
}

func (s *SearchService) hybridSearch(ctx context.Context, query string, topK int, threshold float64) ([]domain.ScoredResult, error) {
	queryVector, err := s.embedder.EncodeQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	poolSize := topK * candidateMultiplier
	dense, err := s.index.SearchDense(ctx, queryVector, poolSize)
	if err != nil {
		return nil, err
	}
	sparse, err := s.index.SearchSparse(ctx, query, poolSize)
	if err != nil {
		return nil, err
	}

	fused := fuseRanksRRF(dense, sparse)
	return truncateResults(filterByThreshold(fused, threshold), topK), nil
}
