// Package fuzzy is the fallback keyword search: a full scan of the corpus
// scored by string similarity. It needs no vector index and no network, so
// it also serves as the sole mechanism in lightweight deployments.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
	"github.com/chemi-labs/chemtutor/internal/core/ports"
)

// matchFloor suppresses nonsense matches from a near-empty intersection.
// Deliberately low: the goal is typo correction, not precision.
const matchFloor = 0.3

const defaultTopK = 3

type Matcher struct {
	corpus ports.DocumentCorpus
}

func NewMatcher(corpus ports.DocumentCorpus) *Matcher {
	return &Matcher{corpus: corpus}
}

// Search ranks every document against the query. Name similarity is
// token-order-insensitive, formula similarity is plain character-sequence;
// a document scores the better of the two. Ties keep corpus order so the
// output is deterministic.
func (m *Matcher) Search(query string, topK int) []domain.ScoredResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	results := make([]domain.ScoredResult, 0, topK*2)
	for _, doc := range m.corpus.All() {
		nameScore := tokenSortRatio(query, strings.ToLower(doc.IUPACName))
		formulaScore := ratio(query, strings.ToLower(doc.Formula))

		score := nameScore
		if formulaScore > score {
			score = formulaScore
		}
		if score >= matchFloor {
			results = append(results, domain.ScoredResult{ChemDocument: doc, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// ratio is a normalized [0,1] character-sequence similarity based on
// Levenshtein edit distance.
func ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// tokenSortRatio compares with whitespace tokens sorted first, which makes
// the score insensitive to word order ("chloride sodium" vs "sodium
// chloride").
func tokenSortRatio(a, b string) float64 {
	return ratio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
