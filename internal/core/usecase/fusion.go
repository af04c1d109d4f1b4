package usecase

import (
	"sort"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
)

// fuseRanksRRF merges the dense and sparse candidate lists by reciprocal
// rank: each document scores the sum of 1/rank (1-based) over the passes
// it appears in, normalized by the pass count so a document ranked first
// in both passes scores exactly 1.0. Rank-based fusion is scale-invariant,
// so no per-signal blend weight needs tuning.
//
// Pure function over two already-ranked lists; no state, no caching.
func fuseRanksRRF(dense, sparse []domain.ScoredResult) []domain.ScoredResult {
	const passes = 2.0

	type candidate struct {
		doc   domain.ChemDocument
		score float64
	}

	acc := make(map[string]candidate, len(dense)+len(sparse))
	addPass := func(results []domain.ScoredResult) {
		for rank, r := range results {
			c := acc[r.DocID]
			if c.doc.DocID == "" {
				c.doc = r.ChemDocument
			}
			c.score += 1.0 / float64(rank+1)
			acc[r.DocID] = c
		}
	}

	addPass(dense)
	addPass(sparse)

	out := make([]domain.ScoredResult, 0, len(acc))
	for _, c := range acc {
		out = append(out, domain.ScoredResult{
			ChemDocument: c.doc,
			Score:        c.score / passes,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DocID < out[j].DocID
	})
	return out
}

func filterByThreshold(results []domain.ScoredResult, threshold float64) []domain.ScoredResult {
	out := make([]domain.ScoredResult, 0, len(results))
	for _, r := range results {
		if r.Score >= threshold {
			out = append(out, r)
		}
	}
	return out
}

func truncateResults(results []domain.ScoredResult, limit int) []domain.ScoredResult {
	if limit <= 0 || len(results) <= limit {
		return results
	}
	return results[:limit]
}
