package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
)

type corpusFake struct {
	docs []domain.ChemDocument
}

func (f *corpusFake) All() []domain.ChemDocument { return f.docs }

func (f *corpusFake) ByID(docID string) (domain.ChemDocument, bool) {
	for _, d := range f.docs {
		if d.DocID == docID {
			return d, true
		}
	}
	return domain.ChemDocument{}, false
}

func (f *corpusFake) Len() int { return len(f.docs) }

type indexRecorder struct {
	recreatedDim int
	upserts      [][]domain.ChemDocument
	upsertErr    error
	recreateErr  error
}

func (f *indexRecorder) RecreateCollection(_ context.Context, vectorSize int) error {
	if f.recreateErr != nil {
		return f.recreateErr
	}
	f.recreatedDim = vectorSize
	return nil
}

func (f *indexRecorder) UpsertDocuments(_ context.Context, docs []domain.ChemDocument, vectors [][]float32) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if len(docs) != len(vectors) {
		return errors.New("docs and vectors length mismatch")
	}
	f.upserts = append(f.upserts, docs)
	return nil
}

func (f *indexRecorder) SearchDense(context.Context, []float32, int) ([]domain.ScoredResult, error) {
	return nil, nil
}

func (f *indexRecorder) SearchSparse(context.Context, string, int) ([]domain.ScoredResult, error) {
	return nil, nil
}

func reindexCorpus(n int) *corpusFake {
	docs := make([]domain.ChemDocument, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, domain.ChemDocument{
			DocID:     fmt.Sprintf("doc-%d", i),
			Type:      domain.TypeElement,
			IUPACName: "name",
			Formula:   "F",
		})
	}
	return &corpusFake{docs: docs}
}

func TestReindexRecreatesAtEncoderDimension(t *testing.T) {
	index := &indexRecorder{}
	uc := NewReindexUseCase(reindexCorpus(5), &embedderFake{dim: 768}, index, ReindexOptions{
		BatchSize:        2,
		BatchesPerSecond: 1000,
	})

	if err := uc.Reindex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index.recreatedDim != 768 {
		t.Fatalf("expected collection recreated at dim 768, got %d", index.recreatedDim)
	}
}

func TestReindexBatchesTheWholeCorpus(t *testing.T) {
	index := &indexRecorder{}
	uc := NewReindexUseCase(reindexCorpus(5), &embedderFake{dim: 8}, index, ReindexOptions{
		BatchSize:        2,
		BatchesPerSecond: 1000,
	})

	if err := uc.Reindex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(index.upserts) != 3 {
		t.Fatalf("expected 3 batches for 5 docs at size 2, got %d", len(index.upserts))
	}
	total := 0
	for _, batch := range index.upserts {
		total += len(batch)
	}
	if total != 5 {
		t.Fatalf("expected all 5 docs indexed, got %d", total)
	}
}

func TestReindexStopsOnEncodeError(t *testing.T) {
	index := &indexRecorder{}
	uc := NewReindexUseCase(reindexCorpus(3), &embedderFake{dim: 8, err: errors.New("embed down")}, index, ReindexOptions{
		BatchesPerSecond: 1000,
	})

	err := uc.Reindex(context.Background())
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if len(index.upserts) != 0 {
		t.Fatalf("expected no upserts after encode failure, got %d", len(index.upserts))
	}
}

func TestReindexWrapsRecreateFailure(t *testing.T) {
	index := &indexRecorder{recreateErr: errors.New("qdrant down")}
	uc := NewReindexUseCase(reindexCorpus(3), &embedderFake{dim: 8}, index, ReindexOptions{
		BatchesPerSecond: 1000,
	})

	err := uc.Reindex(context.Background())
	if !domain.IsKind(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected backend unavailable, got %v", err)
	}
}
