package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
	"github.com/chemi-labs/chemtutor/internal/core/ports"
)

const defaultIndexBatchSize = 32

// ReindexUseCase rebuilds the vector collection from the loaded corpus:
// drop, recreate at the encoder's dimension, then encode and upsert in
// rate-limited batches so a large corpus cannot saturate the embedding
// backend.
type ReindexUseCase struct {
	corpus    ports.DocumentCorpus
	embedder  ports.Embedder
	index     ports.VectorIndex
	limiter   *rate.Limiter
	batchSize int
	logger    *slog.Logger
}

type ReindexOptions struct {
	BatchSize        int
	BatchesPerSecond float64
	Logger           *slog.Logger
}

func NewReindexUseCase(
	corpus ports.DocumentCorpus,
	embedder ports.Embedder,
	index ports.VectorIndex,
	options ReindexOptions,
) *ReindexUseCase {
	batchSize := options.BatchSize
	if batchSize <= 0 {
		batchSize = defaultIndexBatchSize
	}
	perSecond := options.BatchesPerSecond
	if perSecond <= 0 {
		perSecond = 4
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ReindexUseCase{
		corpus:    corpus,
		embedder:  embedder,
		index:     index,
		limiter:   rate.NewLimiter(rate.Limit(perSecond), 1),
		batchSize: batchSize,
		logger:    logger,
	}
}

func (r *ReindexUseCase) Reindex(ctx context.Context) error {
	started := time.Now()
	docs := r.corpus.All()

	if err := r.index.RecreateCollection(ctx, r.embedder.Dim()); err != nil {
		return domain.WrapError(domain.ErrBackendUnavailable, "reindex_recreate", err)
	}

	indexed := 0
	for offset := 0; offset < len(docs); offset += r.batchSize {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}

		end := offset + r.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[offset:end]

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.SearchableText()
		}

		vectors, err := r.embedder.Encode(ctx, texts)
		if err != nil {
			return domain.WrapError(domain.ErrTemporary, "reindex_encode", err)
		}
		if err := r.index.UpsertDocuments(ctx, batch, vectors); err != nil {
			return domain.WrapError(domain.ErrBackendUnavailable, "reindex_upsert", err)
		}

		indexed += len(batch)
		r.logger.Debug("reindex_batch", "indexed", indexed, "total", len(docs))
	}

	r.logger.Info("reindex_complete",
		"documents", indexed,
		"dim", r.embedder.Dim(),
		"duration", time.Since(started).Round(time.Millisecond).String(),
	)
	return nil
}
