package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chemi-labs/chemtutor/internal/config"
	"github.com/chemi-labs/chemtutor/internal/core/ports"
	"github.com/chemi-labs/chemtutor/internal/core/usecase"
	"github.com/chemi-labs/chemtutor/internal/corpus"
	"github.com/chemi-labs/chemtutor/internal/infrastructure/llm/ollama"
	"github.com/chemi-labs/chemtutor/internal/infrastructure/queue/nats"
	"github.com/chemi-labs/chemtutor/internal/infrastructure/repository/postgres"
	"github.com/chemi-labs/chemtutor/internal/infrastructure/resilience"
	"github.com/chemi-labs/chemtutor/internal/infrastructure/search/fuzzy"
	"github.com/chemi-labs/chemtutor/internal/infrastructure/storage/localfs"
	"github.com/chemi-labs/chemtutor/internal/infrastructure/vector/qdrant"
)

// App wires the corpus, retrieval stack and optional collaborators.
// Postgres and NATS are optional: with no DSN or URL configured the
// matching ports stay nil and the system runs retrieval-only features.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Corpus    ports.DocumentCorpus
	Embedder  ports.Embedder
	Index     ports.VectorIndex
	Searcher  ports.Searcher
	Tutor     ports.TutorChat
	ReindexUC ports.CorpusIndexer
	Queue     ports.MessageQueue
	Media     *localfs.MediaStorage

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	logger.Info("corpus_loaded", "path", cfg.CorpusPath, "documents", store.Len())

	expansions := usecase.DefaultExpansions()
	if cfg.ExpansionsPath != "" {
		expansions, err = usecase.LoadExpansions(cfg.ExpansionsPath)
		if err != nil {
			return nil, fmt.Errorf("load expansions: %w", err)
		}
	}

	matcher := fuzzy.NewMatcher(store)

	// One executor for every outbound backend: retry budgets are shared
	// policy, circuit breakers stay per-operation inside it.
	executor := resilience.NewExecutor(resilience.DefaultConfig())

	var (
		embedder     ports.Embedder
		index        ports.VectorIndex
		ollamaClient *ollama.Client
	)
	hybrid := strings.EqualFold(cfg.SearchMode, "hybrid")
	if hybrid {
		ollamaClient = ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.Options{
			ResilienceExecutor: executor,
		})
		encoder := ollama.NewEncoder(ollamaClient)
		if err := encoder.Init(ctx); err != nil {
			return nil, fmt.Errorf("init embedding model: %w", err)
		}
		logger.Info("embedding_model_ready", "model", cfg.OllamaEmbedModel, "dim", encoder.Dim())

		embedder = encoder
		index = qdrant.NewWithOptions(cfg.QdrantURL, cfg.QdrantCollection, qdrant.Options{
			ResilienceExecutor: executor,
		})
	}

	searcher := usecase.NewSearchService(embedder, index, matcher, usecase.SearchOptions{
		TopK:       cfg.SearchTopK,
		Threshold:  cfg.SearchScoreThreshold,
		Expansions: expansions,
		Logger:     logger,
	})

	media, err := localfs.New(cfg.MediaPath)
	if err != nil {
		return nil, fmt.Errorf("init media storage: %w", err)
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Corpus:   store,
		Embedder: embedder,
		Index:    index,
		Searcher: searcher,
		Media:    media,
	}

	var closers []func()

	var conversations ports.ConversationStore
	if cfg.PostgresDSN != "" {
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewConversationRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		conversations = repo
		closers = append(closers, func() { _ = db.Close() })
	}

	if hybrid {
		generator := ollama.NewTutor(ollamaClient)
		app.Tutor = usecase.NewTutorUseCase(searcher, generator, conversations, logger)

		app.ReindexUC = usecase.NewReindexUseCase(store, embedder, index, usecase.ReindexOptions{
			BatchSize:        cfg.IndexBatchSize,
			BatchesPerSecond: cfg.IndexBatchesPerSecond,
			Logger:           logger,
		})
	}

	if cfg.NATSURL != "" {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSReindexSubject, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			for _, close := range closers {
				close()
			}
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		app.Queue = queue
		closers = append(closers, queue.Close)
	}

	app.closeFn = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return app, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
