package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/docgrid/docgrid/internal/config"
	"github.com/docgrid/docgrid/internal/core/ports"
	"github.com/docgrid/docgrid/internal/core/usecase"
	"github.com/docgrid/docgrid/internal/infrastructure/extractor/pdftext"
	"github.com/docgrid/docgrid/internal/infrastructure/inference"
	"github.com/docgrid/docgrid/internal/infrastructure/queue/nats"
	"github.com/docgrid/docgrid/internal/infrastructure/repository/postgres"
	"github.com/docgrid/docgrid/internal/infrastructure/resilience"
	"github.com/docgrid/docgrid/internal/infrastructure/storage/httpblob"
)

type App struct {
	Config config.Config

	Queue       ports.MessageQueue
	Docs        ports.DocumentRepository
	Collections ports.CollectionRepository

	Extractor ports.ExtractionService
	ExtractUC *usecase.ExtractUseCase
	Editor    ports.ValueEditor
	Admin     ports.ColumnAdmin

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	docs := postgres.NewDocumentRepository(db)
	collections := postgres.NewCollectionRepository(db)
	columns := postgres.NewColumnRepository(db)
	audit := postgres.NewAuditRepository(db)

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	fetcher := httpblob.New(httpblob.Options{
		Timeout:  time.Duration(cfg.FetchTimeoutSecs) * time.Second,
		MaxBytes: cfg.FetchMaxBytes,
	})
	textExtractor := pdftext.New(cfg.MaxPDFChars)
	inferenceClient := inference.New(inference.Config{
		BaseURL:     cfg.InferenceURL,
		APIKey:      cfg.InferenceAPIKey,
		Model:       cfg.InferenceModel,
		Version:     cfg.InferenceVersion,
		CallTimeout: time.Duration(cfg.InferenceTimeoutSecs) * time.Second,
		RatePerSec:  cfg.InferenceRatePerSec,
		Executor:    executor,
	})

	placeholders := cfg.DemoPlaceholders
	if len(placeholders) == 0 {
		placeholders = usecase.DefaultPlaceholders()
	}
	guard := usecase.NewDemoDataGuard(placeholders)

	extractUC := usecase.NewExtractUseCase(
		docs, collections, columns, audit,
		fetcher, inferenceClient, textExtractor,
		guard, cfg.ExtractionConcurrency,
	)
	editUC := usecase.NewEditValueUseCase(docs, collections, columns, audit)
	deleteUC := usecase.NewDeleteColumnUseCase(docs, collections, columns, audit)

	return &App{
		Config: cfg,

		Queue:       queue,
		Docs:        docs,
		Collections: collections,

		Extractor: extractUC,
		ExtractUC: extractUC,
		Editor:    editUC,
		Admin:     deleteUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
