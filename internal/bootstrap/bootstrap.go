// Package bootstrap wires configuration into the analysis pipeline.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/complykit/adgm-corporate-agent/internal/config"
	"github.com/complykit/adgm-corporate-agent/internal/core/ports"
	"github.com/complykit/adgm-corporate-agent/internal/core/usecase"
	"github.com/complykit/adgm-corporate-agent/internal/infrastructure/chunking"
	"github.com/complykit/adgm-corporate-agent/internal/infrastructure/corpusfs"
	"github.com/complykit/adgm-corporate-agent/internal/infrastructure/docx"
	"github.com/complykit/adgm-corporate-agent/internal/infrastructure/llm"
	natsqueue "github.com/complykit/adgm-corporate-agent/internal/infrastructure/queue/nats"
	"github.com/complykit/adgm-corporate-agent/internal/infrastructure/repository/postgres"
	"github.com/complykit/adgm-corporate-agent/internal/infrastructure/resilience"
	"github.com/complykit/adgm-corporate-agent/internal/infrastructure/storage/localfs"
	"github.com/complykit/adgm-corporate-agent/internal/infrastructure/vector/chroma"
	"github.com/complykit/adgm-corporate-agent/internal/observability/logging"
	"github.com/complykit/adgm-corporate-agent/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	AnalyzeUC ports.DocumentAnalyzer
	IngestUC  ports.CorpusIngestor
	Metrics   *metrics.PipelineMetrics

	// Bus is nil unless NATS_URL is configured.
	Bus *natsqueue.Bus

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	pipelineMetrics := metrics.NewPipelineMetrics(service)

	store := chroma.New(cfg.ChromaURL, cfg.ChromaCollection)

	retriever := usecase.NewEvidenceRetriever(store, logger)
	retriever.OnFailure(func() {
		pipelineMetrics.RecordRetrievalFailure(service)
	})

	rules, types, err := loadRuleTables(cfg, logger)
	if err != nil {
		return nil, err
	}

	var completion llm.Client
	if cfg.LLMEnabled || cfg.ClassifierFallbackEnabled {
		completion, err = llm.NewClient(llm.Options{
			Provider:      cfg.LLMProvider,
			OpenAIAPIKey:  cfg.OpenAIAPIKey,
			OpenAIModel:   cfg.OpenAIModel,
			OpenAIBaseURL: cfg.OpenAIBaseURL,
			OllamaURL:     cfg.OllamaURL,
			OllamaModel:   cfg.OllamaGenModel,
			RateLimitRPS:  cfg.LLMRateLimitRPS,
		})
		if err != nil {
			return nil, fmt.Errorf("init llm client: %w", err)
		}
	}

	classifier := usecase.NewClassifier(types, completion, cfg.ClassifierFallbackEnabled && completion != nil, logger)
	engine := usecase.NewRuleEngine(rules, retriever)

	var augmenter *usecase.Augmenter
	if cfg.LLMEnabled && completion != nil {
		executor := resilience.NewExecutor(resilience.Config{
			RetryMaxAttempts:    cfg.LLMMaxRetries + 1,
			RetryInitialBackoff: time.Second,
			RetryMaxBackoff:     30 * time.Second,
			RetryMultiplier:     2.0,
			BreakerEnabled:      true,
		})
		augmenter = usecase.NewAugmenter(completion, executor, logger)
	}

	artifacts, err := localfs.New(cfg.OutputsDir)
	if err != nil {
		return nil, fmt.Errorf("init artifact storage: %w", err)
	}

	analyzeUC := usecase.NewAnalyzeDocumentUseCase(
		docx.NewReader(),
		classifier,
		engine,
		augmenter,
		docx.NewAnnotator(),
		artifacts,
		logger,
	)

	closers := make([]func(), 0, 2)

	if cfg.PostgresDSN != "" {
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		history := postgres.NewHistoryRepository(db)
		if err := history.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure history schema: %w", err)
		}
		analyzeUC = analyzeUC.WithHistory(history)
		closers = append(closers, func() { _ = db.Close() })
	}

	var bus *natsqueue.Bus
	if cfg.NATSURL != "" {
		bus, err = natsqueue.New(cfg.NATSURL, cfg.NATSAnalyzedSubject, cfg.NATSRequestSubject)
		if err != nil {
			for _, closeFn := range closers {
				closeFn()
			}
			return nil, fmt.Errorf("init nats bus: %w", err)
		}
		analyzeUC = analyzeUC.WithEvents(bus)
		closers = append(closers, bus.Close)
	}

	readers := []ports.CorpusReader{
		corpusfs.NewPDFReader(),
		corpusfs.NewDocxReader(),
	}
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	ingestUC := usecase.NewCorpusIngestUseCase(store, readers, chunker, cfg.MaxSegmentChars, logger)

	return &App{
		Config:    cfg,
		Logger:    logger,
		AnalyzeUC: analyzeUC,
		IngestUC:  ingestUC,
		Metrics:   pipelineMetrics,
		Bus:       bus,
		closeFn: func() {
			for _, closeFn := range closers {
				closeFn()
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func loadRuleTables(cfg config.Config, logger *slog.Logger) ([]usecase.Rule, []usecase.TypeKeywords, error) {
	if cfg.RulesetPath == "" {
		return nil, nil, nil
	}
	rules, types, err := config.LoadRuleset(cfg.RulesetPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load ruleset %s: %w", cfg.RulesetPath, err)
	}
	logger.Info("loaded ruleset overrides",
		"path", cfg.RulesetPath,
		"rules", len(rules),
		"doc_types", len(types))
	return rules, types, nil
}
