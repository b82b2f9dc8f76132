// Package bootstrap wires configuration, infrastructure and use cases into
// a runnable application for both the api and worker binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kseverin/lore-assistant/internal/config"
	"github.com/kseverin/lore-assistant/internal/core/domain"
	"github.com/kseverin/lore-assistant/internal/core/ports"
	"github.com/kseverin/lore-assistant/internal/core/usecase"
	"github.com/kseverin/lore-assistant/internal/infrastructure/embedshard"
	"github.com/kseverin/lore-assistant/internal/infrastructure/extractor/pdfsource"
	"github.com/kseverin/lore-assistant/internal/infrastructure/extractor/plaintext"
	"github.com/kseverin/lore-assistant/internal/infrastructure/llm/ollama"
	"github.com/kseverin/lore-assistant/internal/infrastructure/llm/openaicompat"
	"github.com/kseverin/lore-assistant/internal/infrastructure/queue/nats"
	"github.com/kseverin/lore-assistant/internal/infrastructure/registry/xlsx"
	"github.com/kseverin/lore-assistant/internal/infrastructure/repository/postgres"
	"github.com/kseverin/lore-assistant/internal/infrastructure/resilience"
	"github.com/kseverin/lore-assistant/internal/infrastructure/segmenting"
	"github.com/kseverin/lore-assistant/internal/infrastructure/storage/localfs"
	"github.com/kseverin/lore-assistant/internal/infrastructure/storage/s3"
	"github.com/kseverin/lore-assistant/internal/observability/metrics"
)

const shardPrefix = "shards/"

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Sources  ports.SourceRepository
	Profiles ports.ProfileStore

	SearchUC  ports.PassageSearchService
	AgentUC   ports.AgentService
	IngestUC  ports.SourceIngestor
	ProcessUC ports.SourceProcessor

	HTTPMetrics *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sourceRepo := postgres.NewSourceRepository(db)
	if err := sourceRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure sources schema: %w", err)
	}
	profileRepo := postgres.NewProfileRepository(db)
	if err := profileRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure profiles schema: %w", err)
	}

	storage, err := newObjectStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	completion, embedder, err := newLLM(cfg, executor)
	if err != nil {
		return nil, fmt.Errorf("init llm backend: %w", err)
	}

	units, err := newUnitRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("load unit registry: %w", err)
	}

	rules, err := config.LoadClassifierRules(cfg.ClassifierRulesPath)
	if err != nil {
		return nil, fmt.Errorf("load classifier rules: %w", err)
	}
	classifier := usecase.NewClassifier(rules)

	shardStore := embedshard.New(storage, shardPrefix)
	searchUC := usecase.NewSearchUseCase(embedder, shardStore, units, domain.SearchDefaults{
		TopK:          cfg.SearchTopK,
		MinScore:      cfg.SearchMinScore,
		MaxCandidates: cfg.SearchMaxCandidates,
	})

	httpMetrics := metrics.NewHTTPServerMetrics(service)
	nuance := usecase.NewNuanceAnalyzer(completion)

	retrieval := usecase.NewRetrievalHandler(searchUC, completion, nuance, usecase.RetrievalLimits{
		TopK:     cfg.RetrievalTopK,
		MinScore: cfg.RetrievalMinScore,
	})
	hypothesis := usecase.NewHypothesisHandler(searchUC, completion, usecase.RetrievalLimits{
		TopK:     cfg.HypothesisTopK,
		MinScore: cfg.HypothesisMinScore,
	})
	knowledge := usecase.NewKnowledgeHandler(profileRepo)

	agentUC := usecase.NewRouter(
		classifier,
		retrieval,
		hypothesis,
		knowledge,
		metrics.NewRouterObserver(httpMetrics, service),
	)

	plainExtractor := plaintext.NewExtractor(storage)
	extractor := pdfsource.NewExtractor(storage, plainExtractor)
	segmenter := segmenting.New(cfg.MaxPassageLen)

	ingestUC := usecase.NewIngestSourceUseCase(sourceRepo, storage, queue)
	processUC := usecase.NewProcessSourceUseCase(sourceRepo, extractor, segmenter, embedder, shardStore)

	return &App{
		Config: cfg,

		Queue:    queue,
		Sources:  sourceRepo,
		Profiles: profileRepo,

		SearchUC:  searchUC,
		AgentUC:   agentUC,
		IngestUC:  ingestUC,
		ProcessUC: processUC,

		HTTPMetrics: httpMetrics,

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

func newObjectStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "s3":
		return s3.New(ctx, s3.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "local", "":
		return localfs.New(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newLLM(cfg config.Config, executor *resilience.Executor) (ports.CompletionClient, ports.Embedder, error) {
	switch cfg.LLMProvider {
	case "openai":
		client := openaicompat.New(openaicompat.Config{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			ChatModel:  cfg.OpenAIChatModel,
			EmbedModel: cfg.OpenAIEmbedModel,
			Dimensions: cfg.OpenAIDimensions,
		}, executor)
		return client, openaicompat.NewEmbedder(client), nil
	case "ollama", "":
		client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
		return client, ollama.NewEmbedder(client), nil
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

func newUnitRegistry(cfg config.Config) (ports.UnitRegistry, error) {
	if cfg.UnitRegistryPath == "" {
		slog.Info("unit registry not configured, citations fall back to unit ids")
		return emptyRegistry{}, nil
	}
	return xlsx.Load(cfg.UnitRegistryPath)
}

type emptyRegistry struct{}

func (emptyRegistry) UnitName(string) string { return "" }
