package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"research-rag/internal/ai"
	appsvc "research-rag/internal/app"
	"research-rag/internal/cache"
	"research-rag/internal/config"
	"research-rag/internal/pkg/logging"
	mysqlClient "research-rag/internal/platform/mysql"
	rabbitmqClient "research-rag/internal/platform/rabbitmq"
	redisClient "research-rag/internal/platform/redis"
	"research-rag/internal/rag"
	"research-rag/internal/repository"
	"research-rag/internal/worker"
)

type Services struct {
	Auth      *appsvc.AuthService
	Paper     *appsvc.PaperService
	Insight   *appsvc.InsightService
	Workspace *appsvc.WorkspaceService
}

type App struct {
	Config        *config.Config
	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	InsightWorker *worker.InsightPersistWorker
	IngestPool    *ants.Pool
	Services      Services

	// EmbeddingMode is "fallback" when no embedding provider is configured.
	EmbeddingMode      string
	EmbeddingDimension int
	StartedAt          time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	app := &App{Config: cfg, StartedAt: time.Now()}
	if err := app.init(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN(), mysqlClient.Options{
		MaxOpenConns:  cfg.MySQL.MaxOpenConns,
		MaxIdleConns:  cfg.MySQL.MaxIdleConns,
		SlowThreshold: time.Duration(cfg.MySQL.SlowQueryMS) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	a.MySQL = mysqlDB
	if err := repository.AutoMigrate(mysqlDB); err != nil {
		return err
	}

	if a.Redis, err = redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		return err
	}
	if a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL); err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(mysqlDB)
	paperRepo := repository.NewPaperRepository(mysqlDB)
	noteRepo := repository.NewNoteRepository(mysqlDB)
	whiteboardRepo := repository.NewWhiteboardRepository(mysqlDB)
	insightRepo := repository.NewInsightRepository(mysqlDB)

	a.InsightWorker = worker.NewInsightPersistWorker(a.MQConn, insightRepo, cfg.RabbitMQ.InsightPersistQueue)
	if err := a.InsightWorker.Start(ctx); err != nil {
		return fmt.Errorf("start insight worker failed: %w", err)
	}

	pipeline, err := a.newPipeline()
	if err != nil {
		return err
	}

	generationTimeout := time.Duration(cfg.Generation.TimeoutSeconds) * time.Second
	generator, err := ai.NewGenerator(cfg.Generation.Provider, ai.ProviderConfig{
		BaseURL: cfg.Generation.BaseURL,
		APIKey:  cfg.Generation.APIKey,
		Model:   cfg.Generation.Model,
	}, generationTimeout)
	if err != nil {
		return err
	}
	if cfg.Generation.APIKey == "" {
		log.Warn().Msg("generation api key not configured, insight requests will fail")
	}

	a.IngestPool, err = ants.NewPool(cfg.Ingest.BatchWorkers, ants.WithPanicHandler(func(p interface{}) {
		log.Error().Interface("panic", p).Msg("ingest task panicked")
	}))
	if err != nil {
		return fmt.Errorf("create ingest pool failed: %w", err)
	}

	historyCache := cache.NewInsightCache(
		a.Redis,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	a.Services = Services{
		Auth: appsvc.NewAuthService(
			userRepo,
			cfg.Auth.JWTSecret,
			time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
		),
		Paper: appsvc.NewPaperService(paperRepo, pipeline, a.IngestPool),
		Insight: appsvc.NewInsightService(
			paperRepo, noteRepo, whiteboardRepo, insightRepo,
			generator,
			generationParams(cfg.Generation),
			rabbitmqClient.NewInsightPublisher(a.MQConn, cfg.RabbitMQ.InsightPersistQueue),
			historyCache,
		),
		Workspace: appsvc.NewWorkspaceService(noteRepo, whiteboardRepo),
	}

	log.Info().
		Str("embedding", a.EmbeddingMode).
		Int("embedding_dimension", a.EmbeddingDimension).
		Str("generation_provider", cfg.Generation.Provider).
		Str("generation_model", cfg.Generation.Model).
		Msg("services ready")
	return nil
}

func (a *App) newPipeline() (*rag.Pipeline, error) {
	cfg := a.Config.Embedding
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	tokenizer, err := ai.NewTiktokenTokenizer(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	provider, err := ai.NewEmbeddingProvider(cfg.Provider, ai.ProviderConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	}, timeout)
	if err != nil {
		return nil, err
	}

	a.EmbeddingMode = cfg.Provider
	if provider == nil {
		a.EmbeddingMode = "fallback"
		log.Warn().Msg("no embedding provider configured, using token-frequency embeddings only")
	}
	embedder, err := rag.NewEmbedder(provider, tokenizer, cfg.Dimension, timeout)
	if err != nil {
		return nil, err
	}
	a.EmbeddingDimension = embedder.Dimension()
	return rag.NewPipeline(embedder, a.Config.Ingest.MaxChunkLength, cfg.Concurrency), nil
}

func generationParams(cfg config.GenerationConfig) ai.GenerationParams {
	params := ai.DefaultGenerationParams()
	params.Temperature = float32(cfg.Temperature)
	params.TopP = float32(cfg.TopP)
	if cfg.TopK > 0 {
		params.TopK = cfg.TopK
	}
	if cfg.MaxOutputTokens > 0 {
		params.MaxOutputTokens = cfg.MaxOutputTokens
	}
	if cfg.SafetyThreshold != "" {
		params.Safety = ai.SafetySettings(cfg.SafetyThreshold)
	}
	return params
}

func (a *App) Close() error {
	var closeErr error
	if a.InsightWorker != nil {
		a.InsightWorker.Close()
	}
	if a.IngestPool != nil {
		a.IngestPool.Release()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
