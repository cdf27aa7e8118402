package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/statuscope-ai/statuscope/internal/config"
	"github.com/statuscope-ai/statuscope/internal/database"
	"github.com/statuscope-ai/statuscope/internal/openai"
	"github.com/statuscope-ai/statuscope/internal/repository"
	"github.com/statuscope-ai/statuscope/internal/service"
	"github.com/statuscope-ai/statuscope/internal/storage"
)

// engine bundles the wired services every command builds on.
type engine struct {
	pool         *pgxpool.Pool
	chunkRepo    *repository.KnowledgeChunkRepository
	sourceRepo   *repository.SourceRepository
	embeddingSvc *service.EmbeddingService
	syncSvc      *service.SyncService
	retrievalSvc *service.RetrievalService
}

func (e *engine) Close() {
	e.pool.Close()
}

// buildEngine connects the database and assembles the service graph. The
// embedding provider is mandatory; without it neither sync nor retrieval
// can operate.
func buildEngine(ctx context.Context, cfg *config.Config) (*engine, error) {
	if !cfg.HasOpenAI() {
		return nil, fmt.Errorf("STATUSCOPE_OPENAI_API_KEY is required")
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("connected to database")

	chunkRepo := repository.NewKnowledgeChunkRepository(pool)
	sourceRepo := repository.NewSourceRepository(pool)

	embeddingClient := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      goopenai.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	})

	embeddingSvc := service.NewEmbeddingService(embeddingClient, service.EmbeddingConfig{
		BatchSize:  cfg.EmbedBatchSize,
		BatchDelay: cfg.EmbedBatchDelay,
	})

	var attachments service.AttachmentContentLoader
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		attachments = s3Client
	}

	chunkCfg := service.DefaultChunkConfig()
	if cfg.ChunkMaxSize > 0 {
		chunkCfg.MaxChunkSize = cfg.ChunkMaxSize
	}
	if cfg.ChunkOverlap > 0 {
		chunkCfg.OverlapSize = cfg.ChunkOverlap
	}

	syncSvc := service.NewSyncService(sourceRepo, chunkRepo, embeddingSvc, attachments, service.SyncConfig{
		BatchSize:  cfg.SyncBatchSize,
		BatchDelay: cfg.SyncBatchDelay,
		ChunkCfg:   chunkCfg,
	})

	retrievalSvc := service.NewRetrievalService(chunkRepo, embeddingSvc, syncSvc, service.RetrievalConfig{
		Limit:               cfg.RetrievalLimit,
		SimilarityThreshold: cfg.SimilarityThreshold,
	})

	return &engine{
		pool:         pool,
		chunkRepo:    chunkRepo,
		sourceRepo:   sourceRepo,
		embeddingSvc: embeddingSvc,
		syncSvc:      syncSvc,
		retrievalSvc: retrievalSvc,
	}, nil
}
