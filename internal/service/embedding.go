package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/statuscope-ai/statuscope/internal/domain"
)

// EmbeddingClient defines the provider interface for generating embeddings.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// EmbeddingConfig controls provider batching. BatchDelay is the minimum
// spacing between batches, the primary guard against the provider's
// requests-per-second ceiling.
type EmbeddingConfig struct {
	BatchSize  int
	BatchDelay time.Duration
}

// DefaultEmbeddingConfig provides defaults suitable for OpenAI rate limits.
func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		BatchSize:  5,
		BatchDelay: 200 * time.Millisecond,
	}
}

// EmbeddingService wraps an embedding provider with input validation and
// rate-limited batching.
type EmbeddingService struct {
	client  EmbeddingClient
	cfg     EmbeddingConfig
	limiter *rate.Limiter
}

// NewEmbeddingService creates a new EmbeddingService instance.
func NewEmbeddingService(client EmbeddingClient, cfg EmbeddingConfig) *EmbeddingService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultEmbeddingConfig().BatchSize
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = DefaultEmbeddingConfig().BatchDelay
	}
	return &EmbeddingService{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(cfg.BatchDelay), 1),
	}
}

// Model returns the provider's embedding model identifier.
func (s *EmbeddingService) Model() string {
	return s.client.Model()
}

// GenerateEmbedding embeds a single text. Empty or whitespace-only input is
// a caller bug and fails fast.
func (s *EmbeddingService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyEmbeddingText
	}
	return s.client.GenerateEmbedding(ctx, text)
}

// GenerateEmbeddings embeds texts in rate-limited batches. A failing batch
// aborts the whole call with the batch bounds wrapped in the error; partial
// results are never returned.
func (s *EmbeddingService) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.cfg.BatchSize {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		end := start + s.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}

		for i := start; i < end; i++ {
			embedding, err := s.GenerateEmbedding(ctx, texts[i])
			if err != nil {
				return nil, fmt.Errorf("embedding batch %d (texts %d-%d): %w", start/s.cfg.BatchSize, start, end-1, err)
			}
			embeddings = append(embeddings, embedding)
		}
	}

	return embeddings, nil
}
