package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// ServiceKey guards the HTTP surface. Empty disables auth (dev only).
	ServiceKey string `envconfig:"SERVICE_KEY"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`

	// Batching knobs; both exist to stay under the embedding provider's
	// requests-per-second ceiling.
	EmbedBatchSize  int           `envconfig:"EMBED_BATCH_SIZE" default:"5"`
	EmbedBatchDelay time.Duration `envconfig:"EMBED_BATCH_DELAY" default:"200ms"`
	SyncBatchSize   int           `envconfig:"SYNC_BATCH_SIZE" default:"10"`
	SyncBatchDelay  time.Duration `envconfig:"SYNC_BATCH_DELAY" default:"1s"`

	// SyncInterval enables the background re-sync worker when positive.
	SyncInterval time.Duration `envconfig:"SYNC_INTERVAL" default:"0"`

	SimilarityThreshold float64 `envconfig:"SIMILARITY_THRESHOLD" default:"0.7"`
	RetrievalLimit      int     `envconfig:"RETRIEVAL_LIMIT" default:"10"`

	ChunkMaxSize int `envconfig:"CHUNK_MAX_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"100"`

	// S3-compatible storage holding attachment bodies.
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"statuscope-attachments"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("STATUSCOPE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
