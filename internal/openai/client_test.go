package openai

import (
	"context"
	"errors"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/statuscope-ai/statuscope/internal/domain"
)

type MockEmbeddingAPI struct {
	mock.Mock
}

func (m *MockEmbeddingAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func newTestClient(api EmbeddingAPI, dimensions int) *Client {
	return &Client{
		api:        api,
		model:      DefaultEmbeddingModel,
		dimensions: dimensions,
	}
}

func TestClient_GenerateEmbedding_Success(t *testing.T) {
	api := new(MockEmbeddingAPI)
	vec := []float32{0.1, 0.2, 0.3}
	api.On("CreateEmbeddings", mock.Anything, "hello world").Return(vec, nil)
	client := newTestClient(api, 3)

	got, err := client.GenerateEmbedding(context.Background(), "hello world")

	require.NoError(t, err)
	assert.Equal(t, vec, got)
	api.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_EmptyText(t *testing.T) {
	api := new(MockEmbeddingAPI)
	client := newTestClient(api, 3)

	_, err := client.GenerateEmbedding(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrEmptyEmbeddingText)
	api.AssertNotCalled(t, "CreateEmbeddings")
}

func TestClient_GenerateEmbedding_APIError(t *testing.T) {
	api := new(MockEmbeddingAPI)
	apiErr := errors.New("rate limited")
	api.On("CreateEmbeddings", mock.Anything, "hello").Return(nil, apiErr)
	client := newTestClient(api, 3)

	_, err := client.GenerateEmbedding(context.Background(), "hello")

	assert.ErrorIs(t, err, apiErr)
}

func TestClient_GenerateEmbedding_DimensionMismatch(t *testing.T) {
	api := new(MockEmbeddingAPI)
	api.On("CreateEmbeddings", mock.Anything, "hello").Return([]float32{0.1, 0.2}, nil)
	client := newTestClient(api, 1536)

	_, err := client.GenerateEmbedding(context.Background(), "hello")

	assert.ErrorIs(t, err, domain.ErrEmbeddingDimensions)
	assert.Contains(t, err.Error(), "expected 1536 dimensions, got 2")
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "test-key"})

	assert.Equal(t, string(DefaultEmbeddingModel), client.Model())
	assert.Equal(t, DefaultEmbeddingDimensions, client.dimensions)
}

func TestNewClientWithConfig_Overrides(t *testing.T) {
	client := NewClientWithConfig(Config{
		APIKey:              "test-key",
		EmbeddingModel:      goopenai.LargeEmbedding3,
		EmbeddingDimensions: 3072,
	})

	assert.Equal(t, string(goopenai.LargeEmbedding3), client.Model())
	assert.Equal(t, 3072, client.dimensions)
}

func TestNewClientFromEnv_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewClientFromEnv()

	assert.ErrorIs(t, err, ErrNoAPIKey)
}
