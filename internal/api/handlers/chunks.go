package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/statuscope-ai/statuscope/internal/api"
	"github.com/statuscope-ai/statuscope/internal/domain"
	"github.com/statuscope-ai/statuscope/internal/pagination"
)

type ChunkLister interface {
	ListByOrgWithCursor(ctx context.Context, orgID string, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.KnowledgeChunk], error)
}

// ChunksHandler serves the admin chunk listing. Embeddings are elided from
// responses; they are large and useless to a human reader.
type ChunksHandler struct {
	repo ChunkLister
}

func NewChunksHandler(repo ChunkLister) *ChunksHandler {
	return &ChunksHandler{repo: repo}
}

type ChunkResponse struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"project_id,omitempty"`
	SourceType     string    `json:"source_type"`
	SourceID       string    `json:"source_id"`
	ChunkIndex     int       `json:"chunk_index"`
	TotalChunks    int       `json:"total_chunks"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	EmbeddingModel string    `json:"embedding_model"`
	Keywords       []string  `json:"keywords,omitempty"`
	Categories     []string  `json:"categories,omitempty"`
	IsActive       bool      `json:"is_active"`
	ProcessedAt    time.Time `json:"processed_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ChunkListResponse struct {
	Items   []*ChunkResponse `json:"items"`
	Cursor  string           `json:"cursor,omitempty"`
	HasMore bool             `json:"has_more"`
}

// List handles GET /chunks
func (h *ChunksHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := r.URL.Query().Get("org_id")
	if orgID == "" {
		api.Error(w, http.StatusBadRequest, "org_id is required")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			api.Error(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	cursor, err := pagination.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	page, err := h.repo.ListByOrgWithCursor(r.Context(), orgID, cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*ChunkResponse, len(page.Items))
	for i, c := range page.Items {
		items[i] = &ChunkResponse{
			ID:             c.ID,
			ProjectID:      c.ProjectID,
			SourceType:     string(c.SourceType),
			SourceID:       c.SourceID,
			ChunkIndex:     c.ChunkIndex,
			TotalChunks:    c.TotalChunks,
			Title:          c.Title,
			Content:        c.Content,
			EmbeddingModel: c.EmbeddingModel,
			Keywords:       c.Keywords,
			Categories:     c.Categories,
			IsActive:       c.IsActive,
			ProcessedAt:    c.ProcessedAt,
			UpdatedAt:      c.UpdatedAt,
		}
	}

	api.Success(w, http.StatusOK, ChunkListResponse{
		Items:   items,
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	})
}
