package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/statuscope-ai/statuscope/internal/domain"
	"github.com/statuscope-ai/statuscope/internal/telemetry"
)

const (
	defaultRetrievalLimit      = 10
	defaultSimilarityThreshold = 0.7
)

// ChunkFilter is the coarse pre-similarity filter applied when loading
// candidate chunks. OrgID is required; the rest is optional. The filter
// exists to bound the brute-force comparison cost, nothing more.
type ChunkFilter struct {
	OrgID       string
	ProjectID   string
	SourceTypes []domain.SourceType
	Categories  []string
	ActiveOnly  bool
}

// RetrievalChunkStore defines the read-only store access retrieval needs.
type RetrievalChunkStore interface {
	FindByFilter(ctx context.Context, filter ChunkFilter) ([]*domain.KnowledgeChunk, error)
	CountChunks(ctx context.Context, orgID string) (map[domain.SourceType]int, error)
}

// QueryEmbedder embeds a query text.
type QueryEmbedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// OrgSyncer triggers a just-in-time sync for an empty tenant.
type OrgSyncer interface {
	SyncOrganization(ctx context.Context, orgID string, opts SyncOptions) (*SyncSummary, error)
}

// RetrievalOptions scopes a retrieval call.
type RetrievalOptions struct {
	OrgID               string
	ProjectID           string
	SourceTypes         []domain.SourceType
	Categories          []string
	Limit               int
	SimilarityThreshold float64
}

// RetrievedDocument is one ranked retrieval result.
type RetrievedDocument struct {
	SourceType  domain.SourceType `json:"source_type"`
	SourceID    string            `json:"source_id"`
	ProjectID   string            `json:"project_id,omitempty"`
	ChunkIndex  int               `json:"chunk_index"`
	TotalChunks int               `json:"total_chunks"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Similarity  float64           `json:"similarity"`
	Keywords    []string          `json:"keywords,omitempty"`
	Categories  []string          `json:"categories,omitempty"`
}

// RetrievalConfig carries deployment-level defaults; per-request options
// override them.
type RetrievalConfig struct {
	Limit               int
	SimilarityThreshold float64
}

// DefaultRetrievalConfig provides defaults tuned for report generation.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		Limit:               defaultRetrievalLimit,
		SimilarityThreshold: defaultSimilarityThreshold,
	}
}

// RetrievalService answers similarity queries over the knowledge store. It
// is a read-only consumer: it never mutates chunks.
type RetrievalService struct {
	store    RetrievalChunkStore
	embedder QueryEmbedder
	syncer   OrgSyncer
	cfg      RetrievalConfig
}

// NewRetrievalService creates a new RetrievalService instance. syncer may be
// nil to disable the just-in-time sync for empty tenants.
func NewRetrievalService(store RetrievalChunkStore, embedder QueryEmbedder, syncer OrgSyncer, cfg RetrievalConfig) *RetrievalService {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultRetrievalLimit
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = defaultSimilarityThreshold
	}
	return &RetrievalService{
		store:    store,
		embedder: embedder,
		syncer:   syncer,
		cfg:      cfg,
	}
}

// RetrieveRelevantDocuments embeds the query, filters stored chunks, scores
// them by cosine similarity and returns a ranked, capped result set. An
// empty result is a valid outcome for a new or sparse tenant, never an
// error; a query-embedding failure propagates since there is no retrieval
// without a query vector.
func (s *RetrievalService) RetrieveRelevantDocuments(ctx context.Context, query string, opts RetrievalOptions) ([]*RetrievedDocument, error) {
	if opts.OrgID == "" {
		return nil, domain.ErrMissingOrgID
	}
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}

	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.Retrieve", telemetry.SpanAttributes{
		OrgID:     opts.OrgID,
		ProjectID: opts.ProjectID,
		Operation: "retrieve",
	})
	defer span.End()

	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.Limit
	}
	threshold := opts.SimilarityThreshold
	if threshold <= 0 {
		threshold = s.cfg.SimilarityThreshold
	}

	queryVec, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	filter := ChunkFilter{
		OrgID:       opts.OrgID,
		ProjectID:   opts.ProjectID,
		SourceTypes: opts.SourceTypes,
		Categories:  opts.Categories,
		ActiveOnly:  true,
	}

	candidates, err := s.store.FindByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 && s.syncer != nil {
		// Just-in-time sync for an empty tenant; best effort, one retry.
		if _, syncErr := s.syncer.SyncOrganization(ctx, opts.OrgID, SyncOptions{}); syncErr != nil {
			log.Printf("retrieval: just-in-time sync for org %s failed: %v", opts.OrgID, syncErr)
		}
		candidates, err = s.store.FindByFilter(ctx, filter)
		if err != nil {
			return nil, err
		}
	}

	results := make([]*RetrievedDocument, 0, limit)
	for _, c := range candidates {
		score := CosineSimilarity(queryVec, c.Embedding)
		// A score of exactly 0 marks a dimensionality or model mismatch,
		// not a legitimate low-relevance signal.
		if score == 0 || score < threshold {
			continue
		}
		results = append(results, &RetrievedDocument{
			SourceType:  c.SourceType,
			SourceID:    c.SourceID,
			ProjectID:   c.ProjectID,
			ChunkIndex:  c.ChunkIndex,
			TotalChunks: c.TotalChunks,
			Title:       c.Title,
			Content:     c.Content,
			Similarity:  score,
			Keywords:    c.Keywords,
			Categories:  c.Categories,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// GetKnowledgeBaseStats returns indexed-chunk counts per source type. A
// read-only administrative surface, not part of the retrieval hot path.
func (s *RetrievalService) GetKnowledgeBaseStats(ctx context.Context, orgID string) (map[domain.SourceType]int, error) {
	if orgID == "" {
		return nil, domain.ErrMissingOrgID
	}
	return s.store.CountChunks(ctx, orgID)
}

const (
	reportContextHeader = "=== RETRIEVED CONTEXT START ==="
	reportContextFooter = "=== RETRIEVED CONTEXT END ==="
)

// BuildReportContext renders retrieval results as a text block for a
// downstream LLM prompt. Results are grouped by source type with relevance
// percentages; header and footer markers let the prompt unambiguously
// locate retrieved context. Pure formatting, no retrieval logic.
func BuildReportContext(results []*RetrievedDocument, reportType string) string {
	if len(results) == 0 {
		return ""
	}

	grouped := make(map[domain.SourceType][]*RetrievedDocument)
	for _, r := range results {
		grouped[r.SourceType] = append(grouped[r.SourceType], r)
	}

	var b strings.Builder
	b.WriteString(reportContextHeader)
	b.WriteString("\n")
	if reportType != "" {
		fmt.Fprintf(&b, "Report type: %s\n", reportType)
	}

	for _, st := range domain.AllSourceTypes() {
		docs, ok := grouped[st]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n", st)
		for _, d := range docs {
			fmt.Fprintf(&b, "- [%.0f%% relevant] %s\n", d.Similarity*100, d.Title)
			fmt.Fprintf(&b, "  %s\n", strings.ReplaceAll(d.Content, "\n", "\n  "))
		}
	}

	b.WriteString("\n")
	b.WriteString(reportContextFooter)
	return b.String()
}
