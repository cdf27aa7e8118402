package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/statuscope-ai/statuscope/internal/domain"
	"github.com/statuscope-ai/statuscope/internal/telemetry"
)

// SourceReader provides read-only snapshots of the host system's domain
// records. The engine never mutates these. projectID narrows the listing
// when non-empty; org-wide types (teams, activity) ignore it.
type SourceReader interface {
	ListProjects(ctx context.Context, orgID, projectID string) ([]*domain.ProjectRecord, error)
	ListTasks(ctx context.Context, orgID, projectID string) ([]*domain.TaskRecord, error)
	ListActivity(ctx context.Context, orgID string) ([]*domain.ActivityRecord, error)
	ListReports(ctx context.Context, orgID, projectID string) ([]*domain.ReportRecord, error)
	ListTeams(ctx context.Context, orgID string) ([]*domain.TeamRecord, error)
	ListComments(ctx context.Context, orgID, projectID string) ([]*domain.CommentRecord, error)
	ListAttachments(ctx context.Context, orgID, projectID string) ([]*domain.AttachmentRecord, error)
	GetProject(ctx context.Context, projectID string) (*domain.ProjectRecord, error)
	CountBySourceType(ctx context.Context, orgID string) (map[domain.SourceType]int, error)
}

// SyncChunkStore defines the knowledge-store operations the orchestrator needs.
type SyncChunkStore interface {
	Upsert(ctx context.Context, chunk *domain.KnowledgeChunk) error
	HasSource(ctx context.Context, orgID, projectID string, sourceType domain.SourceType, sourceID string) (bool, error)
	DeleteBySourceFrom(ctx context.Context, orgID, projectID string, sourceType domain.SourceType, sourceID string, fromIndex int) error
	DeactivateByProject(ctx context.Context, projectID string) (int64, error)
	CountSourceDocs(ctx context.Context, orgID string) (map[domain.SourceType]int, error)
}

// DocumentEmbedder generates embeddings for extracted document chunks.
type DocumentEmbedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// AttachmentContentLoader fetches attachment text bodies from object storage.
type AttachmentContentLoader interface {
	LoadText(ctx context.Context, key string) (string, error)
}

// SyncConfig controls document batching during a sync pass. BatchDelay
// spaces batches to stay under the embedding provider's rate ceiling.
type SyncConfig struct {
	BatchSize  int
	BatchDelay time.Duration
	ChunkCfg   ChunkConfig
}

// DefaultSyncConfig provides defaults matching typical provider limits.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		BatchSize:  10,
		BatchDelay: time.Second,
		ChunkCfg:   DefaultChunkConfig(),
	}
}

// SyncOptions scopes a sync pass.
type SyncOptions struct {
	SourceTypes []domain.SourceType
	ForceUpdate bool
	ProjectID   string
}

// SyncError records one document's failure without aborting the pass.
type SyncError struct {
	SourceType domain.SourceType `json:"source_type"`
	SourceID   string            `json:"source_id"`
	Message    string            `json:"message"`
}

// SourceTypeSummary aggregates outcomes for one source type.
type SourceTypeSummary struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// SyncSummary is the result of a sync pass. A sync always completes with a
// summary; per-document failures accumulate in Errors instead of
// propagating.
type SyncSummary struct {
	Processed     int                                      `json:"processed"`
	Skipped       int                                      `json:"skipped"`
	Errors        []SyncError                              `json:"errors"`
	PerSourceType map[domain.SourceType]*SourceTypeSummary `json:"per_source_type"`
}

// SourceTypeStatus compares indexed documents against live source records.
type SourceTypeStatus struct {
	Indexed int  `json:"indexed"`
	Live    int  `json:"live"`
	InSync  bool `json:"in_sync"`
}

// SyncStatus is the reconciliation report for an organization.
type SyncStatus struct {
	OrgID         string                                  `json:"org_id"`
	PerSourceType map[domain.SourceType]*SourceTypeStatus `json:"per_source_type"`
	CheckedAt     time.Time                               `json:"checked_at"`
}

// SyncService walks source collections, normalizes records into title and
// content, embeds them and upserts the results into the knowledge store.
// It holds no shared mutable state; concurrent syncs of different
// organizations are safe. Concurrent re-sync of the same source document is
// last-write-wins on the upsert, not serialized.
type SyncService struct {
	sources     SourceReader
	store       SyncChunkStore
	embedder    DocumentEmbedder
	attachments AttachmentContentLoader
	cfg         SyncConfig
	limiter     *rate.Limiter
}

// NewSyncService creates a new SyncService instance. attachments may be nil;
// attachment records are then indexed from metadata alone.
func NewSyncService(sources SourceReader, store SyncChunkStore, embedder DocumentEmbedder, attachments AttachmentContentLoader, cfg SyncConfig) *SyncService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultSyncConfig().BatchSize
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = DefaultSyncConfig().BatchDelay
	}
	if cfg.ChunkCfg.MaxChunkSize <= 0 {
		cfg.ChunkCfg = DefaultChunkConfig()
	}
	return &SyncService{
		sources:     sources,
		store:       store,
		embedder:    embedder,
		attachments: attachments,
		cfg:         cfg,
		limiter:     rate.NewLimiter(rate.Every(cfg.BatchDelay), 1),
	}
}

// SyncOrganization indexes the organization's source records. Per-document
// failures are recorded in the summary and never abort the pass; the call
// returns an error only for invalid input or context cancellation.
func (s *SyncService) SyncOrganization(ctx context.Context, orgID string, opts SyncOptions) (*SyncSummary, error) {
	if orgID == "" {
		return nil, domain.ErrMissingOrgID
	}

	ctx, span := telemetry.StartSpan(ctx, "SyncService.SyncOrganization", telemetry.SpanAttributes{
		OrgID:     orgID,
		ProjectID: opts.ProjectID,
		Operation: "sync",
	})
	defer span.End()

	types := opts.SourceTypes
	if len(types) == 0 {
		types = domain.AllSourceTypes()
	}

	summary := &SyncSummary{
		PerSourceType: make(map[domain.SourceType]*SourceTypeSummary, len(types)),
	}

	for _, st := range types {
		if !domain.IsValidSourceType(st) {
			summary.Errors = append(summary.Errors, SyncError{
				SourceType: st,
				Message:    "unknown source type",
			})
			continue
		}

		typeSummary := &SourceTypeSummary{}
		summary.PerSourceType[st] = typeSummary

		docs, err := s.loadSourceDocuments(ctx, orgID, st, opts.ProjectID)
		if err != nil {
			// One source type failing to list must not abort the others.
			typeSummary.Failed++
			summary.Errors = append(summary.Errors, SyncError{
				SourceType: st,
				Message:    err.Error(),
			})
			continue
		}

		if err := s.processDocuments(ctx, orgID, docs, opts.ForceUpdate, summary, typeSummary); err != nil {
			// Context cancellation: stop with valid partial progress.
			return summary, err
		}
	}

	return summary, nil
}

// SyncProject re-indexes a single project across the project-relevant
// source types. Fails with a not-found error when the project does not exist.
func (s *SyncService) SyncProject(ctx context.Context, projectID string, opts SyncOptions) (*SyncSummary, error) {
	if projectID == "" {
		return nil, domain.ErrProjectNotFound
	}

	project, err := s.sources.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	types := opts.SourceTypes
	if len(types) == 0 {
		types = domain.ProjectSourceTypes()
	}

	return s.SyncOrganization(ctx, project.OrgID, SyncOptions{
		SourceTypes: types,
		ForceUpdate: opts.ForceUpdate,
		ProjectID:   projectID,
	})
}

// RemoveProject soft-deletes every knowledge chunk keyed to the project so
// stale vectors are never retrievable. Removing an unindexed project is a
// no-op success.
func (s *SyncService) RemoveProject(ctx context.Context, projectID string) (int64, error) {
	if projectID == "" {
		return 0, domain.ErrProjectNotFound
	}

	ctx, span := telemetry.StartSpan(ctx, "SyncService.RemoveProject", telemetry.SpanAttributes{
		ProjectID: projectID,
		Operation: "remove",
	})
	defer span.End()

	return s.store.DeactivateByProject(ctx, projectID)
}

// GetSyncStatus compares indexed-document counts against live source-record
// counts per type, detecting drift without a re-embed.
func (s *SyncService) GetSyncStatus(ctx context.Context, orgID string) (*SyncStatus, error) {
	if orgID == "" {
		return nil, domain.ErrMissingOrgID
	}

	indexed, err := s.store.CountSourceDocs(ctx, orgID)
	if err != nil {
		return nil, err
	}
	live, err := s.sources.CountBySourceType(ctx, orgID)
	if err != nil {
		return nil, err
	}

	status := &SyncStatus{
		OrgID:         orgID,
		PerSourceType: make(map[domain.SourceType]*SourceTypeStatus),
		CheckedAt:     time.Now().UTC(),
	}
	for _, st := range domain.AllSourceTypes() {
		status.PerSourceType[st] = &SourceTypeStatus{
			Indexed: indexed[st],
			Live:    live[st],
			InSync:  indexed[st] == live[st],
		}
	}
	return status, nil
}

func (s *SyncService) loadSourceDocuments(ctx context.Context, orgID string, st domain.SourceType, projectID string) ([]sourceDocument, error) {
	switch st {
	case domain.SourceTypeProject:
		projects, err := s.sources.ListProjects(ctx, orgID, projectID)
		if err != nil {
			return nil, err
		}
		docs := make([]sourceDocument, 0, len(projects))
		for _, p := range projects {
			docs = append(docs, extractProject(p))
		}
		return docs, nil

	case domain.SourceTypeTask:
		tasks, err := s.sources.ListTasks(ctx, orgID, projectID)
		if err != nil {
			return nil, err
		}
		docs := make([]sourceDocument, 0, len(tasks))
		for _, t := range tasks {
			docs = append(docs, extractTask(t))
		}
		return docs, nil

	case domain.SourceTypeUserActivity:
		if projectID != "" {
			return nil, nil
		}
		events, err := s.sources.ListActivity(ctx, orgID)
		if err != nil {
			return nil, err
		}
		docs := make([]sourceDocument, 0, len(events))
		for _, e := range events {
			docs = append(docs, extractActivity(e))
		}
		return docs, nil

	case domain.SourceTypeReport:
		reports, err := s.sources.ListReports(ctx, orgID, projectID)
		if err != nil {
			return nil, err
		}
		docs := make([]sourceDocument, 0, len(reports))
		for _, r := range reports {
			docs = append(docs, extractReport(r))
		}
		return docs, nil

	case domain.SourceTypeTeam:
		if projectID != "" {
			return nil, nil
		}
		teams, err := s.sources.ListTeams(ctx, orgID)
		if err != nil {
			return nil, err
		}
		docs := make([]sourceDocument, 0, len(teams))
		for _, t := range teams {
			docs = append(docs, extractTeam(t))
		}
		return docs, nil

	case domain.SourceTypeComment:
		comments, err := s.sources.ListComments(ctx, orgID, projectID)
		if err != nil {
			return nil, err
		}
		docs := make([]sourceDocument, 0, len(comments))
		for _, c := range comments {
			docs = append(docs, extractComment(c))
		}
		return docs, nil

	case domain.SourceTypeAttachment:
		attachments, err := s.sources.ListAttachments(ctx, orgID, projectID)
		if err != nil {
			return nil, err
		}
		docs := make([]sourceDocument, 0, len(attachments))
		for _, a := range attachments {
			docs = append(docs, extractAttachment(a, s.loadAttachmentBody(ctx, a)))
		}
		return docs, nil
	}

	return nil, domain.ErrInvalidSourceType
}

// loadAttachmentBody fetches a text body for plain-text attachments.
// Fetch failures degrade to metadata-only indexing.
func (s *SyncService) loadAttachmentBody(ctx context.Context, a *domain.AttachmentRecord) string {
	if s.attachments == nil || a.StorageKey == "" {
		return ""
	}
	if !isTextMime(a.MimeType) {
		return ""
	}
	body, err := s.attachments.LoadText(ctx, a.StorageKey)
	if err != nil {
		log.Printf("sync: attachment %s body fetch failed, indexing metadata only: %v", a.ID, err)
		return ""
	}
	return body
}

func isTextMime(mimeType string) bool {
	switch mimeType {
	case "text/plain", "text/markdown", "text/csv", "application/json":
		return true
	}
	return false
}

// processDocuments walks docs in fixed-size batches with an inter-batch
// delay. Returns an error only when the context is cancelled; everything
// else is accumulated into the summary.
func (s *SyncService) processDocuments(ctx context.Context, orgID string, docs []sourceDocument, force bool, summary *SyncSummary, typeSummary *SourceTypeSummary) error {
	for start := 0; start < len(docs); start += s.cfg.BatchSize {
		if start > 0 {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		end := start + s.cfg.BatchSize
		if end > len(docs) {
			end = len(docs)
		}

		for _, doc := range docs[start:end] {
			if err := ctx.Err(); err != nil {
				return err
			}

			processed, err := s.processDocument(ctx, orgID, doc, force)
			switch {
			case err != nil:
				typeSummary.Failed++
				summary.Errors = append(summary.Errors, SyncError{
					SourceType: doc.SourceType,
					SourceID:   doc.SourceID,
					Message:    err.Error(),
				})
			case processed:
				typeSummary.Processed++
				summary.Processed++
			default:
				typeSummary.Skipped++
				summary.Skipped++
			}
		}
	}
	return nil
}

// processDocument indexes one source document. Returns false for idempotent
// no-ops (empty content, already indexed without ForceUpdate).
func (s *SyncService) processDocument(ctx context.Context, orgID string, doc sourceDocument, force bool) (bool, error) {
	content := doc.Content
	if content == "" {
		return false, nil
	}

	if !force {
		exists, err := s.store.HasSource(ctx, orgID, doc.ProjectID, doc.SourceType, doc.SourceID)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}

	chunks := ChunkText(content, s.cfg.ChunkCfg)
	if len(chunks) == 0 {
		return false, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = truncateRunes(c.Text, domain.MaxChunkContentChars)
	}

	embeddings, err := s.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return false, err
	}

	title := truncateRunes(doc.Title, domain.MaxChunkTitleChars)
	now := time.Now().UTC()

	for i := range chunks {
		chunk := &domain.KnowledgeChunk{
			ID:             uuid.NewString(),
			OrgID:          orgID,
			ProjectID:      doc.ProjectID,
			SourceType:     doc.SourceType,
			SourceID:       doc.SourceID,
			ChunkIndex:     i,
			Title:          title,
			Content:        texts[i],
			Embedding:      embeddings[i],
			EmbeddingModel: s.embedder.Model(),
			Keywords:       ExtractKeywords(texts[i]),
			Categories:     CategorizeContent(texts[i]),
			TotalChunks:    len(chunks),
			IsActive:       true,
			ProcessedAt:    now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := domain.ValidateKnowledgeChunk(chunk); err != nil {
			return false, err
		}
		if err := s.store.Upsert(ctx, chunk); err != nil {
			return false, err
		}
	}

	// Full-replace semantics: a document that shrank leaves no orphaned
	// trailing chunk indices behind.
	if err := s.store.DeleteBySourceFrom(ctx, orgID, doc.ProjectID, doc.SourceType, doc.SourceID, len(chunks)); err != nil {
		return false, err
	}

	return true, nil
}
