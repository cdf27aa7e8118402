package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/statuscope-ai/statuscope/internal/domain"
	"github.com/statuscope-ai/statuscope/internal/pagination"
	"github.com/statuscope-ai/statuscope/internal/service"
)

// KnowledgeChunkRepository persists indexed knowledge chunks. Stored
// project_id uses the empty string for org-wide chunks so the identity
// tuple can back a plain unique index.
type KnowledgeChunkRepository struct {
	pool *pgxpool.Pool
}

func NewKnowledgeChunkRepository(pool *pgxpool.Pool) *KnowledgeChunkRepository {
	return &KnowledgeChunkRepository{pool: pool}
}

// Upsert inserts or replaces a chunk by its identity tuple. Re-sync of the
// same source document overwrites, never duplicates.
func (r *KnowledgeChunkRepository) Upsert(ctx context.Context, c *domain.KnowledgeChunk) error {
	now := time.Now().UTC()
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO knowledge_chunks
			(id, org_id, project_id, source_type, source_id, chunk_index,
			 title, content, embedding, embedding_model, keywords, categories,
			 total_chunks, is_active, processed_at, created_at, updated_at)
		 VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 ON CONFLICT (org_id, project_id, source_type, source_id, chunk_index)
		 DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			embedding_model = EXCLUDED.embedding_model,
			keywords = EXCLUDED.keywords,
			categories = EXCLUDED.categories,
			total_chunks = EXCLUDED.total_chunks,
			is_active = EXCLUDED.is_active,
			processed_at = EXCLUDED.processed_at,
			updated_at = EXCLUDED.updated_at`,
		c.ID, c.OrgID, c.ProjectID, c.SourceType, c.SourceID, c.ChunkIndex,
		c.Title, c.Content, pgvector.NewVector(c.Embedding), c.EmbeddingModel,
		c.Keywords, c.Categories, c.TotalChunks, c.IsActive, c.ProcessedAt,
		createdAt, now,
	)
	return err
}

// HasSource reports whether any active chunk exists for the source document.
func (r *KnowledgeChunkRepository) HasSource(ctx context.Context, orgID, projectID string, sourceType domain.SourceType, sourceID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM knowledge_chunks
			WHERE org_id = $1 AND project_id = $2 AND source_type = $3 AND source_id = $4 AND is_active
		)`,
		orgID, projectID, sourceType, sourceID,
	).Scan(&exists)
	return exists, err
}

// DeleteBySourceFrom removes chunks with index >= fromIndex for a source
// document; the full-replace step after a document shrinks.
func (r *KnowledgeChunkRepository) DeleteBySourceFrom(ctx context.Context, orgID, projectID string, sourceType domain.SourceType, sourceID string, fromIndex int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM knowledge_chunks
		 WHERE org_id = $1 AND project_id = $2 AND source_type = $3 AND source_id = $4 AND chunk_index >= $5`,
		orgID, projectID, sourceType, sourceID, fromIndex,
	)
	return err
}

// DeleteBySource removes every chunk for a source document.
func (r *KnowledgeChunkRepository) DeleteBySource(ctx context.Context, orgID, projectID string, sourceType domain.SourceType, sourceID string) error {
	return r.DeleteBySourceFrom(ctx, orgID, projectID, sourceType, sourceID, 0)
}

// DeactivateByProject soft-deletes every chunk keyed to a project across
// all source types. Rows are retained for audit; retrieval excludes them.
func (r *KnowledgeChunkRepository) DeactivateByProject(ctx context.Context, projectID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE knowledge_chunks SET is_active = FALSE, updated_at = $1
		 WHERE project_id = $2 AND is_active`,
		time.Now().UTC(), projectID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// FindByFilter loads candidate chunks for retrieval. OrgID is required;
// project, source-type set and category set narrow the scan.
func (r *KnowledgeChunkRepository) FindByFilter(ctx context.Context, filter service.ChunkFilter) ([]*domain.KnowledgeChunk, error) {
	if filter.OrgID == "" {
		return nil, domain.ErrMissingOrgID
	}

	query := `SELECT id, org_id, project_id, source_type, source_id, chunk_index,
			title, content, embedding, embedding_model, keywords, categories,
			total_chunks, is_active, processed_at, created_at, updated_at
		 FROM knowledge_chunks WHERE org_id = $1`
	args := []any{filter.OrgID}

	if filter.ActiveOnly {
		query += " AND is_active"
	}
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		query += " AND project_id = $" + strconv.Itoa(len(args))
	}
	if len(filter.SourceTypes) > 0 {
		types := make([]string, len(filter.SourceTypes))
		for i, st := range filter.SourceTypes {
			types[i] = string(st)
		}
		args = append(args, types)
		query += " AND source_type = ANY($" + strconv.Itoa(len(args)) + ")"
	}
	if len(filter.Categories) > 0 {
		args = append(args, filter.Categories)
		query += " AND categories && $" + strconv.Itoa(len(args))
	}

	query += " ORDER BY source_type, source_id, chunk_index"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChunkRows(rows)
}

// CountSourceDocs returns distinct indexed source documents per source type.
func (r *KnowledgeChunkRepository) CountSourceDocs(ctx context.Context, orgID string) (map[domain.SourceType]int, error) {
	return r.countByType(ctx, orgID, `COUNT(DISTINCT source_id)`)
}

// CountChunks returns indexed chunk counts per source type.
func (r *KnowledgeChunkRepository) CountChunks(ctx context.Context, orgID string) (map[domain.SourceType]int, error) {
	return r.countByType(ctx, orgID, `COUNT(*)`)
}

func (r *KnowledgeChunkRepository) countByType(ctx context.Context, orgID, agg string) (map[domain.SourceType]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT source_type, `+agg+`
		 FROM knowledge_chunks
		 WHERE org_id = $1 AND is_active
		 GROUP BY source_type`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.SourceType]int)
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		counts[domain.SourceType(st)] = n
	}
	return counts, rows.Err()
}

// ListByOrgWithCursor pages through an organization's chunks for the admin
// listing, newest first.
func (r *KnowledgeChunkRepository) ListByOrgWithCursor(ctx context.Context, orgID string, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.KnowledgeChunk], error) {
	if limit <= 0 {
		limit = 50
	}

	var rows pgx.Rows
	var err error
	if cursor != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT id, org_id, project_id, source_type, source_id, chunk_index,
				title, content, embedding, embedding_model, keywords, categories,
				total_chunks, is_active, processed_at, created_at, updated_at
			 FROM knowledge_chunks
			 WHERE org_id = $1 AND (updated_at, id) < ($2, $3)
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $4`,
			orgID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT id, org_id, project_id, source_type, source_id, chunk_index,
				title, content, embedding, embedding_model, keywords, categories,
				total_chunks, is_active, processed_at, created_at, updated_at
			 FROM knowledge_chunks
			 WHERE org_id = $1
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $2`,
			orgID, limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanChunkRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.UpdatedAt)
	}

	return &pagination.PageResult[*domain.KnowledgeChunk]{
		Items:   items,
		Cursor:  nextCursor,
		HasMore: hasMore,
	}, nil
}

func scanChunkRows(rows pgx.Rows) ([]*domain.KnowledgeChunk, error) {
	var results []*domain.KnowledgeChunk
	for rows.Next() {
		var c domain.KnowledgeChunk
		var vec pgvector.Vector
		if err := rows.Scan(
			&c.ID, &c.OrgID, &c.ProjectID, &c.SourceType, &c.SourceID, &c.ChunkIndex,
			&c.Title, &c.Content, &vec, &c.EmbeddingModel, &c.Keywords, &c.Categories,
			&c.TotalChunks, &c.IsActive, &c.ProcessedAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		c.Embedding = vec.Slice()
		results = append(results, &c)
	}
	return results, rows.Err()
}

