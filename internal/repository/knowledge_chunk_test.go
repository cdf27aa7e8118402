package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuscope-ai/statuscope/internal/domain"
	"github.com/statuscope-ai/statuscope/internal/pagination"
	"github.com/statuscope-ai/statuscope/internal/service"
	"github.com/statuscope-ai/statuscope/internal/testutil"
)

const embeddingDim = 1536

func testVector(seed float32) []float32 {
	v := make([]float32, embeddingDim)
	v[0] = seed
	v[1] = 1
	return v
}

func testChunk(orgID, projectID string, st domain.SourceType, sourceID string, idx int) *domain.KnowledgeChunk {
	return &domain.KnowledgeChunk{
		ID:             sourceID + "-" + string(rune('0'+idx)),
		OrgID:          orgID,
		ProjectID:      projectID,
		SourceType:     st,
		SourceID:       sourceID,
		ChunkIndex:     idx,
		Title:          "Title for " + sourceID,
		Content:        "Content for " + sourceID,
		Embedding:      testVector(float32(idx) + 1),
		EmbeddingModel: "text-embedding-3-small",
		Keywords:       []string{"alpha", "launch"},
		Categories:     []string{"project_management"},
		TotalChunks:    1,
		IsActive:       true,
		ProcessedAt:    time.Now().UTC(),
	}
}

func setupTestPool(t *testing.T) *pgxpool.Pool {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() {
		_ = pc.Terminate(context.Background())
	})
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	t.Cleanup(pool.Close)
	return pool
}

func TestKnowledgeChunkRepository(t *testing.T) {
	pool := setupTestPool(t)
	repo := NewKnowledgeChunkRepository(pool)
	ctx := context.Background()

	reset := func(t *testing.T) {
		require.NoError(t, testutil.TruncateAll(ctx, pool))
	}

	t.Run("UpsertAndFind", func(t *testing.T) {
		reset(t)
		c := testChunk("org-1", "proj-1", domain.SourceTypeProject, "proj-1", 0)
		require.NoError(t, repo.Upsert(ctx, c))

		found, err := repo.FindByFilter(ctx, service.ChunkFilter{OrgID: "org-1"})
		require.NoError(t, err)
		require.Len(t, found, 1)

		got := found[0]
		assert.Equal(t, c.OrgID, got.OrgID)
		assert.Equal(t, c.ProjectID, got.ProjectID)
		assert.Equal(t, c.SourceType, got.SourceType)
		assert.Equal(t, c.SourceID, got.SourceID)
		assert.Equal(t, c.Title, got.Title)
		assert.Equal(t, c.Content, got.Content)
		assert.Equal(t, c.Keywords, got.Keywords)
		assert.Equal(t, c.Categories, got.Categories)
		assert.True(t, got.IsActive)
		assert.Len(t, got.Embedding, embeddingDim)
		assert.InDelta(t, 1, got.Embedding[0], 1e-6)
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("UpsertSameIdentityOverwrites", func(t *testing.T) {
		reset(t)
		c := testChunk("org-1", "proj-1", domain.SourceTypeTask, "task-1", 0)
		require.NoError(t, repo.Upsert(ctx, c))

		updated := testChunk("org-1", "proj-1", domain.SourceTypeTask, "task-1", 0)
		updated.ID = "task-1-resync"
		updated.Content = "Revised content"
		updated.Embedding = testVector(9)
		require.NoError(t, repo.Upsert(ctx, updated))

		found, err := repo.FindByFilter(ctx, service.ChunkFilter{OrgID: "org-1"})
		require.NoError(t, err)
		require.Len(t, found, 1, "same identity tuple never duplicates")
		assert.Equal(t, "Revised content", found[0].Content)
		assert.InDelta(t, 9, found[0].Embedding[0], 1e-6)
	})

	t.Run("HasSource", func(t *testing.T) {
		reset(t)
		c := testChunk("org-1", "proj-1", domain.SourceTypeReport, "rep-1", 0)
		require.NoError(t, repo.Upsert(ctx, c))

		exists, err := repo.HasSource(ctx, "org-1", "proj-1", domain.SourceTypeReport, "rep-1")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.HasSource(ctx, "org-1", "proj-1", domain.SourceTypeReport, "rep-2")
		require.NoError(t, err)
		assert.False(t, exists)

		inactive := testChunk("org-1", "proj-1", domain.SourceTypeReport, "rep-3", 0)
		inactive.IsActive = false
		require.NoError(t, repo.Upsert(ctx, inactive))

		exists, err = repo.HasSource(ctx, "org-1", "proj-1", domain.SourceTypeReport, "rep-3")
		require.NoError(t, err)
		assert.False(t, exists, "inactive chunks do not count as indexed")
	})

	t.Run("DeleteBySourceFromTrimsTail", func(t *testing.T) {
		reset(t)
		for i := 0; i < 3; i++ {
			require.NoError(t, repo.Upsert(ctx, testChunk("org-1", "proj-1", domain.SourceTypeAttachment, "att-1", i)))
		}

		require.NoError(t, repo.DeleteBySourceFrom(ctx, "org-1", "proj-1", domain.SourceTypeAttachment, "att-1", 1))

		found, err := repo.FindByFilter(ctx, service.ChunkFilter{OrgID: "org-1"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, 0, found[0].ChunkIndex)
	})

	t.Run("DeactivateByProject", func(t *testing.T) {
		reset(t)
		require.NoError(t, repo.Upsert(ctx, testChunk("org-1", "proj-1", domain.SourceTypeProject, "proj-1", 0)))
		require.NoError(t, repo.Upsert(ctx, testChunk("org-1", "proj-1", domain.SourceTypeTask, "task-1", 0)))
		require.NoError(t, repo.Upsert(ctx, testChunk("org-1", "proj-2", domain.SourceTypeTask, "task-2", 0)))

		n, err := repo.DeactivateByProject(ctx, "proj-1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		active, err := repo.FindByFilter(ctx, service.ChunkFilter{OrgID: "org-1", ActiveOnly: true})
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "proj-2", active[0].ProjectID)

		// Rows are retained, not deleted.
		all, err := repo.FindByFilter(ctx, service.ChunkFilter{OrgID: "org-1"})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		n, err = repo.DeactivateByProject(ctx, "proj-1")
		require.NoError(t, err)
		assert.Zero(t, n, "already-deactivated rows are not touched again")
	})

	t.Run("FindByFilterNarrows", func(t *testing.T) {
		reset(t)
		require.NoError(t, repo.Upsert(ctx, testChunk("org-1", "proj-1", domain.SourceTypeProject, "proj-1", 0)))
		task := testChunk("org-1", "proj-1", domain.SourceTypeTask, "task-1", 0)
		task.Categories = []string{"risk_assessment"}
		require.NoError(t, repo.Upsert(ctx, task))
		require.NoError(t, repo.Upsert(ctx, testChunk("org-1", "proj-2", domain.SourceTypeTask, "task-2", 0)))
		require.NoError(t, repo.Upsert(ctx, testChunk("org-2", "proj-9", domain.SourceTypeTask, "task-9", 0)))

		byProject, err := repo.FindByFilter(ctx, service.ChunkFilter{OrgID: "org-1", ProjectID: "proj-1"})
		require.NoError(t, err)
		assert.Len(t, byProject, 2)

		byType, err := repo.FindByFilter(ctx, service.ChunkFilter{
			OrgID:       "org-1",
			SourceTypes: []domain.SourceType{domain.SourceTypeTask},
		})
		require.NoError(t, err)
		assert.Len(t, byType, 2)

		byCategory, err := repo.FindByFilter(ctx, service.ChunkFilter{
			OrgID:      "org-1",
			Categories: []string{"risk_assessment"},
		})
		require.NoError(t, err)
		require.Len(t, byCategory, 1)
		assert.Equal(t, "task-1", byCategory[0].SourceID)

		_, err = repo.FindByFilter(ctx, service.ChunkFilter{})
		assert.ErrorIs(t, err, domain.ErrMissingOrgID)
	})

	t.Run("Counts", func(t *testing.T) {
		reset(t)
		require.NoError(t, repo.Upsert(ctx, testChunk("org-1", "proj-1", domain.SourceTypeProject, "proj-1", 0)))
		require.NoError(t, repo.Upsert(ctx, testChunk("org-1", "proj-1", domain.SourceTypeAttachment, "att-1", 0)))
		att1 := testChunk("org-1", "proj-1", domain.SourceTypeAttachment, "att-1", 1)
		require.NoError(t, repo.Upsert(ctx, att1))

		chunks, err := repo.CountChunks(ctx, "org-1")
		require.NoError(t, err)
		assert.Equal(t, 1, chunks[domain.SourceTypeProject])
		assert.Equal(t, 2, chunks[domain.SourceTypeAttachment])

		docs, err := repo.CountSourceDocs(ctx, "org-1")
		require.NoError(t, err)
		assert.Equal(t, 1, docs[domain.SourceTypeProject])
		assert.Equal(t, 1, docs[domain.SourceTypeAttachment], "multi-chunk documents count once")
	})

	t.Run("CursorPaging", func(t *testing.T) {
		reset(t)
		for i := 0; i < 5; i++ {
			require.NoError(t, repo.Upsert(ctx, testChunk("org-1", "proj-1", domain.SourceTypeTask, "task-"+string(rune('a'+i)), 0)))
		}

		seen := make(map[string]bool)
		var cursor *pagination.Cursor
		pages := 0
		for {
			page, err := repo.ListByOrgWithCursor(ctx, "org-1", cursor, 2)
			require.NoError(t, err)
			pages++
			for _, item := range page.Items {
				assert.False(t, seen[item.ID], "no item repeats across pages")
				seen[item.ID] = true
			}
			if !page.HasMore {
				assert.Empty(t, page.Cursor)
				break
			}
			require.NotEmpty(t, page.Cursor)
			cursor, err = pagination.DecodeCursor(page.Cursor)
			require.NoError(t, err)
		}

		assert.Equal(t, 3, pages)
		assert.Len(t, seen, 5)
	})
}
