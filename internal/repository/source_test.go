package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuscope-ai/statuscope/internal/domain"
)

func seedSourceRows(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	stmts := []string{
		`INSERT INTO organizations (id, name) VALUES ('org-1', 'Acme'), ('org-2', 'Globex')`,
		`INSERT INTO projects (id, org_id, name, description, status, owner_name)
		 VALUES ('proj-1', 'org-1', 'Alpha Launch', 'ship v1 by Q3', 'active', 'Lee'),
		        ('proj-2', 'org-1', 'Beta Program', '', 'planning', ''),
		        ('proj-9', 'org-2', 'Other Org Project', '', '', '')`,
		`INSERT INTO tasks (id, org_id, project_id, title, status, priority)
		 VALUES ('task-1', 'org-1', 'proj-1', 'Fix login flow', 'in_progress', 'high'),
		        ('task-2', 'org-1', 'proj-2', 'Draft beta invite', 'todo', 'low')`,
		`INSERT INTO activity_events (id, org_id, project_id, user_name, action)
		 VALUES ('act-1', 'org-1', 'proj-1', 'lee', 'closed_task')`,
		`INSERT INTO reports (id, org_id, project_id, title, report_type, content)
		 VALUES ('rep-1', 'org-1', 'proj-1', 'Weekly status', 'status', 'All on track')`,
		`INSERT INTO teams (id, org_id, name, lead_name, member_count)
		 VALUES ('team-1', 'org-1', 'Platform', 'Kim', 4)`,
		`INSERT INTO comments (id, org_id, project_id, task_id, author_name, body)
		 VALUES ('com-1', 'org-1', 'proj-1', 'task-1', 'lee', 'Blocked on SSO config')`,
		`INSERT INTO attachments (id, org_id, project_id, filename, mime_type, storage_key)
		 VALUES ('att-1', 'org-1', 'proj-1', 'kickoff-notes.txt', 'text/plain', 'org-1/att-1')`,
	}
	for _, stmt := range stmts {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err)
	}
}

func TestSourceRepository(t *testing.T) {
	pool := setupTestPool(t)
	repo := NewSourceRepository(pool)
	ctx := context.Background()
	seedSourceRows(ctx, t, pool)

	t.Run("ListProjects", func(t *testing.T) {
		projects, err := repo.ListProjects(ctx, "org-1", "")
		require.NoError(t, err)
		require.Len(t, projects, 2, "other org's projects excluded")

		scoped, err := repo.ListProjects(ctx, "org-1", "proj-1")
		require.NoError(t, err)
		require.Len(t, scoped, 1)
		assert.Equal(t, "Alpha Launch", scoped[0].Name)
		assert.Equal(t, "ship v1 by Q3", scoped[0].Description)
	})

	t.Run("GetProject", func(t *testing.T) {
		p, err := repo.GetProject(ctx, "proj-1")
		require.NoError(t, err)
		assert.Equal(t, "org-1", p.OrgID)
		assert.Equal(t, "Alpha Launch", p.Name)

		_, err = repo.GetProject(ctx, "no-such-project")
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})

	t.Run("ListTasksScopedByProject", func(t *testing.T) {
		all, err := repo.ListTasks(ctx, "org-1", "")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		scoped, err := repo.ListTasks(ctx, "org-1", "proj-1")
		require.NoError(t, err)
		require.Len(t, scoped, 1)
		assert.Equal(t, "Fix login flow", scoped[0].Title)
		assert.Equal(t, "high", scoped[0].Priority)
	})

	t.Run("OrgWideLists", func(t *testing.T) {
		activity, err := repo.ListActivity(ctx, "org-1")
		require.NoError(t, err)
		require.Len(t, activity, 1)
		assert.Equal(t, "closed_task", activity[0].Action)

		teams, err := repo.ListTeams(ctx, "org-1")
		require.NoError(t, err)
		require.Len(t, teams, 1)
		assert.Equal(t, "Platform", teams[0].Name)
		assert.Equal(t, 4, teams[0].MemberCount)
	})

	t.Run("ProjectScopedLists", func(t *testing.T) {
		reports, err := repo.ListReports(ctx, "org-1", "proj-1")
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, "Weekly status", reports[0].Title)

		comments, err := repo.ListComments(ctx, "org-1", "proj-1")
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, "Blocked on SSO config", comments[0].Body)

		attachments, err := repo.ListAttachments(ctx, "org-1", "proj-1")
		require.NoError(t, err)
		require.Len(t, attachments, 1)
		assert.Equal(t, "kickoff-notes.txt", attachments[0].Filename)
		assert.Equal(t, "org-1/att-1", attachments[0].StorageKey)
	})

	t.Run("CountBySourceType", func(t *testing.T) {
		counts, err := repo.CountBySourceType(ctx, "org-1")
		require.NoError(t, err)
		assert.Equal(t, 2, counts[domain.SourceTypeProject])
		assert.Equal(t, 2, counts[domain.SourceTypeTask])
		assert.Equal(t, 1, counts[domain.SourceTypeUserActivity])
		assert.Equal(t, 1, counts[domain.SourceTypeReport])
		assert.Equal(t, 1, counts[domain.SourceTypeTeam])
		assert.Equal(t, 1, counts[domain.SourceTypeComment])
		assert.Equal(t, 1, counts[domain.SourceTypeAttachment])
	})

	t.Run("ListOrgIDs", func(t *testing.T) {
		ids, err := repo.ListOrgIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"org-1", "org-2"}, ids)
	})
}
