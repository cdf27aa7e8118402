package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/statuscope-ai/statuscope/internal/domain"
)

// SourceRepository reads the host system's CRUD tables. Everything here is
// SELECT-only; the sync orchestrator owns no writes to these tables.
type SourceRepository struct {
	pool *pgxpool.Pool
}

func NewSourceRepository(pool *pgxpool.Pool) *SourceRepository {
	return &SourceRepository{pool: pool}
}

func (r *SourceRepository) ListProjects(ctx context.Context, orgID, projectID string) ([]*domain.ProjectRecord, error) {
	query := `SELECT id, org_id, name, description, status, owner_name,
			start_date, end_date, task_count, member_count, updated_at
		 FROM projects WHERE org_id = $1`
	args := []any{orgID}
	if projectID != "" {
		query += " AND id = $2"
		args = append(args, projectID)
	}
	query += " ORDER BY updated_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.ProjectRecord
	for rows.Next() {
		var p domain.ProjectRecord
		if err := rows.Scan(&p.ID, &p.OrgID, &p.Name, &p.Description, &p.Status,
			&p.OwnerName, &p.StartDate, &p.EndDate, &p.TaskCount, &p.MemberCount, &p.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, &p)
	}
	return results, rows.Err()
}

func (r *SourceRepository) GetProject(ctx context.Context, projectID string) (*domain.ProjectRecord, error) {
	var p domain.ProjectRecord
	err := r.pool.QueryRow(ctx,
		`SELECT id, org_id, name, description, status, owner_name,
			start_date, end_date, task_count, member_count, updated_at
		 FROM projects WHERE id = $1`,
		projectID,
	).Scan(&p.ID, &p.OrgID, &p.Name, &p.Description, &p.Status,
		&p.OwnerName, &p.StartDate, &p.EndDate, &p.TaskCount, &p.MemberCount, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SourceRepository) ListTasks(ctx context.Context, orgID, projectID string) ([]*domain.TaskRecord, error) {
	query := `SELECT id, org_id, project_id, title, description, status,
			priority, assignee_name, due_date, updated_at
		 FROM tasks WHERE org_id = $1`
	args := []any{orgID}
	if projectID != "" {
		query += " AND project_id = $2"
		args = append(args, projectID)
	}
	query += " ORDER BY updated_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.TaskRecord
	for rows.Next() {
		var t domain.TaskRecord
		if err := rows.Scan(&t.ID, &t.OrgID, &t.ProjectID, &t.Title, &t.Description,
			&t.Status, &t.Priority, &t.AssigneeName, &t.DueDate, &t.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, &t)
	}
	return results, rows.Err()
}

func (r *SourceRepository) ListActivity(ctx context.Context, orgID string) ([]*domain.ActivityRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, org_id, project_id, user_name, action, detail, occurred_at
		 FROM activity_events WHERE org_id = $1
		 ORDER BY occurred_at DESC`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.ActivityRecord
	for rows.Next() {
		var a domain.ActivityRecord
		if err := rows.Scan(&a.ID, &a.OrgID, &a.ProjectID, &a.UserName,
			&a.Action, &a.Detail, &a.OccurredAt); err != nil {
			return nil, err
		}
		results = append(results, &a)
	}
	return results, rows.Err()
}

func (r *SourceRepository) ListReports(ctx context.Context, orgID, projectID string) ([]*domain.ReportRecord, error) {
	query := `SELECT id, org_id, project_id, title, report_type, content,
			generated_by, created_at
		 FROM reports WHERE org_id = $1`
	args := []any{orgID}
	if projectID != "" {
		query += " AND project_id = $2"
		args = append(args, projectID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.ReportRecord
	for rows.Next() {
		var rep domain.ReportRecord
		if err := rows.Scan(&rep.ID, &rep.OrgID, &rep.ProjectID, &rep.Title,
			&rep.ReportType, &rep.Content, &rep.GeneratedBy, &rep.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, &rep)
	}
	return results, rows.Err()
}

func (r *SourceRepository) ListTeams(ctx context.Context, orgID string) ([]*domain.TeamRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, org_id, name, description, lead_name, member_count, updated_at
		 FROM teams WHERE org_id = $1
		 ORDER BY updated_at DESC`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.TeamRecord
	for rows.Next() {
		var t domain.TeamRecord
		if err := rows.Scan(&t.ID, &t.OrgID, &t.Name, &t.Description,
			&t.LeadName, &t.MemberCount, &t.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, &t)
	}
	return results, rows.Err()
}

func (r *SourceRepository) ListComments(ctx context.Context, orgID, projectID string) ([]*domain.CommentRecord, error) {
	query := `SELECT id, org_id, project_id, task_id, author_name, body, created_at
		 FROM comments WHERE org_id = $1`
	args := []any{orgID}
	if projectID != "" {
		query += " AND project_id = $2"
		args = append(args, projectID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.CommentRecord
	for rows.Next() {
		var c domain.CommentRecord
		if err := rows.Scan(&c.ID, &c.OrgID, &c.ProjectID, &c.TaskID,
			&c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, &c)
	}
	return results, rows.Err()
}

func (r *SourceRepository) ListAttachments(ctx context.Context, orgID, projectID string) ([]*domain.AttachmentRecord, error) {
	query := `SELECT id, org_id, project_id, filename, description, mime_type,
			size_bytes, storage_key, uploaded_by, created_at
		 FROM attachments WHERE org_id = $1`
	args := []any{orgID}
	if projectID != "" {
		query += " AND project_id = $2"
		args = append(args, projectID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.AttachmentRecord
	for rows.Next() {
		var a domain.AttachmentRecord
		if err := rows.Scan(&a.ID, &a.OrgID, &a.ProjectID, &a.Filename, &a.Description,
			&a.MimeType, &a.SizeBytes, &a.StorageKey, &a.UploadedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, &a)
	}
	return results, rows.Err()
}

// CountBySourceType returns live record counts per source type for the
// sync status reconciliation.
func (r *SourceRepository) CountBySourceType(ctx context.Context, orgID string) (map[domain.SourceType]int, error) {
	tables := map[domain.SourceType]string{
		domain.SourceTypeProject:      "projects",
		domain.SourceTypeTask:         "tasks",
		domain.SourceTypeUserActivity: "activity_events",
		domain.SourceTypeReport:       "reports",
		domain.SourceTypeTeam:         "teams",
		domain.SourceTypeComment:      "comments",
		domain.SourceTypeAttachment:   "attachments",
	}

	counts := make(map[domain.SourceType]int, len(tables))
	for st, table := range tables {
		var n int
		if err := r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM `+table+` WHERE org_id = $1`, orgID,
		).Scan(&n); err != nil {
			return nil, err
		}
		counts[st] = n
	}
	return counts, nil
}

// ListOrgIDs returns every organization id, used by the periodic sync worker.
func (r *SourceRepository) ListOrgIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM organizations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
