package domain

import "time"

// Source record snapshots consumed by the sync orchestrator. These are
// read-only views over the host system's CRUD tables; the engine never
// mutates them. Only the fields needed to render a textual summary are
// carried.

// ProjectRecord is a snapshot of a project.
type ProjectRecord struct {
	ID          string
	OrgID       string
	Name        string
	Description string
	Status      string
	OwnerName   string
	StartDate   *time.Time
	EndDate     *time.Time
	TaskCount   int
	MemberCount int
	UpdatedAt   time.Time
}

// TaskRecord is a snapshot of a task within a project.
type TaskRecord struct {
	ID           string
	OrgID        string
	ProjectID    string
	Title        string
	Description  string
	Status       string
	Priority     string
	AssigneeName string
	DueDate      *time.Time
	UpdatedAt    time.Time
}

// ActivityRecord is a snapshot of a user activity event. Org-wide; the
// project reference is informational only.
type ActivityRecord struct {
	ID         string
	OrgID      string
	ProjectID  string
	UserName   string
	Action     string
	Detail     string
	OccurredAt time.Time
}

// ReportRecord is a snapshot of a previously generated report.
type ReportRecord struct {
	ID          string
	OrgID       string
	ProjectID   string
	Title       string
	ReportType  string
	Content     string
	GeneratedBy string
	CreatedAt   time.Time
}

// TeamRecord is a snapshot of a team. Org-wide.
type TeamRecord struct {
	ID          string
	OrgID       string
	Name        string
	Description string
	LeadName    string
	MemberCount int
	UpdatedAt   time.Time
}

// CommentRecord is a snapshot of a comment on a task or project.
type CommentRecord struct {
	ID         string
	OrgID      string
	ProjectID  string
	TaskID     string
	AuthorName string
	Body       string
	CreatedAt  time.Time
}

// AttachmentRecord is a snapshot of an uploaded attachment. StorageKey
// points at the object store; text bodies may be fetched for indexing.
type AttachmentRecord struct {
	ID          string
	OrgID       string
	ProjectID   string
	Filename    string
	Description string
	MimeType    string
	SizeBytes   int64
	StorageKey  string
	UploadedBy  string
	CreatedAt   time.Time
}
