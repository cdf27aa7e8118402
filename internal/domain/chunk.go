package domain

import "time"

// SourceType identifies the kind of domain record a knowledge chunk was derived from.
type SourceType string

const (
	SourceTypeProject      SourceType = "project"
	SourceTypeTask         SourceType = "task"
	SourceTypeUserActivity SourceType = "user_activity"
	SourceTypeReport       SourceType = "report"
	SourceTypeTeam         SourceType = "team"
	SourceTypeComment      SourceType = "comment"
	SourceTypeAttachment   SourceType = "attachment"
)

// AllSourceTypes returns every indexable source type in sync order.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceTypeProject,
		SourceTypeTask,
		SourceTypeUserActivity,
		SourceTypeReport,
		SourceTypeTeam,
		SourceTypeComment,
		SourceTypeAttachment,
	}
}

// ProjectSourceTypes returns the source types that carry a project scope.
// Teams and user activity are indexed org-wide and excluded here.
func ProjectSourceTypes() []SourceType {
	return []SourceType{
		SourceTypeProject,
		SourceTypeTask,
		SourceTypeReport,
		SourceTypeComment,
		SourceTypeAttachment,
	}
}

// IsValidSourceType checks whether s is a known source type.
func IsValidSourceType(s SourceType) bool {
	switch s {
	case SourceTypeProject, SourceTypeTask, SourceTypeUserActivity,
		SourceTypeReport, SourceTypeTeam, SourceTypeComment, SourceTypeAttachment:
		return true
	}
	return false
}

const (
	// MaxChunkTitleChars caps the derived title stored per chunk.
	MaxChunkTitleChars = 200
	// MaxChunkContentChars caps the chunk text that gets embedded.
	MaxChunkContentChars = 5000
)

// KnowledgeChunk is the unit stored in and retrieved from the knowledge base.
// The tuple (OrgID, ProjectID, SourceType, SourceID, ChunkIndex) is unique;
// re-syncing a source document overwrites its chunks in place. ProjectID is
// empty for org-wide source types (teams, user activity).
type KnowledgeChunk struct {
	ID             string
	OrgID          string
	ProjectID      string
	SourceType     SourceType
	SourceID       string
	ChunkIndex     int
	Title          string
	Content        string
	Embedding      []float32
	EmbeddingModel string
	Keywords       []string
	Categories     []string
	TotalChunks    int
	IsActive       bool
	ProcessedAt    time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateKnowledgeChunk validates a KnowledgeChunk before persistence.
func ValidateKnowledgeChunk(c *KnowledgeChunk) error {
	if c == nil {
		return ErrMissingRequiredField
	}
	if c.OrgID == "" || c.SourceID == "" {
		return ErrMissingRequiredField
	}
	if !IsValidSourceType(c.SourceType) {
		return ErrInvalidSourceType
	}
	if c.ChunkIndex < 0 {
		return NewDomainError(ErrCodeValidation, "chunk index cannot be negative")
	}
	if c.Content == "" {
		return NewDomainError(ErrCodeValidation, "chunk content cannot be empty")
	}
	if len([]rune(c.Title)) > MaxChunkTitleChars {
		return NewDomainError(ErrCodeValidation, "chunk title exceeds maximum length")
	}
	if len([]rune(c.Content)) > MaxChunkContentChars {
		return NewDomainError(ErrCodeValidation, "chunk content exceeds maximum length")
	}
	if c.TotalChunks <= c.ChunkIndex {
		return NewDomainError(ErrCodeValidation, "total chunks must exceed chunk index")
	}
	return nil
}
