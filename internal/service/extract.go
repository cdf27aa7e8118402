package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/statuscope-ai/statuscope/internal/domain"
)

// sourceDocument is a normalized source record ready for chunking: a short
// derived title plus a flattened textual summary of the record's salient
// fields. One mapping function per source type produces these; the dispatch
// is a closed set of pure functions, not inheritance.
type sourceDocument struct {
	SourceType domain.SourceType
	SourceID   string
	ProjectID  string
	Title      string
	Content    string
}

func extractProject(p *domain.ProjectRecord) sourceDocument {
	var b strings.Builder
	writeField(&b, "Name", p.Name)
	writeField(&b, "Description", p.Description)
	writeField(&b, "Status", p.Status)
	writeField(&b, "Owner", p.OwnerName)
	writeDate(&b, "Start date", p.StartDate)
	writeDate(&b, "End date", p.EndDate)
	if p.TaskCount > 0 {
		writeField(&b, "Tasks", fmt.Sprintf("%d", p.TaskCount))
	}
	if p.MemberCount > 0 {
		writeField(&b, "Members", fmt.Sprintf("%d", p.MemberCount))
	}

	return sourceDocument{
		SourceType: domain.SourceTypeProject,
		SourceID:   p.ID,
		ProjectID:  p.ID,
		Title:      "Project: " + p.Name,
		Content:    b.String(),
	}
}

func extractTask(t *domain.TaskRecord) sourceDocument {
	var b strings.Builder
	writeField(&b, "Title", t.Title)
	writeField(&b, "Description", t.Description)
	writeField(&b, "Status", t.Status)
	writeField(&b, "Priority", t.Priority)
	writeField(&b, "Assignee", t.AssigneeName)
	writeDate(&b, "Due date", t.DueDate)

	return sourceDocument{
		SourceType: domain.SourceTypeTask,
		SourceID:   t.ID,
		ProjectID:  t.ProjectID,
		Title:      "Task: " + t.Title,
		Content:    b.String(),
	}
}

func extractActivity(a *domain.ActivityRecord) sourceDocument {
	var b strings.Builder
	writeField(&b, "User", a.UserName)
	writeField(&b, "Action", a.Action)
	writeField(&b, "Detail", a.Detail)
	if !a.OccurredAt.IsZero() {
		writeField(&b, "Occurred", a.OccurredAt.UTC().Format("2006-01-02"))
	}

	title := "Activity: " + a.Action
	if a.UserName != "" {
		title = fmt.Sprintf("Activity: %s by %s", a.Action, a.UserName)
	}

	return sourceDocument{
		SourceType: domain.SourceTypeUserActivity,
		SourceID:   a.ID,
		Title:      title,
		Content:    b.String(),
	}
}

func extractReport(r *domain.ReportRecord) sourceDocument {
	var b strings.Builder
	writeField(&b, "Title", r.Title)
	writeField(&b, "Type", r.ReportType)
	writeField(&b, "Generated by", r.GeneratedBy)
	writeField(&b, "Content", r.Content)

	return sourceDocument{
		SourceType: domain.SourceTypeReport,
		SourceID:   r.ID,
		ProjectID:  r.ProjectID,
		Title:      "Report: " + r.Title,
		Content:    b.String(),
	}
}

func extractTeam(t *domain.TeamRecord) sourceDocument {
	var b strings.Builder
	writeField(&b, "Name", t.Name)
	writeField(&b, "Description", t.Description)
	writeField(&b, "Lead", t.LeadName)
	if t.MemberCount > 0 {
		writeField(&b, "Members", fmt.Sprintf("%d", t.MemberCount))
	}

	return sourceDocument{
		SourceType: domain.SourceTypeTeam,
		SourceID:   t.ID,
		Title:      "Team: " + t.Name,
		Content:    b.String(),
	}
}

func extractComment(c *domain.CommentRecord) sourceDocument {
	var b strings.Builder
	writeField(&b, "Author", c.AuthorName)
	writeField(&b, "Comment", c.Body)
	if !c.CreatedAt.IsZero() {
		writeField(&b, "Posted", c.CreatedAt.UTC().Format("2006-01-02"))
	}

	title := "Comment"
	if c.AuthorName != "" {
		title = "Comment by " + c.AuthorName
	}

	return sourceDocument{
		SourceType: domain.SourceTypeComment,
		SourceID:   c.ID,
		ProjectID:  c.ProjectID,
		Title:      title,
		Content:    b.String(),
	}
}

// extractAttachment renders attachment metadata plus an optional text body
// fetched from object storage. body may be empty.
func extractAttachment(a *domain.AttachmentRecord, body string) sourceDocument {
	var b strings.Builder
	writeField(&b, "File", a.Filename)
	writeField(&b, "Description", a.Description)
	writeField(&b, "Uploaded by", a.UploadedBy)
	if body != "" {
		writeField(&b, "Content", body)
	}

	return sourceDocument{
		SourceType: domain.SourceTypeAttachment,
		SourceID:   a.ID,
		ProjectID:  a.ProjectID,
		Title:      "Attachment: " + a.Filename,
		Content:    b.String(),
	}
}

func writeField(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
}

func writeDate(b *strings.Builder, label string, t *time.Time) {
	if t == nil || t.IsZero() {
		return
	}
	writeField(b, label, t.UTC().Format("2006-01-02"))
}

// truncateRunes caps s at max runes.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
