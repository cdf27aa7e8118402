package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/statuscope-ai/statuscope/internal/api"
	"github.com/statuscope-ai/statuscope/internal/domain"
	"github.com/statuscope-ai/statuscope/internal/service"
)

type SyncService interface {
	SyncOrganization(ctx context.Context, orgID string, opts service.SyncOptions) (*service.SyncSummary, error)
	SyncProject(ctx context.Context, projectID string, opts service.SyncOptions) (*service.SyncSummary, error)
	RemoveProject(ctx context.Context, projectID string) (int64, error)
	GetSyncStatus(ctx context.Context, orgID string) (*service.SyncStatus, error)
}

type SyncHandler struct {
	svc SyncService
}

func NewSyncHandler(svc SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

type SyncOrgRequest struct {
	OrgID       string   `json:"org_id"`
	SourceTypes []string `json:"source_types,omitempty"`
	ForceUpdate bool     `json:"force_update,omitempty"`
}

type SyncProjectRequest struct {
	SourceTypes []string `json:"source_types,omitempty"`
	ForceUpdate bool     `json:"force_update,omitempty"`
}

type RemoveProjectResponse struct {
	ProjectID string `json:"project_id"`
	Removed   int64  `json:"removed_chunks"`
}

// SyncOrg handles POST /sync/org
func (h *SyncHandler) SyncOrg(w http.ResponseWriter, r *http.Request) {
	var req SyncOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.OrgID == "" {
		api.Error(w, http.StatusBadRequest, "org_id is required")
		return
	}

	sourceTypes, ok := parseSourceTypes(w, req.SourceTypes)
	if !ok {
		return
	}

	summary, err := h.svc.SyncOrganization(r.Context(), req.OrgID, service.SyncOptions{
		SourceTypes: sourceTypes,
		ForceUpdate: req.ForceUpdate,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, summary)
}

// SyncProject handles POST /sync/projects/{id}
func (h *SyncHandler) SyncProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if projectID == "" {
		api.Error(w, http.StatusBadRequest, "project id is required")
		return
	}

	var req SyncProjectRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	sourceTypes, ok := parseSourceTypes(w, req.SourceTypes)
	if !ok {
		return
	}

	summary, err := h.svc.SyncProject(r.Context(), projectID, service.SyncOptions{
		SourceTypes: sourceTypes,
		ForceUpdate: req.ForceUpdate,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, summary)
}

// RemoveProject handles DELETE /knowledge/projects/{id}
func (h *SyncHandler) RemoveProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if projectID == "" {
		api.Error(w, http.StatusBadRequest, "project id is required")
		return
	}

	removed, err := h.svc.RemoveProject(r.Context(), projectID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, RemoveProjectResponse{ProjectID: projectID, Removed: removed})
}

// Status handles GET /sync/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	orgID := r.URL.Query().Get("org_id")
	if orgID == "" {
		api.Error(w, http.StatusBadRequest, "org_id is required")
		return
	}

	status, err := h.svc.GetSyncStatus(r.Context(), orgID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, status)
}

func parseSourceTypes(w http.ResponseWriter, raw []string) ([]domain.SourceType, bool) {
	if len(raw) == 0 {
		return nil, true
	}

	sourceTypes := make([]domain.SourceType, 0, len(raw))
	for _, s := range raw {
		st := domain.SourceType(s)
		if !domain.IsValidSourceType(st) {
			api.Error(w, http.StatusBadRequest, "invalid source type: "+s)
			return nil, false
		}
		sourceTypes = append(sourceTypes, st)
	}
	return sourceTypes, true
}
