package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/statuscope-ai/statuscope/internal/api"
	"github.com/statuscope-ai/statuscope/internal/domain"
	"github.com/statuscope-ai/statuscope/internal/service"
)

type RetrievalService interface {
	RetrieveRelevantDocuments(ctx context.Context, query string, opts service.RetrievalOptions) ([]*service.RetrievedDocument, error)
	GetKnowledgeBaseStats(ctx context.Context, orgID string) (map[domain.SourceType]int, error)
}

type RetrievalHandler struct {
	svc RetrievalService
}

func NewRetrievalHandler(svc RetrievalService) *RetrievalHandler {
	return &RetrievalHandler{svc: svc}
}

type RetrieveRequest struct {
	OrgID       string   `json:"org_id"`
	ProjectID   string   `json:"project_id,omitempty"`
	Query       string   `json:"query"`
	SourceTypes []string `json:"source_types,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	Threshold   float64  `json:"threshold,omitempty"`
}

type RetrieveResponse struct {
	Results []*service.RetrievedDocument `json:"results"`
	Count   int                          `json:"count"`
}

type ContextRequest struct {
	RetrieveRequest
	ReportType string `json:"report_type,omitempty"`
}

type ContextResponse struct {
	Context string `json:"context"`
	Count   int    `json:"count"`
}

type StatsResponse struct {
	OrgID       string                    `json:"org_id"`
	ChunkCounts map[domain.SourceType]int `json:"chunk_counts"`
	TotalChunks int                       `json:"total_chunks"`
}

// Retrieve handles POST /retrieve
func (h *RetrievalHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	req, opts, ok := h.decodeRetrieve(w, r)
	if !ok {
		return
	}

	results, err := h.svc.RetrieveRelevantDocuments(r.Context(), req.Query, opts)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if results == nil {
		results = []*service.RetrievedDocument{}
	}
	api.Success(w, http.StatusOK, RetrieveResponse{Results: results, Count: len(results)})
}

// Context handles POST /context. It runs the same retrieval and renders
// the results as a prompt-ready context block.
func (h *RetrievalHandler) Context(w http.ResponseWriter, r *http.Request) {
	var req ContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts, ok := h.buildOptions(w, req.RetrieveRequest)
	if !ok {
		return
	}

	results, err := h.svc.RetrieveRelevantDocuments(r.Context(), req.Query, opts)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ContextResponse{
		Context: service.BuildReportContext(results, req.ReportType),
		Count:   len(results),
	})
}

// Stats handles GET /stats
func (h *RetrievalHandler) Stats(w http.ResponseWriter, r *http.Request) {
	orgID := r.URL.Query().Get("org_id")
	if orgID == "" {
		api.Error(w, http.StatusBadRequest, "org_id is required")
		return
	}

	counts, err := h.svc.GetKnowledgeBaseStats(r.Context(), orgID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	api.Success(w, http.StatusOK, StatsResponse{
		OrgID:       orgID,
		ChunkCounts: counts,
		TotalChunks: total,
	})
}

func (h *RetrievalHandler) decodeRetrieve(w http.ResponseWriter, r *http.Request) (RetrieveRequest, service.RetrievalOptions, bool) {
	var req RetrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return req, service.RetrievalOptions{}, false
	}
	opts, ok := h.buildOptions(w, req)
	return req, opts, ok
}

func (h *RetrievalHandler) buildOptions(w http.ResponseWriter, req RetrieveRequest) (service.RetrievalOptions, bool) {
	sourceTypes := make([]domain.SourceType, 0, len(req.SourceTypes))
	for _, raw := range req.SourceTypes {
		st := domain.SourceType(raw)
		if !domain.IsValidSourceType(st) {
			api.Error(w, http.StatusBadRequest, "invalid source type: "+raw)
			return service.RetrievalOptions{}, false
		}
		sourceTypes = append(sourceTypes, st)
	}

	return service.RetrievalOptions{
		OrgID:               req.OrgID,
		ProjectID:           req.ProjectID,
		SourceTypes:         sourceTypes,
		Categories:          req.Categories,
		Limit:               req.Limit,
		SimilarityThreshold: req.Threshold,
	}, true
}
