package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mhiraki-dev/mediacore/internal/api/middleware"
	"github.com/mhiraki-dev/mediacore/internal/domain/model"
	"github.com/mhiraki-dev/mediacore/internal/domain/repository"
	"github.com/mhiraki-dev/mediacore/internal/usecase"
)

// Request/Response types

type SaveProgressRequest struct {
	AssetID string `json:"assetId"`
	Percent *int   `json:"percent"`
}

type ProgressResponse struct {
	AssetID   string `json:"assetId"`
	Percent   int    `json:"percent"`
	UpdatedAt string `json:"updatedAt"`
}

// ProgressHandler handles playback progress HTTP requests.
type ProgressHandler struct {
	svc usecase.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(svc usecase.ProgressService) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

// Save handles POST /progress
func (h *ProgressHandler) Save(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := middleware.GetSubjectID(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "unauthenticated", "A valid identity is required")
		return
	}

	var req SaveProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if req.AssetID == "" {
		Error(w, http.StatusBadRequest, "missing_asset_id", "Asset ID is required")
		return
	}
	if req.Percent == nil {
		Error(w, http.StatusBadRequest, "invalid_percent", "Percent must be an integer between 0 and 100")
		return
	}

	if err := h.svc.Save(r.Context(), subjectID, req.AssetID, *req.Percent); err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// List handles GET /v1/progress
func (h *ProgressHandler) List(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := middleware.GetSubjectID(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "unauthenticated", "A valid identity is required")
		return
	}

	records, err := h.svc.List(r.Context(), subjectID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	resp := make([]ProgressResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, toProgressResponse(record))
	}

	JSONCached(w, http.StatusOK, h.svc.CacheControl(), resp)
}

// Get handles GET /v1/progress/{assetID}
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := middleware.GetSubjectID(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "unauthenticated", "A valid identity is required")
		return
	}

	assetID := chi.URLParam(r, "assetID")

	record, err := h.svc.Get(r.Context(), subjectID, assetID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSONCached(w, http.StatusOK, h.svc.CacheControl(), toProgressResponse(record))
}

func (h *ProgressHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidPercent):
		Error(w, http.StatusBadRequest, "invalid_percent", "Percent must be an integer between 0 and 100")
	case errors.Is(err, model.ErrEmptyAssetID):
		Error(w, http.StatusBadRequest, "missing_asset_id", "Asset ID is required")
	case errors.Is(err, repository.ErrProgressNotFound):
		Error(w, http.StatusNotFound, "progress_not_found", "No progress recorded for this asset")
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func toProgressResponse(p *model.Progress) ProgressResponse {
	return ProgressResponse{
		AssetID:   p.AssetID,
		Percent:   p.Percent,
		UpdatedAt: p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
