package handler

import (
	"net/http"
	"time"

	"github.com/mhiraki-dev/mediacore/internal/api/middleware"
	"github.com/mhiraki-dev/mediacore/internal/usecase"
)

type AssetResponse struct {
	URL        string `json:"url"`
	Type       string `json:"type"`
	UploadedAt string `json:"uploadedAt"`
}

// AssetHandler handles asset listing HTTP requests.
type AssetHandler struct {
	svc usecase.AssetService
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(svc usecase.AssetService) *AssetHandler {
	return &AssetHandler{svc: svc}
}

// List handles GET /v1/assets
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := middleware.GetSubjectID(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "unauthenticated", "A valid identity is required")
		return
	}

	assets, err := h.svc.List(r.Context(), subjectID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "storage_error", "Storage operation failed")
		return
	}

	resp := make([]AssetResponse, 0, len(assets))
	for _, a := range assets {
		resp = append(resp, AssetResponse{
			URL:        a.URL,
			Type:       a.Class.String(),
			UploadedAt: a.UploadedAt.Format(time.RFC3339),
		})
	}

	JSONCached(w, http.StatusOK, h.svc.CacheControl(), resp)
}
