package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mhiraki-dev/mediacore/internal/api/middleware"
	"github.com/mhiraki-dev/mediacore/internal/domain/model"
	"github.com/mhiraki-dev/mediacore/internal/usecase"
)

// maxUploadBytes bounds multipart parsing memory; larger files spill to disk.
const maxUploadBytes = 32 << 20

// Request/Response types

type UploadResponse struct {
	URL string `json:"url"`
}

type DeleteUploadRequest struct {
	URL string `json:"url"`
}

// UploadHandler handles asset upload and deletion HTTP requests.
type UploadHandler struct {
	svc usecase.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(svc usecase.UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// Upload handles POST /upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := middleware.GetSubjectID(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "unauthenticated", "A valid identity is required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Multipart form body is required")
		return
	}

	class := model.AssetClass(r.FormValue("type"))
	if !class.IsValid() {
		Error(w, http.StatusBadRequest, "invalid_type", "Type must be one of: avatar, banner")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		Error(w, http.StatusBadRequest, "missing_file", "File field is required")
		return
	}
	defer file.Close()

	url, err := h.svc.Upload(r.Context(), usecase.UploadInput{
		SubjectID:   subjectID,
		Class:       class,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, UploadResponse{URL: url})
}

// Delete handles DELETE /upload
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSubjectID(r.Context()); !ok {
		Error(w, http.StatusUnauthorized, "unauthenticated", "A valid identity is required")
		return
	}

	var req DeleteUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if req.URL == "" {
		Error(w, http.StatusBadRequest, "missing_url", "URL is required")
		return
	}

	if err := h.svc.Delete(r.Context(), req.URL); err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *UploadHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrMissingFile):
		Error(w, http.StatusBadRequest, "missing_file", "File payload is required")
	case errors.Is(err, model.ErrInvalidAssetClass):
		Error(w, http.StatusBadRequest, "invalid_type", "Type must be one of: avatar, banner")
	case errors.Is(err, usecase.ErrForeignURL), errors.Is(err, model.ErrMalformedKey):
		Error(w, http.StatusBadRequest, "invalid_url", "URL does not address a stored asset")
	default:
		Error(w, http.StatusInternalServerError, "storage_error", "Storage operation failed")
	}
}
