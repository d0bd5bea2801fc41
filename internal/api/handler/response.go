package handler

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
		}
	}
}

// JSONCached writes a JSON response carrying an explicit Cache-Control
// header, for endpoints whose payloads are served through the tiered
// cache and safe for client-side reuse.
func JSONCached(w http.ResponseWriter, status int, cacheControl string, data any) {
	if cacheControl != "" {
		w.Header().Set("Cache-Control", cacheControl)
	}
	JSON(w, status, data)
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func Error(w http.ResponseWriter, status int, err string, message string) {
	JSON(w, status, ErrorResponse{
		Error:   err,
		Message: message,
	})
}
