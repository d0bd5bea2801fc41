package playback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultReportTimeout = 10 * time.Second

// HTTPReporter delivers progress flushes to the progress endpoint with a
// bearer token. It implements Sink.
type HTTPReporter struct {
	baseURL string
	token   string
	client  *http.Client
}

type progressPayload struct {
	AssetID string `json:"assetId"`
	Percent int    `json:"percent"`
}

// NewHTTPReporter creates a reporter posting to baseURL (scheme and
// host, no trailing slash). A nil client gets a default with a timeout.
func NewHTTPReporter(baseURL, token string, client *http.Client) *HTTPReporter {
	if client == nil {
		client = &http.Client{Timeout: defaultReportTimeout}
	}
	return &HTTPReporter{
		baseURL: baseURL,
		token:   token,
		client:  client,
	}
}

// Flush posts one progress value. Any non-2xx status is an error.
func (r *HTTPReporter) Flush(ctx context.Context, assetID string, percent int) error {
	body, err := json.Marshal(progressPayload{AssetID: assetID, Percent: percent})
	if err != nil {
		return fmt.Errorf("marshal progress payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/progress", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build progress request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("post progress: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("progress endpoint returned %s", resp.Status)
	}
	return nil
}
