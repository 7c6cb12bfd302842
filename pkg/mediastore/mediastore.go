package mediastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pulsegram/backend/pkg/logger"
)

// UploadResult describes a stored media asset as reported by the media store.
type UploadResult struct {
	URL          string  `json:"url"`
	DurationSecs float64 `json:"duration_secs,omitempty"`
	Width        int     `json:"width,omitempty"`
	Height       int     `json:"height,omitempty"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
}

// Store is the media storage collaborator. Upload/transcoding happens
// outside this service; posts reference the returned URLs.
type Store interface {
	Upload(ctx context.Context, data []byte, kind string) (*UploadResult, error)
	Delete(ctx context.Context, mediaURL string) error
}

// HTTPStore talks to an external media store over its HTTP API.
type HTTPStore struct {
	baseURL string
	client  *http.Client
}

// NewHTTPStore creates a media store client for the given base URL.
func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPStore) Upload(ctx context.Context, data []byte, kind string) (*UploadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/upload?kind="+url.QueryEscape(kind), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media store upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("media store upload returned status %d", resp.StatusCode)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("media store upload response invalid: %w", err)
	}
	return &result, nil
}

func (s *HTTPStore) Delete(ctx context.Context, mediaURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.baseURL+"/media?url="+url.QueryEscape(mediaURL), nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("media store delete failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("media store delete returned status %d", resp.StatusCode)
	}
	return nil
}

// NoopStore is used when no media store is configured. Deletes are logged
// and dropped; uploads are rejected.
type NoopStore struct{}

func (NoopStore) Upload(ctx context.Context, data []byte, kind string) (*UploadResult, error) {
	return nil, fmt.Errorf("media store not configured")
}

func (NoopStore) Delete(ctx context.Context, mediaURL string) error {
	logger.Log.Debugf("media store disabled, skipping delete of %s", mediaURL)
	return nil
}

// FromURL returns the HTTP client when a base URL is configured, the no-op
// store otherwise.
func FromURL(baseURL string) Store {
	if baseURL == "" {
		return NoopStore{}
	}
	return NewHTTPStore(baseURL)
}
