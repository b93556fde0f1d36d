package attachment

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPUploader PUTs payloads to an object-storage endpoint and returns the
// public URL. The engine never re-interprets the returned reference.
type HTTPUploader struct {
	client  *http.Client
	baseURL string
	token   string
}

func NewHTTPUploader(baseURL, token string) *HTTPUploader {
	return &HTTPUploader{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		token:   token,
	}
}

func (u *HTTPUploader) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	target := u.baseURL + "/" + url.PathEscape(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if u.token != "" {
		req.Header.Set("Authorization", "Bearer "+u.token)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, name)
	}

	return target, nil
}
