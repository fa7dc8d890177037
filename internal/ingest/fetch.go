package ingest

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"
)

// providerError is the JSON body the provider sends when it refuses a
// download request.
type providerError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Fetcher downloads snapshot packages into a local temp folder.
type Fetcher struct {
	client  *http.Client
	tempDir string
}

// NewFetcher creates a fetcher writing into tempDir. The timeout bounds the
// whole download including the streamed body.
func NewFetcher(tempDir string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		tempDir: tempDir,
	}
}

// Fetch downloads url and streams the decompressed payload to a temp file,
// never holding the snapshot in memory. It returns the path of the extracted
// CSV file; removing it is up to the caller.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download package: %w", err)
	}
	defer resp.Body.Close()

	// Refusals arrive as JSON regardless of status code, so the content type
	// is checked before the status.
	contentType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if contentType == "application/json" {
		return "", &DownloadError{Message: readProviderMessage(resp.Body)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &UnexpectedResponseError{StatusCode: resp.StatusCode}
	}
	if !isGzipType(contentType) {
		return "", &UnexpectedResponseError{StatusCode: resp.StatusCode}
	}

	return f.extract(resp.Body)
}

func (f *Fetcher) extract(body io.Reader) (string, error) {
	if err := os.MkdirAll(f.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create temp folder: %w", err)
	}

	gz, err := gzip.NewReader(body)
	if err != nil {
		return "", &DecodeError{Err: err}
	}
	defer gz.Close()

	file, err := os.CreateTemp(f.tempDir, "cell-export-*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	// Keep the file only when the full stream decoded.
	ok := false
	defer func() {
		file.Close()
		if !ok {
			os.Remove(file.Name())
		}
	}()

	if _, err := io.Copy(file, gz); err != nil {
		return "", &DecodeError{Err: err}
	}

	ok = true
	return file.Name(), nil
}

func isGzipType(contentType string) bool {
	switch contentType {
	case "application/gzip", "application/x-gzip", "application/octet-stream":
		return true
	}
	return false
}

func readProviderMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil {
		return "unreadable error body"
	}

	var pe providerError
	if err := json.Unmarshal(raw, &pe); err == nil {
		if pe.Message != "" {
			return pe.Message
		}
		if pe.Error != "" {
			return pe.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
