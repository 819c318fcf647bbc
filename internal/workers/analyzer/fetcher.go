package analyzer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const downloadChunkSize = 32 * 1024

// StoreFetcher downloads a source object through a time-limited signed
// URL, streaming the body to disk so arbitrarily large recordings never
// sit in memory.
type StoreFetcher struct {
	store      ObjectStore
	httpClient *http.Client
}

func NewFetcher(store ObjectStore) *StoreFetcher {
	return &StoreFetcher{
		store: store,
		// Long enough for multi-gigabyte recordings on slow links.
		httpClient: &http.Client{Timeout: 15 * time.Minute},
	}
}

func (f *StoreFetcher) Fetch(ctx context.Context, objectPath, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	signedURL, err := f.store.SignedDownloadURL(ctx, objectPath)
	if err != nil {
		return fmt.Errorf("failed to get signed download url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signedURL, nil)
	if err != nil {
		return err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download media: HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file: %w", err)
	}
	defer out.Close()

	buf := make([]byte, downloadChunkSize)
	if _, err := io.CopyBuffer(out, resp.Body, buf); err != nil {
		return fmt.Errorf("failed to write media to disk: %w", err)
	}

	return nil
}
