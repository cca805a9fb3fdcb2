package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	maxRedirects   = 5
	maxBodyBytes   = 3 << 20 // 3 MiB
	fetchTimeout   = 15 * time.Second
	fetchUserAgent = "Mozilla/5.0 (compatible; family-meal-planner/1.0)"
)

// newFetchClient builds an HTTP client that re-validates every redirect
// target so a public URL cannot bounce the importer into an internal
// address.
func newFetchClient() *http.Client {
	return &http.Client{
		Timeout: fetchTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects")
			}
			if _, err := ValidateURL(req.URL.String()); err != nil {
				return err
			}
			return nil
		},
	}
}

// fetchPage downloads the page at url, capped at maxBodyBytes.
func fetchPage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching page", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read page body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("page exceeds %d byte limit", maxBodyBytes)
	}
	return body, nil
}
