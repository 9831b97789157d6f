package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Fetcher materializes the raw bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// URLFetcher fetches http(s) URLs with a GET request and reads file:// URLs
// and plain paths from the local filesystem. It never retries.
type URLFetcher struct {
	client    *http.Client
	userAgent string
}

// NewURLFetcher creates a URLFetcher. A nil client uses a client without a
// timeout, leaving slow transfers to the transport's own limits.
func NewURLFetcher(client *http.Client, userAgent string) *URLFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &URLFetcher{client: client, userAgent: userAgent}
}

// Fetch implements Fetcher.
func (f *URLFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || isWindowsDrive(u.Scheme) {
		return os.ReadFile(rawURL)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.fetchHTTP(ctx, rawURL)
	case "file":
		return os.ReadFile(u.Path)
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q (use http, https, file or a local path)", u.Scheme)
	}
}

func (f *URLFetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: unexpected status %s", rawURL, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// isWindowsDrive reports whether a parsed scheme is really a drive letter,
// as in C:\data\trips.csv.
func isWindowsDrive(scheme string) bool {
	return len(scheme) == 1
}
