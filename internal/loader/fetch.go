package loader

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rshade/scrollviz/internal/dataset"
)

// DefaultHTTPTimeout bounds a single HTTP fetch when none is configured.
const DefaultHTTPTimeout = 30 * time.Second

// Fetcher reads and parses a data file. Fetch blocks; callers run it through
// a Scheduler.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (*dataset.Table, error)
}

// FileFetcher reads data files from the local filesystem. Relative paths are
// resolved against Root.
type FileFetcher struct {
	Root string
}

// Fetch opens and parses the file.
func (f FileFetcher) Fetch(ctx context.Context, path string) (*dataset.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := path
	if !filepath.IsAbs(path) && f.Root != "" {
		full = filepath.Join(f.Root, filepath.FromSlash(path))
	}

	file, err := os.Open(full)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return dataset.ParseCSV(file)
}

// HTTPFetcher downloads data files over HTTP(S).
type HTTPFetcher struct {
	Client  *http.Client
	Timeout time.Duration
}

// Fetch issues a GET and parses the body. Non-2xx responses are failures.
func (f HTTPFetcher) Fetch(ctx context.Context, url string) (*dataset.Table, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return dataset.ParseCSV(resp.Body)
}

// SourceFetcher picks HTTP for http:// and https:// paths and the filesystem
// for everything else.
type SourceFetcher struct {
	File FileFetcher
	HTTP HTTPFetcher
}

// Fetch dispatches on the path scheme.
func (f SourceFetcher) Fetch(ctx context.Context, path string) (*dataset.Table, error) {
	if IsRemote(path) {
		return f.HTTP.Fetch(ctx, path)
	}
	return f.File.Fetch(ctx, path)
}

// IsRemote reports whether path is an http(s) URL.
func IsRemote(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
