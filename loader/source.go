package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

// ErrNotFound reports an asset that does not exist at the source.
var ErrNotFound = errors.New("asset not found")

// DefaultHTTPTimeout bounds a single asset request.
const DefaultHTTPTimeout = 60 * time.Second

// Source opens named assets (e.g. "data/aggregated_full.json").
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// StatusError is a non-2xx HTTP response. A 404 matches ErrNotFound.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

// Is reports a 404 as ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// NewSource picks an HTTPSource for http(s) bases and a DirSource otherwise.
func NewSource(base string, timeout time.Duration) (Source, error) {
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		return NewHTTPSource(base, timeout)
	}
	if base == "" {
		base = "."
	}
	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("asset directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset directory %s: not a directory", base)
	}
	return DirSource{FS: os.DirFS(base), Root: base}, nil
}

// ============================================================================
// HTTP
// ============================================================================

// HTTPSource fetches assets relative to a base URL.
type HTTPSource struct {
	Base   *url.URL
	Client *http.Client
}

// NewHTTPSource parses base; a trailing slash is added so names resolve
// beneath it.
func NewHTTPSource(base string, timeout time.Duration) (*HTTPSource, error) {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTPSource{Base: u, Client: &http.Client{Timeout: timeout}}, nil
}

// Open issues a GET for name. Non-2xx responses return *StatusError.
func (s *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	ref, err := url.Parse(strings.TrimPrefix(name, "./"))
	if err != nil {
		return nil, fmt.Errorf("asset name %q: %w", name, err)
	}
	target := s.Base.ResolveReference(ref).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: target, Code: resp.StatusCode}
	}
	return resp.Body, nil
}

// ============================================================================
// DIRECTORY
// ============================================================================

// DirSource reads assets from a file system. Root is informational.
type DirSource struct {
	FS   fs.FS
	Root string
}

// Open reads name from the file system. Missing files match ErrNotFound.
func (s DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := path.Clean(strings.TrimPrefix(name, "./"))
	f, err := s.FS.Open(clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path.Join(s.Root, clean), ErrNotFound)
		}
		return nil, fmt.Errorf("opening %s: %w", clean, err)
	}
	return f, nil
}
