package provider

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Response is the HTTP collaborator contract (spec.md §6.4): status,
// headers, and body bytes, decoupled from net/http so providers can be
// tested against fakes.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Fetcher is the provider-facing HTTP collaborator (spec.md §6.3/§6.4).
type Fetcher interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// DefaultFetcher is the real net/http-backed Fetcher, grounded on the
// teacher's internal/linear.Client HTTP setup (a shared *http.Client
// with a bounded timeout and an explicit User-Agent).
type DefaultFetcher struct {
	HTTPClient *http.Client
	UserAgent  string
}

// NewDefaultFetcher constructs a Fetcher with sane defaults.
func NewDefaultFetcher() *DefaultFetcher {
	return &DefaultFetcher{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		UserAgent:  "autobib/1.0 (+https://github.com/autobib/autobib)",
	}
}

func (f *DefaultFetcher) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: ErrFormat, Cause: err}
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "application/json, application/x-bibtex, text/plain")

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrNetwork, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, &Error{Kind: ErrNetwork, Cause: err}
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}
