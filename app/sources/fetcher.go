package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/net/html/charset"
)

type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	return &Fetcher{client: client, userAgent: userAgent}
}

// Credentials enable basic authentication when both fields are set.
type Credentials struct {
	Username string
	Password string
}

// Get returns the raw response body. Failures are *Diagnostic values.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	return f.fetch(ctx, url, nil, false)
}

// GetHTML returns the body converted to UTF-8 according to the response
// Content-Type and any meta charset declaration.
func (f *Fetcher) GetHTML(ctx context.Context, url string) ([]byte, error) {
	return f.fetch(ctx, url, nil, true)
}

func (f *Fetcher) GetJSON(ctx context.Context, url string, credentials *Credentials) ([]byte, error) {
	return f.fetch(ctx, url, credentials, false)
}

func (f *Fetcher) fetch(ctx context.Context, url string, credentials *Credentials, decode bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &Diagnostic{Kind: KindConfig, URL: url, Message: "invalid request", Cause: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	if credentials != nil && credentials.Username != "" && credentials.Password != "" {
		req.SetBasicAuth(credentials.Username, credentials.Password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ClassifyNetworkError(err, url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ClassifyHTTPStatus(resp.StatusCode, url)
	}

	var body io.Reader = resp.Body
	if decode {
		body, err = charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
		if err != nil {
			return nil, ClassifyParseError(fmt.Errorf("failed to detect charset: %w", err), url)
		}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, ClassifyNetworkError(fmt.Errorf("failed to read response body: %w", err), url)
	}

	return data, nil
}
