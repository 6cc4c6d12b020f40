package swr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/waabox/buildboard/internal/domain"
)

// NewHTTPFetcher returns a Fetcher that resolves keys as URLs under base —
// the gateway's origin. Pass a client with a cookie jar so the session
// cookie rides along; pass nil for a default client.
func NewHTTPFetcher(base string, client *http.Client) Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return func(ctx context.Context, key string) (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+key, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", key, domain.ErrUpstreamUnreachable)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, domain.ErrUpstreamUnreachable)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("fetching %s: %w", key, domain.ErrUnauthenticated)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &domain.UpstreamError{Status: resp.StatusCode, Body: body}
		}
		return json.RawMessage(body), nil
	}
}
