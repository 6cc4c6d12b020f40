// Package upstream talks to the Constructum CI API on behalf of the gateway.
// It is a forwarding client, not a typed one: the gateway's contract is to
// relay upstream status and body verbatim, so the client hands both back
// untouched and leaves interpretation to the caller.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Response is the relayed upstream result.
type Response struct {
	Status int
	Body   []byte
}

// OK reports whether the status is in the 2xx range.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status <= 299
}

// Client calls the Constructum API. The caller's credential is supplied per
// call; the client itself holds none.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client for the API at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Forward sends a single request to the API and returns the response
// status and body as-is. The credential is attached as
// "Authorization: token <credential>"; path is joined to the base URL
// verbatim. A transport failure wraps domain.ErrUpstreamUnreachable via the
// returned error.
func (c *Client) Forward(ctx context.Context, method, path, token string, body io.Reader) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "token "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("calling upstream %s %s: %w", method, path, errUnreachable(err))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("reading upstream response: %w", errUnreachable(err))
	}
	return Response{Status: resp.StatusCode, Body: payload}, nil
}
