package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// HttpClient wraps http.Client with the default headers every listing request needs.
type HttpClient struct {
	client    *http.Client
	userAgent string
}

// NewHttpClient creates a client. A zero timeout disables the client-side deadline.
func NewHttpClient(timeout time.Duration, userAgent string) *HttpClient {
	return &HttpClient{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Get issues a GET request for rawURL with the query parameters appended.
func (h *HttpClient) Get(ctx context.Context, rawURL string, params url.Values) (*http.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		q := u.Query()
		for key, values := range params {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	return h.client.Do(req)
}
