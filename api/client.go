package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Client wraps every call to the calorie backend. A single shared instance is
// configured with a base address and a fixed request timeout. The bearer token
// it attaches is a derived copy of the session token; the session store keeps
// it in sync through SetToken.
type Client struct {
	baseURL    string
	httpClient *http.Client

	tokenLock sync.RWMutex
	token     string
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client (primarily for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New initializes a Client for the backend at baseURL. Every request issued
// through it is bounded by the given timeout.
func New(baseURL string, timeout time.Duration, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[api.New] baseURL is required")
	}
	if timeout <= 0 {
		return nil, errors.New("[api.New] timeout must be positive")
	}

	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

// SetToken sets the bearer token attached to all subsequent requests.
// An empty token removes the authorization header entirely.
func (c *Client) SetToken(token string) {
	c.tokenLock.Lock()
	defer c.tokenLock.Unlock()
	c.token = token
}

// Token returns the bearer token currently attached to outgoing requests.
func (c *Client) Token() string {
	c.tokenLock.RLock()
	defer c.tokenLock.RUnlock()
	return c.token
}

// do issues a JSON request and decodes the response into out (when non-nil).
// It returns the HTTP status so callers that care about 200 vs 201 can branch.
// Every failure comes back as *Error with exactly one of the three kinds.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, requestError(err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, requestError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, noResponseError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, noResponseError(err)
	}

	// 201 counts as success even when a transport surfaces it oddly; anything
	// else outside 2xx is a server rejection.
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return resp.StatusCode, serverError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, unreadableBodyError(resp.StatusCode, err)
		}
	}

	return resp.StatusCode, nil
}
