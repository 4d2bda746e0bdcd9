// Package backend is the single HTTP boundary to the partner backend service.
// Every call attaches the stored bearer credential, and every payload is
// normalized into one canonical shape immediately after decoding, so the
// backend's inconsistent key casing never leaks into business logic.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// CredentialSource returns the bearer token to attach to an outgoing call, or
// an empty string when no credential is stored. The token is looked up per
// call because the portal serves many browser profiles from one process.
type CredentialSource func(ctx context.Context) string

// StaticCredential always returns the same token. Useful for tests and for
// single-user tooling.
func StaticCredential(token string) CredentialSource {
	return func(context.Context) string { return token }
}

type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
	log     zerolog.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

func New(baseURL string, creds CredentialSource, options ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		creds:   creds,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Call issues a JSON request and returns the raw response body of a 2xx
// response. Non-2xx responses become a *StatusError carrying the backend's
// error envelope when one is present. No retries, no caching, no
// deduplication of in-flight calls.
func (c *Client) Call(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[Call] failed to marshal request body")
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, payload)
	if err != nil {
		return nil, errors.Wrap(err, "[Call] failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req)
}

// Upload sends a binary body through unmodified. The JSON content type is
// deliberately omitted; the caller supplies the real one.
func (c *Client) Upload(ctx context.Context, endpoint, contentType string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "[Upload] failed to build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	if token := c.creds(req.Context()); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "[Call] %s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "[Call] %s %s: read body", req.Method, req.URL.Path)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		serr := newStatusError(resp.StatusCode, raw)
		c.log.Debug().
			Str("method", req.Method).
			Str("endpoint", req.URL.Path).
			Int("status", resp.StatusCode).
			Str("error", serr.Message).
			Msg("backend call failed")
		return nil, serr
	}
	return raw, nil
}
