// Package tryon is the client SDK for the try-on asset service: an
// authenticated REST client, the three-step signed-URL upload flow, and the
// in-memory collection state the results merge into.
package tryon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource yields a currently valid bearer token. It is consulted
// immediately before every authenticated request; tokens are short-lived and
// must not be cached by the SDK. identity.Session implements it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Every network call is bounded by this ceiling unless overridden; a call
// past it surfaces as a timed-out network failure instead of hanging.
const defaultCallTimeout = 90 * time.Second

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.http = httpClient }
}

// WithTimeout replaces the per-call timeout ceiling.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// Client calls the try-on asset service. All authenticated calls re-obtain
// the bearer token from the TokenSource first.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	timeout time.Duration
}

func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{},
		timeout: defaultCallTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateMannequinTicket requests a signed upload URL for the mannequin image.
func (c *Client) CreateMannequinTicket(ctx context.Context, filename, contentType string, fileSize int64) (*UploadTicket, error) {
	ticket := &UploadTicket{}
	err := c.call(ctx, http.MethodPost, "/api/auth/mannequin/upload-url", nil, map[string]any{
		"filename":    filename,
		"contentType": contentType,
		"fileSize":    fileSize,
	}, ticket, true)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// ConfirmMannequin registers a completed mannequin upload and returns the
// canonical asset.
func (c *Client) ConfirmMannequin(ctx context.Context, filePath string) (*Asset, error) {
	var resp struct {
		URL        string    `json:"url"`
		UploadedAt time.Time `json:"uploadedAt"`
	}
	err := c.call(ctx, http.MethodPost, "/api/auth/mannequin/confirm", nil, map[string]any{
		"filePath": filePath,
	}, &resp, true)
	if err != nil {
		return nil, err
	}
	return &Asset{URL: resp.URL, UploadedAt: resp.UploadedAt}, nil
}

// GetMannequin fetches the current mannequin, which may be absent.
func (c *Client) GetMannequin(ctx context.Context) (*Mannequin, error) {
	mannequin := &Mannequin{}
	if err := c.call(ctx, http.MethodGet, "/api/auth/mannequin", nil, nil, mannequin, true); err != nil {
		return nil, err
	}
	return mannequin, nil
}

// DeleteMannequin removes the mannequin image.
func (c *Client) DeleteMannequin(ctx context.Context) error {
	return c.call(ctx, http.MethodDelete, "/api/auth/mannequin/delete", nil, nil, nil, true)
}

// CreateWardrobeTicket requests a signed upload URL for a new wardrobe item.
func (c *Client) CreateWardrobeTicket(ctx context.Context, category Category, filename, contentType string, fileSize int64) (*UploadTicket, error) {
	ticket := &UploadTicket{}
	err := c.call(ctx, http.MethodPost, "/api/auth/wardrobe/upload-url", nil, map[string]any{
		"category":    category,
		"filename":    filename,
		"contentType": contentType,
		"fileSize":    fileSize,
	}, ticket, true)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// ConfirmWardrobe registers a completed wardrobe upload and returns the
// canonical item.
func (c *Client) ConfirmWardrobe(ctx context.Context, itemID, filePath string) (*Asset, error) {
	var resp struct {
		Item Asset `json:"item"`
	}
	err := c.call(ctx, http.MethodPost, "/api/auth/wardrobe/confirm", nil, map[string]any{
		"itemId":   itemID,
		"filePath": filePath,
	}, &resp, true)
	if err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

// ListWardrobe returns the full current wardrobe, optionally filtered by
// category (empty means all). Idempotent, side-effect-free read.
func (c *Client) ListWardrobe(ctx context.Context, category Category) ([]Asset, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", string(category))
	}

	var resp struct {
		Items []Asset `json:"items"`
		Count int     `json:"count"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/auth/wardrobe", query, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// DeleteWardrobeItem removes one wardrobe item by id. At most one attempt;
// the caller decides whether to re-trigger on failure.
func (c *Client) DeleteWardrobeItem(ctx context.Context, itemID string) error {
	return c.call(ctx, http.MethodDelete, "/api/auth/wardrobe/"+url.PathEscape(itemID), nil, nil, nil, true)
}

// CurrentUser fetches the backend profile for the session.
func (c *Client) CurrentUser(ctx context.Context) (*Profile, error) {
	profile := &Profile{}
	if err := c.call(ctx, http.MethodGet, "/api/auth/me", nil, nil, profile, true); err != nil {
		return nil, err
	}
	return profile, nil
}

// Health checks backend liveness without authentication.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{}
	if err := c.call(ctx, http.MethodGet, "/ping", nil, nil, status, false); err != nil {
		return nil, err
	}
	return status, nil
}

// call performs one bounded JSON request against the backend and maps every
// failure mode onto the Failure taxonomy.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any, authed bool) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return newFailure(FailureValidation, "failed to encode request", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return newFailure(FailureNetwork, "failed to build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return newFailure(FailureAuth, "failed to obtain bearer token", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return newFailure(FailureNetwork, "request timed out", err)
		}
		return newFailure(FailureNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return newFailure(kindForStatus(resp.StatusCode), serverErrorMessage(resp), nil)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return newFailure(FailureServer, "failed to decode response", err)
		}
	}
	return nil
}

func serverErrorMessage(resp *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return fmt.Sprintf("request rejected with status %d", resp.StatusCode)
}
