// Package identity wraps the external federated identity provider: sign-up,
// password and federated sign-in, sign-out, lazy ID-token refresh and a
// session-state observer. The provider itself stays external; only its REST
// contract is consumed here.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	signUpPath       = "/v1/accounts:signUp"
	signInPath       = "/v1/accounts:signInWithPassword"
	signInIdpPath    = "/v1/accounts:signInWithIdp"
	refreshTokenPath = "/v1/token"

	defaultRequestTimeout = 30 * time.Second

	// Tokens within this window of expiry are refreshed before use.
	tokenExpirySkew = 30 * time.Second
)

// ProviderError is a logical rejection from the identity provider, e.g.
// EMAIL_NOT_FOUND or INVALID_PASSWORD.
type ProviderError struct {
	Code       string
	StatusCode int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider rejected request: %s (status %d)", e.Code, e.StatusCode)
}

// Config for the identity client. BaseURL points at the provider's REST
// endpoint, APIKey is the project's public web API key.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Client talks to the identity provider and tracks the current session.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client

	mu       sync.Mutex
	session  *Session
	resolved bool
	watchers map[int]chan State
	nextID   int
}

func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		http:     httpClient,
		watchers: make(map[int]chan State),
	}
}

// credentialsResponse is the provider's answer to sign-up and sign-in calls.
type credentialsResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// refreshResponse is the provider's answer to a token refresh.
type refreshResponse struct {
	UserID       string `json:"user_id"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

// SignUp creates a new email/password account and establishes a session.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	creds, err := c.credentialsCall(ctx, signUpPath, map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}
	return c.establishSession(creds), nil
}

// SignIn authenticates an existing email/password account.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	creds, err := c.credentialsCall(ctx, signInPath, map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}
	return c.establishSession(creds), nil
}

// SignInWithProvider authenticates with a federated provider credential, e.g.
// providerID "google.com" and the provider-issued ID token.
func (c *Client) SignInWithProvider(ctx context.Context, providerID, credential string) (*Session, error) {
	creds, err := c.credentialsCall(ctx, signInIdpPath, map[string]any{
		"postBody":          fmt.Sprintf("id_token=%s&providerId=%s", credential, providerID),
		"requestUri":        "http://localhost",
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}
	return c.establishSession(creds), nil
}

// Restore re-establishes a session from a persisted refresh token. A rejected
// token resolves the client to anonymous and returns the provider error.
func (c *Client) Restore(ctx context.Context, refreshToken string) (*Session, error) {
	refreshed, err := c.refreshCall(ctx, refreshToken)
	if err != nil {
		c.setSession(nil)
		return nil, err
	}

	session := &Session{
		UID:          refreshed.UserID,
		client:       c,
		idToken:      refreshed.IDToken,
		refreshToken: refreshed.RefreshToken,
		expiresAt:    expiryFrom(refreshed.ExpiresIn),
	}
	c.setSession(session)
	return session, nil
}

// ResolveAnonymous marks session resolution complete with no session, e.g. at
// startup when no refresh token was persisted.
func (c *Client) ResolveAnonymous() {
	c.setSession(nil)
}

// SignOut destroys the current session and notifies observers.
func (c *Client) SignOut(ctx context.Context) error {
	c.setSession(nil)
	return nil
}

// Session returns the current session, or nil when anonymous or unresolved.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) establishSession(creds *credentialsResponse) *Session {
	session := &Session{
		UID:          creds.LocalID,
		Email:        creds.Email,
		client:       c,
		idToken:      creds.IDToken,
		refreshToken: creds.RefreshToken,
		expiresAt:    expiryFrom(creds.ExpiresIn),
	}
	c.setSession(session)
	return session
}

func (c *Client) setSession(session *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = session
	c.resolved = true

	state := StateAnonymous
	if session != nil {
		state = StateAuthenticated
	}
	for _, ch := range c.watchers {
		push(ch, state)
	}
}

func (c *Client) credentialsCall(ctx context.Context, path string, body map[string]any) (*credentialsResponse, error) {
	creds := &credentialsResponse{}
	if err := c.post(ctx, path, body, creds); err != nil {
		return nil, err
	}
	return creds, nil
}

func (c *Client) refreshCall(ctx context.Context, refreshToken string) (*refreshResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(refreshTokenPath), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	refreshed := &refreshResponse{}
	if err := c.do(req, refreshed); err != nil {
		return nil, err
	}
	return refreshed, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeProviderError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}

func (c *Client) endpoint(path string) string {
	endpoint := c.baseURL + path
	if c.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(c.apiKey)
	}
	return endpoint
}

func decodeProviderError(resp *http.Response) error {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error.Message == "" {
		return &ProviderError{Code: "UNKNOWN", StatusCode: resp.StatusCode}
	}
	return &ProviderError{Code: body.Error.Message, StatusCode: resp.StatusCode}
}

func expiryFrom(expiresIn string) time.Time {
	seconds, err := strconv.Atoi(expiresIn)
	if err != nil || seconds <= 0 {
		seconds = 3600
	}
	return time.Now().Add(time.Duration(seconds) * time.Second)
}

// Session is an authenticated identity: provider uid, email, and a
// short-lived ID token refreshed lazily through the provider.
type Session struct {
	UID   string
	Email string

	client *Client

	mu           sync.Mutex
	idToken      string
	refreshToken string
	expiresAt    time.Time
}

// Token returns a currently valid bearer token, refreshing through the
// provider when the cached one is about to expire. Callers must call this
// immediately before each authenticated request instead of caching the
// result.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.idToken != "" && time.Until(s.expiresAt) > tokenExpirySkew {
		token := s.idToken
		s.mu.Unlock()
		return token, nil
	}
	refreshToken := s.refreshToken
	s.mu.Unlock()

	refreshed, err := s.client.refreshCall(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	s.mu.Lock()
	s.idToken = refreshed.IDToken
	if refreshed.RefreshToken != "" {
		s.refreshToken = refreshed.RefreshToken
	}
	s.expiresAt = expiryFrom(refreshed.ExpiresIn)
	token := s.idToken
	s.mu.Unlock()

	return token, nil
}

// RefreshToken returns the long-lived refresh token for persistence across
// process restarts.
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}
