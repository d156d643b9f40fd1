// Package client is the typed API client with a reconciliation cache:
// every mutation response's canonical entity wholesale-replaces the
// cached copy, and an authentication failure tears the whole session
// down.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds every request; the API has no long-running
// calls.
const DefaultTimeout = 15 * time.Second

// APIError carries the server's error envelope and status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// PreconditionError reports a mutation blocked locally before any
// network call, naming the profile fields still missing.
type PreconditionError struct {
	MissingFields []string
}

func (e *PreconditionError) Error() string {
	return "profile incomplete: " + strings.Join(e.MissingFields, ", ")
}

// Session is the explicit authentication state. One teardown path
// clears it together with everything derived from it.
type Session struct {
	Token  string
	UserID int64
	Role   string
}

// Client talks to the platform API and keeps the local entity caches
// reconciled with server truth.
type Client struct {
	baseURL string
	http    *http.Client

	session *Session
	profile *Profile

	startups  *entityCache[Startup]
	vacancies *entityCache[Vacancy]
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient substitutes the transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New builds a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: DefaultTimeout},
		startups:  newEntityCache[Startup](),
		vacancies: newEntityCache[Vacancy](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the current session, nil when signed out.
func (c *Client) Session() *Session {
	return c.session
}

// Profile returns the cached profile, nil when unknown.
func (c *Client) Profile() *Profile {
	return c.profile
}

// Teardown drops the token, the cached profile and every cached
// entity. Called on sign-out and forced on any 401/422 response.
func (c *Client) Teardown() {
	c.session = nil
	c.profile = nil
	c.startups.clear()
	c.vacancies.clear()
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, username, password string) error {
	var resp struct {
		Profile *Profile `json:"profile"`
	}
	return c.call(ctx, http.MethodPost, "/register", credentials{username, password}, 0, &resp)
}

// Login authenticates and installs the session.
func (c *Client) Login(ctx context.Context, username, password string) (*Profile, error) {
	var resp struct {
		AccessToken string   `json:"access_token"`
		Profile     *Profile `json:"profile"`
	}
	if err := c.call(ctx, http.MethodPost, "/login", credentials{username, password}, 0, &resp); err != nil {
		return nil, err
	}

	c.session = &Session{Token: resp.AccessToken}
	if resp.Profile != nil {
		c.session.UserID = resp.Profile.ID
		c.session.Role = resp.Profile.Role
		c.profile = resp.Profile
	}

	return resp.Profile, nil
}

// FetchProfile refreshes the cached profile from the server.
func (c *Client) FetchProfile(ctx context.Context) (*Profile, error) {
	var resp struct {
		Profile *Profile `json:"profile"`
	}
	if err := c.call(ctx, http.MethodGet, "/profile", nil, 0, &resp); err != nil {
		return nil, err
	}
	c.profile = resp.Profile
	return resp.Profile, nil
}

// UpdateProfile submits the changed fields and replaces the cached
// profile with the canonical response.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Profile, error) {
	var resp struct {
		Profile *Profile `json:"profile"`
	}
	if err := c.call(ctx, http.MethodPut, "/profile", update, 0, &resp); err != nil {
		return nil, err
	}
	c.profile = resp.Profile
	return resp.Profile, nil
}

func (c *Client) call(ctx context.Context, method, path string, body any, ifMatch int64, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != nil {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}
	if ifMatch > 0 {
		req.Header.Set("If-Match", strconv.FormatInt(ifMatch, 10))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)

		// A dead session is unrecoverable client-side; the next action
		// starts from a clean slate.
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusUnprocessableEntity {
			c.Teardown()
		}

		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// requireProfileComplete checks apply/create preconditions locally
// before any network call.
func (c *Client) requireProfileComplete() error {
	var missing []string
	if c.profile == nil || c.profile.Telegram == "" {
		missing = append(missing, "telegram")
	}
	if c.profile == nil || c.profile.ResumeLink == "" {
		missing = append(missing, "resume_link")
	}
	if len(missing) > 0 {
		return &PreconditionError{MissingFields: missing}
	}
	return nil
}
