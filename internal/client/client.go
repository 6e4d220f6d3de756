// Package client implements the typed HTTP client for the remote entity
// service: authentication primitives, the entity request builder, and the
// response envelope decoding shared by every higher layer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultHTTPTimeout = 30 * time.Second

// ErrNotFound is returned when the service answers 404; the entity was
// deleted remotely or never existed.
var ErrNotFound = errors.New("entity not found")

// ErrForbidden is returned when the service answers 403.
var ErrForbidden = errors.New("insufficient authorization")

// Credentials is the per-request identity the client sends. For password
// sessions Secret is the password; for browser sessions it is the access
// token and CookieName selects cookie transport instead of basic auth.
type Credentials struct {
	User       string
	Secret     string
	CookieName string
}

// Client issues JSON requests against the remote entity service for one
// shared space / workspace pair.
type Client struct {
	baseURL   string
	space     string
	workspace string
	httpc     *http.Client
	logger    *slog.Logger

	// mu guards creds: session validation rotates them while request
	// goroutines are in flight.
	mu    sync.RWMutex
	creds Credentials
}

// New creates a client for the given service base URL, shared space and
// workspace. Credentials start empty; call SetCredentials after login.
func New(baseURL, space, workspace string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		space:     space,
		workspace: workspace,
		httpc:     &http.Client{Timeout: defaultHTTPTimeout},
		logger:    logger,
	}
}

// SetCredentials installs the identity used on subsequent requests. Safe
// to call while requests are in flight.
func (c *Client) SetCredentials(creds Credentials) {
	c.mu.Lock()
	c.creds = creds
	c.mu.Unlock()
}

// BaseURL returns the configured service base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Envelope is the collection response shape: {"data": [...]}.
type Envelope struct {
	Data       []map[string]any `json:"data"`
	TotalCount int              `json:"total_count"`
}

// AuthToken is the response of the browser-flow token creation endpoint.
type AuthToken struct {
	ID                string `json:"id"`
	AuthenticationURL string `json:"authentication_url"`
}

// TokenGrant is the response of a completed browser authentication.
type TokenGrant struct {
	AccessToken string `json:"access_token"`
	CookieName  string `json:"cookie_name"`
}

// TestAuth runs the authentication-test primitive: a sign-in request with
// the given user and secret. A non-2xx answer means the remote declined
// the credentials.
func (c *Client) TestAuth(ctx context.Context, user, secret string) error {
	body, err := json.Marshal(map[string]string{"user": user, "password": secret})
	if err != nil {
		return fmt.Errorf("client: marshaling sign-in body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/authentication/sign_in", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("client: sign-in request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("client: sign-in returned %d", resp.StatusCode)
	}
	return nil
}

// CreateAuthToken starts the browser authentication flow and returns the
// token id plus the URL the user must visit.
func (c *Client) CreateAuthToken(ctx context.Context) (*AuthToken, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/authentication/tokens", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: creating auth token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: reading auth token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("client: auth token endpoint returned %d: %s", resp.StatusCode, string(raw))
	}

	var tok AuthToken
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("client: decoding auth token: %w", err)
	}
	return &tok, nil
}

// GetAuthToken polls the token endpoint for a completed browser login.
// A non-2xx answer means the user has not finished authenticating yet and
// is returned as an error the caller may retry on.
func (c *Client) GetAuthToken(ctx context.Context, id, user string) (*TokenGrant, error) {
	u := fmt.Sprintf("%s/authentication/tokens/%s?userName=%s", c.baseURL, url.PathEscape(id), url.QueryEscape(user))
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: polling auth token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: reading auth token poll: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("client: auth token not ready (%d)", resp.StatusCode)
	}

	var grant TokenGrant
	if err := json.Unmarshal(raw, &grant); err != nil {
		return nil, fmt.Errorf("client: decoding token grant: %w", err)
	}
	return &grant, nil
}

// Entity starts a request against the named collection endpoint, e.g.
// "defects" or "metadata/fields".
func (c *Client) Entity(endpoint string) *Request {
	return &Request{client: c, endpoint: endpoint}
}

// Request is a composable selection against one collection endpoint.
type Request struct {
	client   *Client
	endpoint string
	id       string
	fields   []string
	query    Query
	text     string
	limit    int
}

// At narrows the request to a single record by id.
func (r *Request) At(id string) *Request {
	r.id = id
	return r
}

// Fields sets the field projection.
func (r *Request) Fields(fields ...string) *Request {
	r.fields = fields
	return r
}

// Query attaches a query expression.
func (r *Request) Query(q Query) *Request {
	r.query = q
	return r
}

// TextSearch attaches a server-side global text search for the term.
func (r *Request) TextSearch(term string) *Request {
	r.text = term
	return r
}

// Limit caps the number of returned records.
func (r *Request) Limit(n int) *Request {
	r.limit = n
	return r
}

// Execute runs a collection request and decodes the {data: [...]} envelope.
func (r *Request) Execute(ctx context.Context) (*Envelope, error) {
	raw, err := r.client.get(ctx, r.url())
	if err != nil {
		return nil, err
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("client: decoding envelope from %s: %w", r.endpoint, err)
	}
	return &env, nil
}

// ExecuteOne runs a single-record request (At) and decodes the raw object.
func (r *Request) ExecuteOne(ctx context.Context) (map[string]any, error) {
	if r.id == "" {
		return nil, fmt.Errorf("client: ExecuteOne requires At(id)")
	}
	raw, err := r.client.get(ctx, r.url())
	if err != nil {
		return nil, err
	}
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("client: decoding record from %s: %w", r.endpoint, err)
	}
	return record, nil
}

func (r *Request) url() string {
	var b strings.Builder
	b.WriteString(r.client.baseURL)
	b.WriteString("/api/shared_spaces/")
	b.WriteString(r.client.space)
	b.WriteString("/workspaces/")
	b.WriteString(r.client.workspace)
	b.WriteString("/")
	b.WriteString(r.endpoint)
	if r.id != "" {
		b.WriteString("/")
		b.WriteString(url.PathEscape(r.id))
	}

	params := url.Values{}
	if len(r.fields) > 0 {
		params.Set("fields", strings.Join(r.fields, ","))
	}
	if !r.query.Empty() {
		params.Set("query", r.query.String())
	}
	if r.text != "" {
		params.Set("text_search", fmt.Sprintf(`{"type":"global","text":%q}`, r.text))
	}
	if r.limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", r.limit))
	}
	if len(params) > 0 {
		b.WriteString("?")
		b.WriteString(params.Encode())
	}
	return b.String()
}

// get issues an authenticated GET and maps 403/404 to their sentinels.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: request %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: reading response from %s: %w", u, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("client: %s: %w", u, ErrNotFound)
	case resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("client: %s: %w", u, ErrForbidden)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("client: %s returned %d: %s", u, resp.StatusCode, string(raw))
	}
	return raw, nil
}

func (c *Client) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("client: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Correlation-Id", uuid.NewString())

	c.mu.RLock()
	creds := c.creds
	c.mu.RUnlock()

	if creds.User != "" {
		if creds.CookieName != "" {
			req.AddCookie(&http.Cookie{Name: creds.CookieName, Value: creds.Secret})
		} else {
			req.SetBasicAuth(creds.User, creds.Secret)
		}
	}
	return req, nil
}
