// Package auth owns the authenticated identity: session creation over the
// password and browser flows, session validation against the configured
// user and the remote service, and persistence in the credential store.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trackline/trackline/internal/client"
	"github.com/trackline/trackline/internal/metrics"
	"github.com/trackline/trackline/internal/models"
	"github.com/trackline/trackline/internal/retry"
)

// Error taxonomy for session creation and validation.
var (
	// ErrIncompleteCredentials is returned before any network call when
	// the server URI or user is blank.
	ErrIncompleteCredentials = errors.New("server uri and user are required")

	// ErrAuthFailed is returned when the remote declines the supplied
	// credentials or token.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrAuthTimeout is returned when browser authentication polling
	// exhausts its attempt budget.
	ErrAuthTimeout = errors.New("browser authentication timed out")

	// ErrMalformedSession marks a stored session secret that is not
	// parseable JSON or lacks its type tag. Handled internally by
	// GetSessions; exported for log inspection in tests.
	ErrMalformedSession = errors.New("stored session is malformed")
)

const (
	// sessionKey is the credential-store key the single session lives under.
	sessionKey = "session"

	defaultPollInterval = time.Second
	defaultPollAttempts = 100
)

// LoginData carries everything needed to create a session.
type LoginData struct {
	URI       string
	User      string
	Space     string
	Workspace string
	Password  string
	Browser   bool
}

// ChangeKind tags a session-change notification.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
)

// ChangeEvent is published to observers when the stored session changes.
type ChangeEvent struct {
	Kind    ChangeKind
	Session models.Session
}

// Manager owns the authenticated identity. All methods are safe for
// concurrent use.
type Manager struct {
	client  *client.Client
	store   CredentialStore
	browser BrowserOpener
	user    string
	logger  *slog.Logger

	pollInterval time.Duration
	pollAttempts int

	mu        sync.Mutex
	observers []func(ChangeEvent)
}

// NewManager creates a session manager for the configured user. The
// browser opener may be nil when only password logins are used.
func NewManager(c *client.Client, store CredentialStore, browser BrowserOpener, user string, logger *slog.Logger) *Manager {
	return &Manager{
		client:       c,
		store:        store,
		browser:      browser,
		user:         user,
		logger:       logger,
		pollInterval: defaultPollInterval,
		pollAttempts: defaultPollAttempts,
	}
}

// SetPollCadence overrides the browser-token polling cadence. Intended for
// tests; the production cadence is 1 second for up to 100 attempts.
func (m *Manager) SetPollCadence(interval time.Duration, attempts int) {
	m.pollInterval = interval
	m.pollAttempts = attempts
}

// Subscribe registers an observer for session-change events.
func (m *Manager) Subscribe(fn func(ChangeEvent)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

func (m *Manager) notify(ev ChangeEvent) {
	m.mu.Lock()
	obs := make([]func(ChangeEvent), len(m.observers))
	copy(obs, m.observers)
	m.mu.Unlock()
	for _, fn := range obs {
		fn(ev)
	}
}

// CreateSession authenticates against the remote service and persists the
// resulting session. The browser path blocks for the whole polling window.
func (m *Manager) CreateSession(ctx context.Context, login LoginData) (models.Session, error) {
	if strings.TrimSpace(login.URI) == "" || strings.TrimSpace(login.User) == "" {
		return models.Session{}, ErrIncompleteCredentials
	}

	var sess models.Session
	var err error
	if login.Browser {
		sess, err = m.createBrowserSession(ctx, login)
	} else {
		sess, err = m.createPasswordSession(ctx, login)
	}
	if err != nil {
		return models.Session{}, err
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return models.Session{}, fmt.Errorf("auth: serializing session: %w", err)
	}
	m.store.Set(sessionKey, string(raw))

	m.client.SetCredentials(client.Credentials{
		User:       sess.Account.ID,
		Secret:     sess.AccessToken,
		CookieName: sess.CookieName,
	})

	metrics.Inc(metrics.LoginsTotal)
	m.logger.Info("session created", "type", sess.Type, "user", sess.Account.ID)
	m.notify(ChangeEvent{Kind: ChangeAdded, Session: sess})
	return sess, nil
}

// createPasswordSession validates the password against the remote and
// keeps it as the access token so it can be replayed on later requests.
func (m *Manager) createPasswordSession(ctx context.Context, login LoginData) (models.Session, error) {
	if err := m.client.TestAuth(ctx, login.User, login.Password); err != nil {
		m.logger.Warn("password sign-in declined", "user", login.User, "error", err)
		return models.Session{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	return models.Session{
		ID:          uuid.NewString(),
		AccessToken: login.Password,
		Account:     models.Account{ID: login.User, Label: login.User},
		Type:        models.SessionPassword,
	}, nil
}

// createBrowserSession runs the two-step browser flow: obtain a token id
// and authentication URL, send the user there, then poll the token
// endpoint at a fixed cadence until the grant appears or the attempt
// budget runs out.
func (m *Manager) createBrowserSession(ctx context.Context, login LoginData) (models.Session, error) {
	tok, err := m.client.CreateAuthToken(ctx)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	if m.browser != nil {
		if err := m.browser.Open(tok.AuthenticationURL); err != nil {
			// The user can still open the URL by hand; keep polling.
			m.logger.Warn("opening browser", "url", tok.AuthenticationURL, "error", err)
		}
	}

	grant, err := retry.Fixed(ctx, m.pollAttempts, m.pollInterval, func(ctx context.Context) (*client.TokenGrant, error) {
		return m.client.GetAuthToken(ctx, tok.ID, login.User)
	})
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			return models.Session{}, fmt.Errorf("%w: %w", ErrAuthTimeout, err)
		}
		return models.Session{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	// Validate the granted token the same way a password is validated.
	if err := m.client.TestAuth(ctx, login.User, grant.AccessToken); err != nil {
		return models.Session{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	return models.Session{
		ID:          tok.ID,
		AccessToken: grant.AccessToken,
		Account:     models.Account{ID: login.User, Label: login.User},
		Type:        models.SessionBrowser,
		CookieName:  grant.CookieName,
	}, nil
}

// GetSessions returns the stored session when it is still valid, or an
// empty slice. Any invalid stored session is deleted and announced as
// removed; failures are logged, never returned.
func (m *Manager) GetSessions(ctx context.Context) []models.Session {
	raw, ok := m.store.Get(sessionKey)
	if !ok {
		return nil
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		m.logger.Warn("discarding session", "error", fmt.Errorf("%w: %w", ErrMalformedSession, err))
		m.discard(sess)
		return nil
	}
	if sess.Type == "" {
		m.logger.Warn("discarding session", "error", fmt.Errorf("%w: missing type tag", ErrMalformedSession))
		m.discard(sess)
		return nil
	}
	if sess.Account.ID != m.user {
		m.logger.Warn("discarding session for different user", "stored", sess.Account.ID, "configured", m.user)
		m.discard(sess)
		return nil
	}

	if err := m.client.TestAuth(ctx, sess.Account.ID, sess.AccessToken); err != nil {
		m.logger.Warn("stored session no longer valid", "user", sess.Account.ID, "error", err)
		m.discard(sess)
		return nil
	}

	m.client.SetCredentials(client.Credentials{
		User:       sess.Account.ID,
		Secret:     sess.AccessToken,
		CookieName: sess.CookieName,
	})
	return []models.Session{sess}
}

// RemoveSession deletes the stored session. Idempotent; always announces
// removal.
func (m *Manager) RemoveSession(id string) {
	m.store.Delete(sessionKey)
	m.notify(ChangeEvent{Kind: ChangeRemoved, Session: models.Session{ID: id}})
}

// IsLoggedIn reports whether a valid session exists.
func (m *Manager) IsLoggedIn(ctx context.Context) bool {
	return len(m.GetSessions(ctx)) > 0
}

func (m *Manager) discard(sess models.Session) {
	metrics.Inc(metrics.SessionsDiscardedTotal)
	m.store.Delete(sessionKey)
	m.notify(ChangeEvent{Kind: ChangeRemoved, Session: sess})
}
