package models

// SessionType distinguishes how a session was established.
type SessionType string

const (
	// SessionPassword marks a session created from a username/password
	// pair; the access token is the password itself so it can be replayed.
	SessionPassword SessionType = "password"

	// SessionBrowser marks a session created through the browser
	// authentication flow; the access token came from the token endpoint.
	SessionBrowser SessionType = "browser"
)

// Account identifies the authenticated user a session belongs to.
type Account struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Session is the authenticated identity persisted between runs. Exactly
// one session is stored at a time.
type Session struct {
	ID          string      `json:"id"`
	AccessToken string      `json:"access_token"`
	Account     Account     `json:"account"`
	Scopes      []string    `json:"scopes,omitempty"`
	Type        SessionType `json:"type"`
	CookieName  string      `json:"cookie_name,omitempty"`
}
