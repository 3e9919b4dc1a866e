package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
)

// Store is the global session store for OAuth login flows.
// It stores temporary state during the OAuth authorization process
// (state parameter, original URL).
var Store *sessions.CookieStore

// SessionName is the name of the OAuth session cookie.
const SessionName = "oauth-session"

// Session value keys.
const (
	SessionKeyState       = "state"
	SessionKeyOriginalURL = "original_url"
)

// InitSessionStore initializes the cookie-based session store for managing
// OAuth state during the login flow.
//
// The secret parameter signs session cookies. It can be any passphrase -
// it is SHA-256 hashed to derive a 32-byte key. The secret must be
// consistent across server restarts and multiple servers behind a load
// balancer.
//
// The session has a short TTL since it only needs to persist during the
// OAuth redirect flow.
func InitSessionStore(secret string, secure bool) {
	key := sha256.Sum256([]byte(secret))

	Store = sessions.NewCookieStore(key[:])
	Store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600, // OAuth flow duration
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// GetSession retrieves the OAuth session from the request.
// Creates a new session if one doesn't exist.
func GetSession(r *http.Request) (*sessions.Session, error) {
	return Store.Get(r, SessionName)
}

// SaveSession saves the session to the response.
func SaveSession(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	return session.Save(r, w)
}

// ClearSessionValues removes OAuth-related values from the session.
// Called after a completed login.
func ClearSessionValues(session *sessions.Session) {
	delete(session.Values, SessionKeyState)
	delete(session.Values, SessionKeyOriginalURL)
}
