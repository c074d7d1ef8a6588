package maiapress

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	sessionName   = "admin_session"
	sessionMaxAge = 7 * 24 * time.Hour
)

// newSessionStore builds the cookie store that holds the encrypted admin
// session. The hash and block keys are both derived from the configured
// secret, so the cookie is authenticated and encrypted; the cookie is the
// only session record, there is no server-side state.
func (a *App) newSessionStore() *sessions.CookieStore {
	hashKey := sha256.Sum256([]byte(a.Config.SessionSecret))
	blockKey := sha256.Sum256([]byte(a.Config.SessionSecret + ":block"))
	store := sessions.NewCookieStore(hashKey[:], blockKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(sessionMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// CreateSession issues a session cookie for userID expiring in seven days.
func CreateSession(c echo.Context, userID string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		// A stale cookie signed with an older secret decodes with an error
		// but still yields a usable new session.
		if sess == nil {
			return err
		}
	}
	sess.Values["userId"] = userID
	sess.Values["expiresAt"] = time.Now().Add(sessionMaxAge).UTC().Format(time.RFC3339)
	return sess.Save(c.Request(), c.Response())
}

// VerifySession returns the current session, or nil if there is none.
// It fails closed: a missing cookie, a decryption error, malformed values,
// or a past expiry all read as "no session". Callers must treat nil as the
// sole authorization signal.
func VerifySession(c echo.Context) *Session {
	sess, err := session.Get(sessionName, c)
	if err != nil || sess.IsNew {
		return nil
	}
	userID, ok := sess.Values["userId"].(string)
	if !ok || userID == "" {
		return nil
	}
	expiresAt, ok := sess.Values["expiresAt"].(string)
	if !ok {
		return nil
	}
	exp, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil || time.Now().After(exp) {
		return nil
	}
	return &Session{UserID: userID, ExpiresAt: expiresAt}
}

// DestroySession deletes the session cookie.
func DestroySession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil && sess == nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}
