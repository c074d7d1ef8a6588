package maiapress

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	a := New(Config{
		AdminPassword: "test-password",
		SessionSecret: "test-secret",
		DataPath:      filepath.Join(dir, "posts.json"),
		ImageDBPath:   filepath.Join(dir, "images.db"),
		UploadsDir:    filepath.Join(dir, "uploads"),
	})
	if err := a.init(); err != nil {
		t.Fatalf("init app: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func doJSON(t *testing.T, a *App, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func loginCookies(t *testing.T, a *App) []*http.Cookie {
	t.Helper()
	rec := doJSON(t, a, http.MethodPost, "/api/auth/login", `{"password":"test-password"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	return rec.Result().Cookies()
}

func TestSessionRoundTrip(t *testing.T) {
	a := newTestApp(t)
	cookies := loginCookies(t, a)

	rec := doJSON(t, a, http.MethodGet, "/api/auth/verify", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify after login = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"userId":"admin"`) {
		t.Fatalf("verify body missing userId: %s", rec.Body.String())
	}
}

func TestVerifyWithoutSession(t *testing.T) {
	a := newTestApp(t)
	rec := doJSON(t, a, http.MethodGet, "/api/auth/verify", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("verify without session = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"authenticated":false`) {
		t.Fatalf("verify body = %s", rec.Body.String())
	}
}

func TestVerifyWithCorruptCookie(t *testing.T) {
	a := newTestApp(t)
	rec := doJSON(t, a, http.MethodGet, "/api/auth/verify", "", []*http.Cookie{
		{Name: sessionName, Value: "not-a-real-session"},
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("verify with corrupt cookie = %d, want 401", rec.Code)
	}
}

func TestVerifyExpiredSession(t *testing.T) {
	a := newTestApp(t)

	// Issue a session whose expiry is already in the past; decryption
	// succeeds but the timestamp comparison must fail closed.
	a.Echo.GET("/test/expired-session", func(c echo.Context) error {
		sess, err := session.Get(sessionName, c)
		if err != nil && sess == nil {
			return err
		}
		sess.Values["userId"] = adminUserID
		sess.Values["expiresAt"] = time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return err
		}
		return c.NoContent(http.StatusOK)
	})

	rec := doJSON(t, a, http.MethodGet, "/test/expired-session", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed request = %d", rec.Code)
	}
	cookies := rec.Result().Cookies()

	rec = doJSON(t, a, http.MethodGet, "/api/auth/verify", "", cookies)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("verify with expired session = %d, want 401", rec.Code)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	a := newTestApp(t)
	cookies := loginCookies(t, a)

	rec := doJSON(t, a, http.MethodPost, "/api/auth/logout", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout = %d, want 200", rec.Code)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionName && c.MaxAge >= 0 {
			t.Fatalf("logout did not expire the session cookie")
		}
	}
}
