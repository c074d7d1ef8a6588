package maiapress

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// handleLogin verifies the admin password. Attempts are rate limited per
// client IP before the password is even looked at, and the comparison is
// constant time.
func (a *App) handleLogin(c echo.Context) error {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil || body.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password is required"})
	}

	key := "login:" + c.RealIP()
	if !a.loginLimiter.Allow(key) {
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"error":             "too many login attempts, try again later",
			"remainingAttempts": a.loginLimiter.Remaining(key),
		})
	}

	if subtle.ConstantTimeCompare([]byte(body.Password), []byte(a.Config.AdminPassword)) != 1 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid password"})
	}

	if err := CreateSession(c, adminUserID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (a *App) handleLogout(c echo.Context) error {
	if err := DestroySession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// handleVerify reports the current session without refreshing it. A
// missing, corrupt, or expired cookie all look the same to the caller.
func (a *App) handleVerify(c echo.Context) error {
	sess := VerifySession(c)
	if sess == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"authenticated": false})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"authenticated": true,
		"userId":        sess.UserID,
		"expiresAt":     sess.ExpiresAt,
	})
}

// adminUserID is the single static admin identity; this is not a
// multi-user system.
const adminUserID = "admin"
