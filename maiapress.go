// Package maiapress is the blog CMS backend for the Maia marketing site.
// It exposes a JSON HTTP API for the admin front end: session-cookie
// authentication, post publishing with best-effort metadata extraction from
// pasted component source, a canonical JSON-document post store with an
// optional GitHub-repository mirror, and a cover-image upload pipeline.
package maiapress

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
)

// App is the central application. It wires together the stores, the remote
// mirror, the limiter, middleware, and routes.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store
	Images *ImageIndex
	Mirror *Mirror

	loginLimiter *LoginLimiter
	sanitizer    *bluemonday.Policy
}

// New creates an App with the given configuration.
func New(cfg Config) *App {
	cfg.setDefaults()
	return &App{
		Config: cfg,
		Echo:   echo.New(),
	}
}

// Start initializes the stores, mirror, middleware, and routes, then starts
// the server. It blocks until the server stops.
func (a *App) Start() error {
	if err := a.init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// init wires everything short of listening; split out so tests can drive
// the router directly.
func (a *App) init() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("maiapress: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("maiapress: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DataPath)
	if err != nil {
		return fmt.Errorf("maiapress: init store: %w", err)
	}
	a.Store = store

	images, err := NewImageIndex(a.Config.ImageDBPath)
	if err != nil {
		return fmt.Errorf("maiapress: init image index: %w", err)
	}
	a.Images = images

	mirror, err := NewMirror(a.Config)
	if err != nil {
		return fmt.Errorf("maiapress: init mirror: %w", err)
	}
	a.Mirror = mirror

	a.loginLimiter = NewLoginLimiter(a.Config.LoginMaxAttempts, a.Config.LoginWindow)
	a.sanitizer = newSanitizer()

	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Uploaded covers are served straight from the uploads directory under
	// the same path the mirror publishes them at.
	e.Static(a.Config.ImageURLBase, a.Config.UploadsDir)

	api := e.Group("/api")
	api.POST("/auth/login", a.handleLogin)
	api.POST("/auth/logout", a.handleLogout)
	api.GET("/auth/verify", a.handleVerify)

	api.GET("/posts", a.handleListPosts)
	api.POST("/posts/publish", a.handlePublish)
	api.DELETE("/posts/delete", a.handleDeletePost)

	api.POST("/upload", a.handleUpload)
	api.GET("/admin/reconcile", a.handleReconcile)
}

// mirrorMisconfigured reports a production deployment whose remote
// credentials are incomplete; write endpoints refuse to run half-configured.
func (a *App) mirrorMisconfigured() bool {
	return a.Config.Production && !a.Config.MirrorEnabled()
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Images != nil {
		return a.Images.Close()
	}
	return nil
}
