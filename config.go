package maiapress

import "time"

// Config holds all configuration for a maiapress server.
//
// The rate limiter and the post store are in-process: limits reset on
// restart and the JSON document has no cross-process locking, so run a
// single instance per data directory.
type Config struct {
	Addr string // Listen address (default ":3001")

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	DataPath    string // Posts JSON document path (default "data/blog-posts.json")
	ImageDBPath string // Image index SQLite path (default "data/images.db")
	UploadsDir  string // Local directory for uploaded covers (default "public/images/blog")
	ImageURLBase string // Public URL prefix for covers (default "/images/blog")

	GithubToken     string // Remote mirror token; mirroring is off without it
	GithubRepo      string // "owner/name"
	GithubBranch    string // default "main"
	GithubPostsPath string // default "data/blog-posts.json"
	GithubImagesDir string // default "public/images/blog"

	Production bool // Mirroring requires Production plus token and repo

	DefaultAuthor   string // default "Maia"
	DefaultLanguage string // default "es"

	LoginMaxAttempts int           // default 5
	LoginWindow      time.Duration // default 15min

	MirrorTimeout time.Duration // per remote call (default 10s)
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":3001"
	}
	if c.DataPath == "" {
		c.DataPath = "data/blog-posts.json"
	}
	if c.ImageDBPath == "" {
		c.ImageDBPath = "data/images.db"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "public/images/blog"
	}
	if c.ImageURLBase == "" {
		c.ImageURLBase = "/images/blog"
	}
	if c.GithubBranch == "" {
		c.GithubBranch = "main"
	}
	if c.GithubPostsPath == "" {
		c.GithubPostsPath = "data/blog-posts.json"
	}
	if c.GithubImagesDir == "" {
		c.GithubImagesDir = "public/images/blog"
	}
	if c.DefaultAuthor == "" {
		c.DefaultAuthor = "Maia"
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = "es"
	}
	if c.LoginMaxAttempts == 0 {
		c.LoginMaxAttempts = 5
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = 15 * time.Minute
	}
	if c.MirrorTimeout == 0 {
		c.MirrorTimeout = 10 * time.Second
	}
}

// MirrorEnabled reports whether writes should be mirrored to the remote
// repository. All three conditions must hold; otherwise writes go only to
// the canonical local store.
func (c *Config) MirrorEnabled() bool {
	return c.Production && c.GithubToken != "" && c.GithubRepo != ""
}

// ConfigFromEnv builds a Config from environment variables. Call
// godotenv.Load first if a .env file should be honored.
func ConfigFromEnv() Config {
	return Config{
		Addr:            EnvOr("ADDR", ":"+EnvOr("PORT", "3001")),
		AdminPassword:   MustEnv("ADMIN_PASSWORD"),
		SessionSecret:   MustEnv("SESSION_SECRET"),
		CookieSecure:    EnvOr("COOKIE_SECURE", "") == "true",
		DataPath:        EnvOr("DATA_PATH", ""),
		ImageDBPath:     EnvOr("IMAGE_DB_PATH", ""),
		UploadsDir:      EnvOr("UPLOADS_DIR", ""),
		ImageURLBase:    EnvOr("IMAGE_URL_BASE", ""),
		GithubToken:     EnvOr("GITHUB_TOKEN", ""),
		GithubRepo:      EnvOr("GITHUB_REPO", ""),
		GithubBranch:    EnvOr("GITHUB_BRANCH", ""),
		GithubPostsPath: EnvOr("GITHUB_POSTS_PATH", ""),
		GithubImagesDir: EnvOr("GITHUB_IMAGES_DIR", ""),
		Production:      EnvOr("APP_ENV", "") == "production",
	}
}
