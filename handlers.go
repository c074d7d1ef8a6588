package maiapress

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// incomingPost is the publish payload for one post. Either ready-made
// fields or pasted component source (sourceCode) may be supplied; when
// content is empty the extractor fills the gaps from sourceCode.
type incomingPost struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Excerpt    string `json:"excerpt"`
	Content    string `json:"content"`
	Author     string `json:"author"`
	Date       string `json:"date"`
	ImageURL   string `json:"imageUrl"`
	Language   string `json:"language"`
	SourceCode string `json:"sourceCode,omitempty"`
}

// handleListPosts returns every post. Read failures soft-fail to an empty
// list so the public site never breaks on a storage hiccup.
func (a *App) handleListPosts(c echo.Context) error {
	posts, err := a.Store.ReadAll()
	if err != nil {
		c.Logger().Errorf("read posts: %v", err)
		posts = []Post{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"posts":   posts,
		"count":   len(posts),
	})
}

// handlePublish validates, sanitizes, and persists a batch of posts. The
// batch is all-or-nothing: any validation error rejects the request with a
// per-post error list and nothing is written. The canonical store is
// written first; the remote mirror is attempted afterwards and its outcome
// is reported without affecting the canonical result.
func (a *App) handlePublish(c echo.Context) error {
	if VerifySession(c) == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		Posts []incomingPost `json:"posts"`
	}
	if err := c.Bind(&req); err != nil || len(req.Posts) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "posts array is required"})
	}
	if a.mirrorMisconfigured() {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remote storage is not configured"})
	}

	existing, err := a.Store.ReadAll()
	if err != nil {
		return err
	}
	existingBySlug := make(map[string]Post, len(existing))
	for _, p := range existing {
		existingBySlug[p.Slug] = p
	}

	now := time.Now()
	nowISO := now.UTC().Format(time.RFC3339)

	var prepared []Post
	var batchErrs []PostErrors
	for _, in := range req.Posts {
		p := Post{
			Title:    strings.TrimSpace(in.Title),
			Slug:     strings.TrimSpace(in.Slug),
			Excerpt:  strings.TrimSpace(in.Excerpt),
			Content:  in.Content,
			Author:   strings.TrimSpace(in.Author),
			Date:     strings.TrimSpace(in.Date),
			ImageURL: strings.TrimSpace(in.ImageURL),
			Language: strings.TrimSpace(in.Language),
		}
		if strings.TrimSpace(p.Content) == "" && strings.TrimSpace(in.SourceCode) != "" {
			meta := ExtractMetadata(in.SourceCode)
			if p.Title == "" {
				p.Title = meta.Title
			}
			if p.Excerpt == "" {
				p.Excerpt = meta.Excerpt
			}
			if p.Author == "" {
				p.Author = meta.Author
			}
			if p.Date == "" {
				p.Date = meta.Date
			}
			if p.Slug == "" {
				p.Slug = meta.Slug
			}
			p.Content = meta.Content
		}
		if p.Author == "" {
			p.Author = a.Config.DefaultAuthor
		}
		if p.Language == "" {
			p.Language = a.Config.DefaultLanguage
		}
		if p.Date == "" {
			p.Date = FormatSpanishDate(now)
		}
		if p.Slug == "" {
			p.Slug = Slugify(p.Title)
		}

		if verrs := validatePost(p); len(verrs) > 0 {
			batchErrs = append(batchErrs, PostErrors{Title: p.Title, Errors: verrs})
			continue
		}

		p.Content = a.sanitizer.Sanitize(p.Content)
		p.CreatedAt = nowISO
		if prior, ok := existingBySlug[p.Slug]; ok && prior.CreatedAt != "" {
			p.CreatedAt = prior.CreatedAt
		}
		p.UpdatedAt = nowISO
		prepared = append(prepared, p)
	}

	if len(batchErrs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"errors":  batchErrs,
		})
	}

	all, err := a.Store.Upsert(prepared)
	if err != nil {
		return err
	}

	result := a.mirrorPosts(c, all, "Update blog posts")
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   len(prepared),
		"posts":   prepared,
		"github":  result,
	})
}

// handleDeletePost removes a post by slug. The associated cover image is
// intentionally left in place, locally and in the mirror, for recovery or
// reuse.
func (a *App) handleDeletePost(c echo.Context) error {
	if VerifySession(c) == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var body struct {
		Slug string `json:"slug"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.Slug) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slug is required"})
	}

	deleted, remaining, err := a.Store.DeleteBySlug(strings.TrimSpace(body.Slug))
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return err
	}

	result := a.mirrorPosts(c, remaining, "Delete blog post "+deleted.Slug)
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"deletedPost": deleted,
		"github":      result,
	})
}

// mirrorPosts pushes the full posts document to the remote mirror and
// reports the outcome. Failures are logged and surfaced, never fatal.
func (a *App) mirrorPosts(c echo.Context, posts []Post, message string) MirrorResult {
	if posts == nil {
		posts = []Post{}
	}
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return MirrorResult{Enabled: a.Mirror.Enabled(), Error: err.Error()}
	}
	result := a.Mirror.syncFile(c.Request().Context(), a.Config.GithubPostsPath, data, message)
	if result.Enabled && !result.Success {
		c.Logger().Errorf("posts mirror failed: %s", result.Error)
	}
	return result
}

// handleReconcile compares the slug sets of the canonical store and the
// remote mirror and reports the differences. It never repairs anything.
func (a *App) handleReconcile(c echo.Context) error {
	if VerifySession(c) == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !a.Mirror.Enabled() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "remote mirror is not enabled"})
	}

	local, err := a.Store.ReadAll()
	if err != nil {
		return err
	}
	remote, err := a.Mirror.ReadPosts(c.Request().Context(), a.Config.GithubPostsPath)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "read remote posts: " + err.Error()})
	}

	localSet := make(map[string]bool, len(local))
	for _, p := range local {
		localSet[p.Slug] = true
	}
	remoteSet := make(map[string]bool, len(remote))
	for _, p := range remote {
		remoteSet[p.Slug] = true
	}

	missingInRemote := []string{}
	for slug := range localSet {
		if !remoteSet[slug] {
			missingInRemote = append(missingInRemote, slug)
		}
	}
	missingInLocal := []string{}
	for slug := range remoteSet {
		if !localSet[slug] {
			missingInLocal = append(missingInLocal, slug)
		}
	}
	sort.Strings(missingInRemote)
	sort.Strings(missingInLocal)

	return c.JSON(http.StatusOK, echo.Map{
		"success":         true,
		"inSync":          len(missingInRemote) == 0 && len(missingInLocal) == 0,
		"localCount":      len(local),
		"remoteCount":     len(remote),
		"missingInRemote": missingInRemote,
		"missingInLocal":  missingInLocal,
	})
}
