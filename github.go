package maiapress

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"
	"github.com/hashicorp/go-retryablehttp"
)

// Mirror writes the posts document and uploaded images to a GitHub
// repository through the Contents API. Every write is a read-modify-write
// cycle: fetch the current blob SHA, then PUT the new content with that SHA
// so the remote rejects stale updates. The mirror is best effort: callers
// report its outcome but never roll back the canonical store.
//
// A nil *Mirror is valid and means mirroring is disabled.
type Mirror struct {
	client  *github.Client
	owner   string
	repo    string
	branch  string
	timeout time.Duration
}

// NewMirror builds a Mirror from config, or returns nil when mirroring is
// not enabled. Transient 5xx and network errors are retried a few times
// with backoff; 4xx responses (stale SHA, bad auth) are not retried.
func NewMirror(cfg Config) (*Mirror, error) {
	if !cfg.MirrorEnabled() {
		return nil, nil
	}
	owner, repo, ok := strings.Cut(cfg.GithubRepo, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid GITHUB_REPO %q, want owner/name", cfg.GithubRepo)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil

	return &Mirror{
		client:  github.NewClient(rc.StandardClient()).WithAuthToken(cfg.GithubToken),
		owner:   owner,
		repo:    repo,
		branch:  cfg.GithubBranch,
		timeout: cfg.MirrorTimeout,
	}, nil
}

// Enabled reports whether remote mirroring is configured.
func (m *Mirror) Enabled() bool {
	return m != nil
}

// getSHA returns the current blob SHA for path, or found=false when the
// file does not exist yet.
func (m *Mirror) getSHA(ctx context.Context, path string) (sha string, found bool, err error) {
	fc, _, resp, err := m.client.Repositories.GetContents(ctx, m.owner, m.repo, path,
		&github.RepositoryContentGetOptions{Ref: m.branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", path, err)
	}
	if fc == nil {
		return "", false, fmt.Errorf("get %s: path is a directory", path)
	}
	return fc.GetSHA(), true, nil
}

// PutFile creates or updates path with content in a single commit and
// returns the new commit SHA. The previous blob SHA is sent with the
// update, so a concurrent writer surfaces as a remote conflict error.
func (m *Mirror) PutFile(ctx context.Context, path string, content []byte, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	sha, found, err := m.getSHA(ctx, path)
	if err != nil {
		return "", err
	}
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  github.String(m.branch),
	}
	var rcr *github.RepositoryContentResponse
	if found {
		opts.SHA = github.String(sha)
		rcr, _, err = m.client.Repositories.UpdateFile(ctx, m.owner, m.repo, path, opts)
	} else {
		rcr, _, err = m.client.Repositories.CreateFile(ctx, m.owner, m.repo, path, opts)
	}
	if err != nil {
		return "", fmt.Errorf("put %s: %w", path, err)
	}
	return rcr.GetSHA(), nil
}

// DeleteFile removes path in a new commit, sending the current blob SHA.
func (m *Mirror) DeleteFile(ctx context.Context, path, message string) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	sha, found, err := m.getSHA(ctx, path)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	_, _, err = m.client.Repositories.DeleteFile(ctx, m.owner, m.repo, path, &github.RepositoryContentFileOptions{
		Message: github.String(message),
		SHA:     github.String(sha),
		Branch:  github.String(m.branch),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// ReadFile returns the decoded contents of path.
func (m *Mirror) ReadFile(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	fc, _, _, err := m.client.Repositories.GetContents(ctx, m.owner, m.repo, path,
		&github.RepositoryContentGetOptions{Ref: m.branch})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	if fc == nil {
		return nil, fmt.Errorf("get %s: path is a directory", path)
	}
	content, err := fc.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return []byte(content), nil
}

// ReadPosts fetches and decodes the mirrored posts document.
func (m *Mirror) ReadPosts(ctx context.Context, path string) ([]Post, error) {
	data, err := m.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	var posts []Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("decode mirrored posts: %w", err)
	}
	return posts, nil
}

// syncFile wraps PutFile into the result object surfaced in API responses.
func (m *Mirror) syncFile(ctx context.Context, path string, content []byte, message string) MirrorResult {
	if !m.Enabled() {
		return MirrorResult{Enabled: false}
	}
	commit, err := m.PutFile(ctx, path, content, message)
	if err != nil {
		return MirrorResult{Enabled: true, Error: err.Error()}
	}
	return MirrorResult{Enabled: true, Success: true, Commit: commit}
}
