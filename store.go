package maiapress

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// ErrPostNotFound is returned when a requested post does not exist.
var ErrPostNotFound = errors.New("post not found")

// Store is the canonical post store: a single JSON array document on disk.
// Reads load the whole document, writes replace it atomically. A mutex
// serializes access within the process; the deployment assumption is a
// single instance per data file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore prepares the store at path, ensuring the data directory exists.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &Store{path: path}, nil
}

// ReadAll returns every post in the document. A missing file reads as an
// empty store; an unparseable file is logged as corruption and also reads
// as empty so that publishing is never blocked.
func (s *Store) ReadAll() ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

func (s *Store) readAll() ([]Post, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Post{}, nil
		}
		return nil, fmt.Errorf("read posts document: %w", err)
	}
	var posts []Post
	if err := json.Unmarshal(data, &posts); err != nil {
		log.Printf("maiapress: posts document %s is corrupt, treating as empty: %v", s.path, err)
		return []Post{}, nil
	}
	return posts, nil
}

// WriteAll atomically replaces the document with the given posts.
func (s *Store) WriteAll(posts []Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAll(posts)
}

func (s *Store) writeAll(posts []Post) error {
	if posts == nil {
		posts = []Post{}
	}
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal posts document: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write posts document: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace posts document: %w", err)
	}
	return nil
}

// FindBySlug returns the post with the given slug.
func (s *Store) FindBySlug(slug string) (Post, error) {
	posts, err := s.ReadAll()
	if err != nil {
		return Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrPostNotFound
}

// Upsert inserts or replaces each post by slug and returns the full list
// after the write. The document never ends up with two records sharing a
// slug.
func (s *Store) Upsert(incoming []Post) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for _, in := range incoming {
		replaced := false
		for i := range posts {
			if posts[i].Slug == in.Slug {
				posts[i] = in
				replaced = true
				break
			}
		}
		if !replaced {
			posts = append(posts, in)
		}
	}
	if err := s.writeAll(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// DeleteBySlug removes the post with the given slug and returns it along
// with the remaining list. Returns ErrPostNotFound without touching the
// document when the slug is unknown.
func (s *Store) DeleteBySlug(slug string) (Post, []Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.readAll()
	if err != nil {
		return Post{}, nil, err
	}
	idx := -1
	for i := range posts {
		if posts[i].Slug == slug {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Post{}, nil, ErrPostNotFound
	}
	deleted := posts[idx]
	posts = append(posts[:idx], posts[idx+1:]...)
	if err := s.writeAll(posts); err != nil {
		return Post{}, nil, err
	}
	return deleted, posts, nil
}
