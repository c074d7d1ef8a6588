package maiapress

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ImageIndex records metadata about uploaded cover images in SQLite. Image
// bytes live on disk (and in the remote mirror); the index only answers
// listing and bookkeeping queries.
type ImageIndex struct {
	db *sql.DB
}

// NewImageIndex opens (or creates) the SQLite database at path, ensures the
// data directory exists, and runs schema migrations.
func NewImageIndex(path string) (*ImageIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL plus a busy timeout so concurrent upload requests wait instead of
	// failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	idx := &ImageIndex{db: db}
	if err := idx.ensureSchema(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Close closes the underlying database connection.
func (idx *ImageIndex) Close() error {
	return idx.db.Close()
}

func (idx *ImageIndex) ensureSchema() error {
	_, err := idx.db.Exec(`
CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

// SaveImage upserts image metadata. Filenames are deterministic per slug,
// so re-uploading a cover for the same post replaces the prior row.
func (idx *ImageIndex) SaveImage(img Image) error {
	_, err := idx.db.Exec(`INSERT OR REPLACE INTO images (filename, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt)
	return err
}

// GetImage returns the metadata row for filename.
func (idx *ImageIndex) GetImage(filename string) (Image, error) {
	var img Image
	err := idx.db.QueryRow(`SELECT filename, original_name, width, height, size, uploaded_at FROM images WHERE filename = ?`, filename).
		Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt)
	return img, err
}

// ListImages returns all recorded images ordered by upload time descending.
func (idx *ImageIndex) ListImages() ([]Image, error) {
	rows, err := idx.db.Query(`SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// DeleteImage removes a metadata row by filename.
func (idx *ImageIndex) DeleteImage(filename string) error {
	_, err := idx.db.Exec(`DELETE FROM images WHERE filename = ?`, filename)
	return err
}
