package maiapress

// Post is the core content type persisted in the canonical JSON document and
// mirrored to the remote repository.
type Post struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Excerpt   string `json:"excerpt"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	Date      string `json:"date"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Language  string `json:"language"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Session is the decrypted contents of the admin session cookie. The cookie
// itself is the only record; no server-side session state is kept.
type Session struct {
	UserID    string
	ExpiresAt string // RFC 3339
}

// Image is the metadata row kept in the image index for each uploaded cover.
type Image struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Size         int    `json:"size"`
	UploadedAt   string `json:"uploadedAt"`
}

// MirrorResult reports the outcome of a best-effort remote write. It is
// returned alongside the canonical result and never rolls a canonical
// write back.
type MirrorResult struct {
	Enabled bool   `json:"enabled"`
	Success bool   `json:"success"`
	Commit  string `json:"commit,omitempty"`
	Error   string `json:"error,omitempty"`
}
