package maiapress

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	minTitleLen   = 3
	minContentLen = 10
)

// PostErrors collects validation failures for one post in a publish batch.
// The batch is all-or-nothing: any error rejects the whole request and
// nothing is persisted.
type PostErrors struct {
	Title  string   `json:"title"`
	Errors []string `json:"errors"`
}

// newSanitizer builds the HTML policy applied to post content before it is
// persisted. UGC policy plus images, since posts embed their own figures.
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("img")
	p.AllowAttrs("src", "alt").OnElements("img")
	return p
}

// validatePost checks one post after extraction and defaulting. Content
// length is measured on visible text, not raw markup, so "<p>ok</p>" is
// still too short.
func validatePost(p Post) []string {
	var errs []string
	title := strings.TrimSpace(p.Title)
	switch {
	case title == "":
		errs = append(errs, "title is required")
	case utf8.RuneCountInString(title) < minTitleLen:
		errs = append(errs, "title is too short")
	}
	text := VisibleText(p.Content)
	switch {
	case text == "":
		errs = append(errs, "content is required")
	case utf8.RuneCountInString(text) < minContentLen:
		errs = append(errs, "content is too short")
	}
	if strings.TrimSpace(p.ImageURL) == "" {
		errs = append(errs, "cover image is required")
	}
	return errs
}
