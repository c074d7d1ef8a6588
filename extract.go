package maiapress

import (
	"html"
	"regexp"
	"strings"
	"time"

	xhtml "golang.org/x/net/html"
)

// PostMeta is the best-effort metadata pulled out of pasted component
// source. Fields that no strategy matched stay empty and are defaulted by
// the caller; extraction itself never fails.
type PostMeta struct {
	Title   string
	Excerpt string
	Author  string
	Date    string
	Slug    string
	Content string
}

// extractStrategy is one structural pattern tried against the pasted
// source. Strategies run in priority order and only fill fields that
// earlier strategies left empty.
type extractStrategy struct {
	name string
	try  func(src string) PostMeta
}

var extractStrategies = []extractStrategy{
	{"blogpost-tag", extractFromBlogPostTag},
	{"metadata-export", extractFromMetadataExport},
	{"const-decls", extractFromConstDecls},
	{"html-tags", extractFromHTMLTags},
}

// ExtractMetadata derives post metadata from a blob of pasted source (JSX-
// or HTML-like text). This is not a parser: it is ordered pattern matching
// with graceful partial failure, and it keeps that contract on purpose so
// varied paste sources still publish.
func ExtractMetadata(src string) PostMeta {
	var meta PostMeta
	for _, s := range extractStrategies {
		mergeMeta(&meta, s.try(src))
	}
	if meta.Content != "" {
		meta.Content = ConvertContentToHTML(meta.Content)
	} else {
		meta.Content = ExtractJSXBody(src)
	}
	if meta.Slug == "" && meta.Title != "" {
		meta.Slug = Slugify(meta.Title)
	}
	return meta
}

// mergeMeta copies fields from src that dst has not resolved yet:
// first match per field wins.
func mergeMeta(dst *PostMeta, src PostMeta) {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Excerpt == "" {
		dst.Excerpt = src.Excerpt
	}
	if dst.Author == "" {
		dst.Author = src.Author
	}
	if dst.Date == "" {
		dst.Date = src.Date
	}
	if dst.Slug == "" {
		dst.Slug = src.Slug
	}
	if dst.Content == "" {
		dst.Content = src.Content
	}
}

var (
	reBlogPostTag  = regexp.MustCompile(`<BlogPost\b`)
	reContentBlock = regexp.MustCompile("content=\\{`([\\s\\S]*?)`\\}")

	reMetadataExport = regexp.MustCompile(`export\s+const\s+metadata(?:\s*:\s*\w+)?\s*=\s*\{([\s\S]*?)\n\}`)
	reMetaTitle      = regexp.MustCompile(`\btitle\s*:\s*["'` + "`" + `]([^"'` + "`" + `]*)["'` + "`" + `]`)
	reMetaDesc       = regexp.MustCompile(`\bdescription\s*:\s*["'` + "`" + `]([^"'` + "`" + `]*)["'` + "`" + `]`)
	reMetaPublished  = regexp.MustCompile(`\bpublishedTime\s*:\s*["']([^"']*)["']`)
	reMetaAuthors    = regexp.MustCompile(`\bauthors\s*:\s*\[\s*["']([^"']*)["']`)
	reMetaAuthorName = regexp.MustCompile(`\bauthors\s*:\s*\[\s*\{[^}]*?\bname\s*:\s*["']([^"']*)["']`)

	reHTMLTitle = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	reHTMLDesc  = regexp.MustCompile(`(?is)<meta\s+name=["']description["']\s+content=["']([^"']*)["']`)

	reArticle = regexp.MustCompile(`(?is)<article[^>]*>(.*?)</article>`)
	reProse   = regexp.MustCompile(`(?is)<(?:div|section)[^>]*className=["'][^"']*prose[^"']*["'][^>]*>(.*?)</(?:div|section)>`)

	reBold   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic = regexp.MustCompile(`\*([^*]+)\*`)
)

var tagAttrRes = map[string]*regexp.Regexp{}

func init() {
	for _, name := range []string{"title", "tldr", "excerpt", "date", "author", "slug"} {
		tagAttrRes[name] = regexp.MustCompile(`\b` + name + `\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	}
}

func tagAttr(src, name string) string {
	m := tagAttrRes[name].FindStringSubmatch(src)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

// extractFromBlogPostTag handles a custom <BlogPost .../> component with
// named attributes and a templated content block. The excerpt attribute
// overrides tldr when both are present.
func extractFromBlogPostTag(src string) PostMeta {
	if !reBlogPostTag.MatchString(src) {
		return PostMeta{}
	}
	meta := PostMeta{
		Title:  tagAttr(src, "title"),
		Author: tagAttr(src, "author"),
		Date:   tagAttr(src, "date"),
		Slug:   tagAttr(src, "slug"),
	}
	if excerpt := tagAttr(src, "excerpt"); excerpt != "" {
		meta.Excerpt = excerpt
	} else {
		meta.Excerpt = tagAttr(src, "tldr")
	}
	if m := reContentBlock.FindStringSubmatch(src); m != nil {
		meta.Content = m[1]
	}
	return meta
}

// extractFromMetadataExport handles a framework `export const metadata`
// object: description maps to the excerpt, openGraph.publishedTime to a
// localized long date, openGraph.authors[0] to the author.
func extractFromMetadataExport(src string) PostMeta {
	block := reMetadataExport.FindStringSubmatch(src)
	if block == nil {
		return PostMeta{}
	}
	body := block[1]
	meta := PostMeta{}
	if m := reMetaTitle.FindStringSubmatch(body); m != nil {
		meta.Title = m[1]
	}
	if m := reMetaDesc.FindStringSubmatch(body); m != nil {
		meta.Excerpt = m[1]
	}
	if m := reMetaPublished.FindStringSubmatch(body); m != nil {
		meta.Date = localizeDate(m[1])
	}
	if m := reMetaAuthors.FindStringSubmatch(body); m != nil {
		meta.Author = m[1]
	} else if m := reMetaAuthorName.FindStringSubmatch(body); m != nil {
		meta.Author = m[1]
	}
	return meta
}

// localizeDate reformats an ISO timestamp or date into the Spanish long
// form. Unparseable input passes through untouched; dates are display
// strings, not keys.
func localizeDate(raw string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return FormatSpanishDate(t)
		}
	}
	return raw
}

// extractFromConstDecls picks up individual top-level constant declarations
// such as `const title = "..."`.
func extractFromConstDecls(src string) PostMeta {
	return PostMeta{
		Title:   constDecl(src, "title"),
		Excerpt: constDecl(src, "excerpt"),
		Author:  constDecl(src, "author"),
		Date:    constDecl(src, "date"),
		Slug:    constDecl(src, "slug"),
		Content: constDecl(src, "content"),
	}
}

var constDeclRes = map[string]*regexp.Regexp{}

func init() {
	for _, name := range []string{"title", "excerpt", "author", "date", "slug", "content"} {
		constDeclRes[name] = regexp.MustCompile(`(?m)^\s*(?:export\s+)?const\s+` + name + `\s*=\s*(?:"([^"]*)"|'([^']*)'|` + "`([\\s\\S]*?)`" + `)`)
	}
}

func constDecl(src, name string) string {
	m := constDeclRes[name].FindStringSubmatch(src)
	if m == nil {
		return ""
	}
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

// extractFromHTMLTags is the last-resort fallback for traditional HTML
// documents: <title> and the meta description.
func extractFromHTMLTags(src string) PostMeta {
	meta := PostMeta{}
	if m := reHTMLTitle.FindStringSubmatch(src); m != nil {
		meta.Title = strings.TrimSpace(m[1])
	}
	if m := reHTMLDesc.FindStringSubmatch(src); m != nil {
		meta.Excerpt = m[1]
	}
	return meta
}

// ConvertContentToHTML turns a markdown-flavored content block into
// sanitizable HTML: ##/### headings, **bold**, *italic*, leading "- "
// bullet lines wrapped in a list, blank-separated paragraphs.
func ConvertContentToHTML(content string) string {
	var b strings.Builder
	var para []string
	inList := false

	closeList := func() {
		if inList {
			b.WriteString("</ul>\n")
			inList = false
		}
	}
	flushPara := func() {
		if len(para) > 0 {
			b.WriteString("<p>" + inlineHTML(strings.Join(para, " ")) + "</p>\n")
			para = nil
		}
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flushPara()
			closeList()
		case strings.HasPrefix(trimmed, "### "):
			flushPara()
			closeList()
			b.WriteString("<h3>" + inlineHTML(strings.TrimSpace(trimmed[4:])) + "</h3>\n")
		case strings.HasPrefix(trimmed, "## "):
			flushPara()
			closeList()
			b.WriteString("<h2>" + inlineHTML(strings.TrimSpace(trimmed[3:])) + "</h2>\n")
		case strings.HasPrefix(trimmed, "- "):
			flushPara()
			if !inList {
				b.WriteString("<ul>\n")
				inList = true
			}
			b.WriteString("<li>" + inlineHTML(strings.TrimSpace(trimmed[2:])) + "</li>\n")
		default:
			closeList()
			para = append(para, trimmed)
		}
	}
	flushPara()
	closeList()
	return strings.TrimSpace(b.String())
}

func inlineHTML(s string) string {
	s = html.EscapeString(s)
	s = reBold.ReplaceAllString(s, "<strong>$1</strong>")
	s = reItalic.ReplaceAllString(s, "<em>$1</em>")
	return s
}

// ExtractJSXBody pulls renderable body HTML out of JSX-flavored source. It
// prefers an <article> region, then a container whose className mentions
// "prose", and finally strips all tags and flattens whitespace into one
// paragraph.
func ExtractJSXBody(src string) string {
	if m := reArticle.FindStringSubmatch(src); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := reProse.FindStringSubmatch(src); m != nil {
		return strings.TrimSpace(m[1])
	}
	text := VisibleText(src)
	if text == "" {
		return ""
	}
	return "<p>" + html.EscapeString(text) + "</p>"
}

// VisibleText strips all markup from s and collapses whitespace, returning
// only the human-visible text. Script and style bodies are skipped.
func VisibleText(s string) string {
	doc, err := xhtml.Parse(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	var b strings.Builder
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == xhtml.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(b.String()), " ")
}
