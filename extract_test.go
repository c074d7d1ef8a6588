package maiapress

import (
	"strings"
	"testing"
)

func TestExtractBlogPostTagWinsOverMetadata(t *testing.T) {
	src := "<BlogPost title=\"A\" tldr=\"from tag\" date=\"1 de mayo de 2025\" author=\"Fede\" />\n" +
		"export const metadata = {\n  title: 'B',\n  description: 'from metadata',\n}\n"

	meta := ExtractMetadata(src)
	if meta.Title != "A" {
		t.Errorf("Title = %q, want %q (first-matched pattern wins)", meta.Title, "A")
	}
	if meta.Excerpt != "from tag" {
		t.Errorf("Excerpt = %q, want %q", meta.Excerpt, "from tag")
	}
	if meta.Author != "Fede" {
		t.Errorf("Author = %q, want %q", meta.Author, "Fede")
	}
}

func TestExtractExcerptOverridesTldr(t *testing.T) {
	src := `<BlogPost title="Post" tldr="short" excerpt="longer summary" />`
	meta := ExtractMetadata(src)
	if meta.Excerpt != "longer summary" {
		t.Errorf("Excerpt = %q, want %q", meta.Excerpt, "longer summary")
	}
}

func TestExtractBlogPostContentBlock(t *testing.T) {
	src := "<BlogPost title=\"Guía\" content={`## Intro\n\nHola **mundo** con *énfasis*.\n\n- uno\n- dos\n`} />"
	meta := ExtractMetadata(src)

	for _, want := range []string{
		"<h2>Intro</h2>",
		"<p>Hola <strong>mundo</strong> con <em>énfasis</em>.</p>",
		"<ul>",
		"<li>uno</li>",
		"<li>dos</li>",
		"</ul>",
	} {
		if !strings.Contains(meta.Content, want) {
			t.Errorf("Content missing %q:\n%s", want, meta.Content)
		}
	}
}

func TestExtractFromMetadataExport(t *testing.T) {
	src := "export const metadata = {\n" +
		"  title: 'Recorridos virtuales',\n" +
		"  description: 'Todo sobre tours 360',\n" +
		"  openGraph: {\n" +
		"    publishedTime: '2025-01-02T10:00:00Z',\n" +
		"    authors: ['Maia Team'],\n" +
		"  },\n" +
		"}\n"

	meta := ExtractMetadata(src)
	if meta.Title != "Recorridos virtuales" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Excerpt != "Todo sobre tours 360" {
		t.Errorf("Excerpt = %q", meta.Excerpt)
	}
	if meta.Author != "Maia Team" {
		t.Errorf("Author = %q", meta.Author)
	}
	if meta.Date != "2 de enero de 2025" {
		t.Errorf("Date = %q, want localized long form", meta.Date)
	}
	if meta.Slug != "recorridos-virtuales" {
		t.Errorf("Slug = %q, want derived from title", meta.Slug)
	}
}

func TestExtractConstDeclsFillMissingFieldsOnly(t *testing.T) {
	src := "export const metadata = {\n  title: 'From Metadata',\n}\n" +
		"const title = \"From Const\"\n" +
		"const author = 'Fede'\n"

	meta := ExtractMetadata(src)
	if meta.Title != "From Metadata" {
		t.Errorf("Title = %q, earlier strategy should win", meta.Title)
	}
	if meta.Author != "Fede" {
		t.Errorf("Author = %q, later strategy should fill the gap", meta.Author)
	}
}

func TestExtractHTMLFallback(t *testing.T) {
	src := `<html><head><title>Página de prueba</title>` +
		`<meta name="description" content="Una descripción"></head>` +
		`<body><p>hola</p></body></html>`

	meta := ExtractMetadata(src)
	if meta.Title != "Página de prueba" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Excerpt != "Una descripción" {
		t.Errorf("Excerpt = %q", meta.Excerpt)
	}
}

func TestExtractNeverFailsOnGarbage(t *testing.T) {
	meta := ExtractMetadata("{{{ not anything recognizable %%%")
	if meta.Title != "" || meta.Slug != "" {
		t.Errorf("expected empty metadata, got %+v", meta)
	}
}

func TestExtractJSXBodyPrefersArticle(t *testing.T) {
	src := `<div className="prose">wrong</div><article class="post"><p>body text</p></article>`
	if got := ExtractJSXBody(src); got != "<p>body text</p>" {
		t.Errorf("ExtractJSXBody = %q", got)
	}
}

func TestExtractJSXBodyProseContainer(t *testing.T) {
	src := `<div className="prose prose-lg"><p>prose body</p></div>`
	if got := ExtractJSXBody(src); got != "<p>prose body</p>" {
		t.Errorf("ExtractJSXBody = %q", got)
	}
}

func TestExtractJSXBodyStripFallback(t *testing.T) {
	src := "<section>\n  <span>scattered</span>\n  <b>words</b>\n</section>"
	got := ExtractJSXBody(src)
	if got != "<p>scattered words</p>" {
		t.Errorf("ExtractJSXBody = %q", got)
	}
}

func TestVisibleText(t *testing.T) {
	if got := VisibleText("<p>ok</p>"); got != "ok" {
		t.Errorf("VisibleText = %q, want %q", got, "ok")
	}
	if got := VisibleText("<script>var x=1</script><p>hola  mundo</p>"); got != "hola mundo" {
		t.Errorf("VisibleText = %q, want %q", got, "hola mundo")
	}
}

func TestConvertContentToHTMLParagraphsAndHeadings(t *testing.T) {
	in := "## Título\n\nPrimer párrafo\nen dos líneas.\n\n### Sub\n\nSegundo párrafo."
	got := ConvertContentToHTML(in)
	want := "<h2>Título</h2>\n<p>Primer párrafo en dos líneas.</p>\n<h3>Sub</h3>\n<p>Segundo párrafo.</p>"
	if got != want {
		t.Errorf("ConvertContentToHTML =\n%s\nwant:\n%s", got, want)
	}
}
