package exporter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/markconv/markconv/internal/ooxml"
)

const sampleMarkdown = `# Title

Some **bold** and *italic* and ` + "`code`" + ` and [link](https://example.com).

- first
- second
  - nested

1. one
2. two

> quoted

` + "```go\ncode line\n```" + `

---
`

func TestExportMarkdownPassthrough(t *testing.T) {
	ex := New(Options{})
	in := "---\ntitle: Keep\n---\n# Body\n"
	art, err := ex.Export(in, TargetMarkdown)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if string(art.Data) != in {
		t.Fatalf("markdown target must pass through unchanged, got %q", art.Data)
	}
	if art.Filename != "document.md" {
		t.Fatalf("unexpected filename %q", art.Filename)
	}
}

func TestExportDocxRoundTrip(t *testing.T) {
	ex := New(Options{})
	art, err := ex.Export(sampleMarkdown, TargetDocx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(art.Data, []byte("PK")) {
		t.Fatalf("docx is not a zip archive")
	}
	doc, err := ooxml.ParseDocx(art.Data)
	if err != nil {
		t.Fatalf("parse docx: %v", err)
	}
	if len(doc.Paragraphs) == 0 || doc.Paragraphs[0].Heading != 1 || doc.Paragraphs[0].Text() != "Title" {
		t.Fatalf("missing title heading, got %+v", doc.Paragraphs)
	}
	var bold, link, quote, rule bool
	var bullets, numbers, codeLines int
	for _, p := range doc.Paragraphs {
		switch {
		case p.Quote:
			quote = true
		case p.Rule:
			rule = true
		case p.Code:
			codeLines++
		case p.List == ooxml.ListBullet:
			bullets++
		case p.List == ooxml.ListNumber:
			numbers++
		}
		for _, r := range p.Runs {
			if r.Bold && r.Text == "bold" {
				bold = true
			}
			if r.Link == "https://example.com" && r.Text == "link" {
				link = true
			}
		}
	}
	if !bold || !link || !quote || !rule {
		t.Fatalf("lost inline or block formatting: bold=%v link=%v quote=%v rule=%v", bold, link, quote, rule)
	}
	if bullets != 3 || numbers != 2 || codeLines != 1 {
		t.Fatalf("want 3 bullets, 2 numbers, 1 code line; got %d/%d/%d", bullets, numbers, codeLines)
	}
}

func TestExportRTF(t *testing.T) {
	ex := New(Options{})
	art, err := ex.Export(sampleMarkdown, TargetRTF)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	out := string(art.Data)
	if !strings.HasPrefix(out, `{\rtf1\ansi`) {
		t.Fatalf("missing rtf signature: %q", out[:40])
	}
	if !strings.HasSuffix(out, "}") {
		t.Fatalf("unterminated rtf document")
	}
	for _, want := range []string{
		`\b\fs32 Title`,
		`{\b bold}`,
		`{\i italic}`,
		`{\f1\fs20 code}`,
		`HYPERLINK "https://example.com"`,
		`\bullet\tab first`,
		`1.\tab one`,
		`2.\tab two`,
		`\cf2\i quoted`,
		`\f1\fs20 code line`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in rtf output", want)
		}
	}
}

func TestExportRTFUnicodeEscapes(t *testing.T) {
	ex := New(Options{})
	art, err := ex.Export("Café ☕ 😀", TargetRTF)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	out := string(art.Data)
	for _, want := range []string{
		`Caf\u233?`,
		`\u` + "9749?",
		`\u-10179?\u-8704?`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing escape %q in %q", want, out)
		}
	}
}

func TestExportPDF(t *testing.T) {
	ex := New(Options{})
	art, err := ex.Export(sampleMarkdown, TargetPDF)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(art.Data, []byte("%PDF-")) {
		t.Fatalf("missing pdf signature")
	}
	if art.MIME != "application/pdf" {
		t.Fatalf("unexpected mime %q", art.MIME)
	}
}

func TestExportPDFNonASCIIWithoutFont(t *testing.T) {
	ex := New(Options{PDFFont: "/nonexistent/font.ttf"})
	_, err := ex.Export("# Café", TargetPDF)
	if !errors.Is(err, ErrFontUnavailable) {
		t.Fatalf("want ErrFontUnavailable got %v", err)
	}
}

func TestExportHTML(t *testing.T) {
	ex := New(Options{})
	in := "---\ntitle: My Doc\n---\n# Heading\n\n| a | b |\n| --- | --- |\n| 1 | 2 |\n\nDone :tada:\n"
	art, err := ex.Export(in, TargetHTML)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	out := string(art.Data)
	if !strings.Contains(out, "<title>My Doc</title>") {
		t.Fatalf("missing front matter title in %q", out)
	}
	if !strings.Contains(out, "<table>") {
		t.Fatalf("missing gfm table in %q", out)
	}
	if !strings.Contains(out, "<h1") {
		t.Fatalf("missing heading in %q", out)
	}
	if strings.Contains(out, ":tada:") {
		t.Fatalf("emoji shortcode not rendered in %q", out)
	}
	if strings.Contains(out, "title: My Doc") {
		t.Fatalf("front matter leaked into body: %q", out)
	}
}

func TestExportUnsupportedTarget(t *testing.T) {
	ex := New(Options{})
	_, err := ex.Export("# x", Target("odt"))
	if !errors.Is(err, ErrUnsupportedTarget) {
		t.Fatalf("want ErrUnsupportedTarget got %v", err)
	}
}

func TestParseBlocksKeepsTablesLiteral(t *testing.T) {
	doc := parseBlocks([]byte("| a | b |\n| --- | --- |\n| 1 | 2 |\n"))
	if len(doc.Paragraphs) != 1 {
		t.Fatalf("want 1 literal paragraph got %d", len(doc.Paragraphs))
	}
	text := doc.Paragraphs[0].Text()
	if text != "| a | b |\n| --- | --- |\n| 1 | 2 |" {
		t.Fatalf("table was not kept literal: %q", text)
	}
}

func TestParseBlocksNestedLists(t *testing.T) {
	doc := parseBlocks([]byte("- top\n  - inner\n    1. deep\n"))
	if len(doc.Paragraphs) != 3 {
		t.Fatalf("want 3 items got %d: %+v", len(doc.Paragraphs), doc.Paragraphs)
	}
	if doc.Paragraphs[0].List != ooxml.ListBullet || doc.Paragraphs[0].Level != 0 {
		t.Fatalf("bad top item %+v", doc.Paragraphs[0])
	}
	if doc.Paragraphs[1].List != ooxml.ListBullet || doc.Paragraphs[1].Level != 1 {
		t.Fatalf("bad inner item %+v", doc.Paragraphs[1])
	}
	if doc.Paragraphs[2].List != ooxml.ListNumber || doc.Paragraphs[2].Level != 2 {
		t.Fatalf("bad deep item %+v", doc.Paragraphs[2])
	}
}

func TestSplitFrontmatter(t *testing.T) {
	meta, body := splitFrontmatter("---\ntitle: Hello\n---\ncontent\n")
	if meta.Title != "Hello" {
		t.Fatalf("want title Hello got %q", meta.Title)
	}
	if strings.TrimSpace(body) != "content" {
		t.Fatalf("unexpected body %q", body)
	}
	meta, body = splitFrontmatter("plain document")
	if meta.Title != "" || body != "plain document" {
		t.Fatalf("document without front matter changed: %q %q", meta.Title, body)
	}
}

func TestEscapeRTF(t *testing.T) {
	cases := []struct{ in, want string }{
		{`back\slash`, `back\\slash`},
		{"brace{}", `brace\{\}`},
		{"line\nbreak", `line\line break`},
		{"café", `caf\u233?`},
		{"😀", `\u-10179?\u-8704?`},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		if got := escapeRTF(tc.in); got != tc.want {
			t.Fatalf("escapeRTF(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
