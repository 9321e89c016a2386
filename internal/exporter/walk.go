package exporter

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/markconv/markconv/internal/ooxml"
)

// parseBlocks parses Markdown into the flat paragraph model shared by the
// binary writers. The parser runs without table or strikethrough extensions,
// so pipe tables and other constructs the writers cannot represent pass
// through as literal text.
func parseBlocks(source []byte) *ooxml.Document {
	root := goldmark.New().Parser().Parse(gtext.NewReader(source))
	doc := &ooxml.Document{}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		appendBlock(doc, n, source, blockContext{})
	}
	return doc
}

type blockContext struct {
	quote bool
	list  ooxml.ListKind
	level int
}

func appendBlock(doc *ooxml.Document, n ast.Node, source []byte, ctx blockContext) {
	switch b := n.(type) {
	case *ast.Heading:
		doc.Paragraphs = append(doc.Paragraphs, ooxml.Paragraph{Heading: b.Level, Runs: inlineRuns(b, source)})
	case *ast.Paragraph, *ast.TextBlock:
		doc.Paragraphs = append(doc.Paragraphs, ooxml.Paragraph{
			Quote: ctx.quote,
			List:  ctx.list,
			Level: ctx.level,
			Runs:  inlineRuns(n, source),
		})
	case *ast.Blockquote:
		inner := ctx
		inner.quote = true
		for c := b.FirstChild(); c != nil; c = c.NextSibling() {
			appendBlock(doc, c, source, inner)
		}
	case *ast.FencedCodeBlock:
		appendCodeLines(doc, b, source)
	case *ast.CodeBlock:
		appendCodeLines(doc, b, source)
	case *ast.List:
		kind := ooxml.ListBullet
		if b.IsOrdered() {
			kind = ooxml.ListNumber
		}
		level := ctx.level
		if ctx.list != ooxml.ListNone {
			level++
		}
		for item := b.FirstChild(); item != nil; item = item.NextSibling() {
			inner := ctx
			inner.list, inner.level = kind, level
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				appendBlock(doc, c, source, inner)
			}
		}
	case *ast.ThematicBreak:
		doc.Paragraphs = append(doc.Paragraphs, ooxml.Paragraph{Rule: true})
	case *ast.HTMLBlock:
		// raw HTML has no representation in the binary targets
	}
}

func appendCodeLines(doc *ooxml.Document, n ast.Node, source []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(source)), "\n")
		doc.Paragraphs = append(doc.Paragraphs, ooxml.Paragraph{Code: true, Runs: []ooxml.Run{{Text: line}}})
	}
}

type runState struct {
	bold   bool
	italic bool
	code   bool
	link   string
}

type runCollector struct {
	runs []ooxml.Run
}

func (rc *runCollector) add(text string, st runState) {
	if text == "" {
		return
	}
	if n := len(rc.runs); n > 0 {
		last := &rc.runs[n-1]
		if last.Bold == st.bold && last.Italic == st.italic && last.Code == st.code && last.Link == st.link {
			last.Text += text
			return
		}
	}
	rc.runs = append(rc.runs, ooxml.Run{Text: text, Bold: st.bold, Italic: st.italic, Code: st.code, Link: st.link})
}

func inlineRuns(n ast.Node, source []byte) []ooxml.Run {
	var rc runCollector
	collectInline(&rc, n, source, runState{})
	return rc.runs
}

func collectInline(rc *runCollector, n ast.Node, source []byte, st runState) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			rc.add(string(t.Segment.Value(source)), st)
			if t.SoftLineBreak() || t.HardLineBreak() {
				rc.add("\n", st)
			}
		case *ast.String:
			rc.add(string(t.Value), st)
		case *ast.Emphasis:
			inner := st
			if t.Level >= 2 {
				inner.bold = true
			} else {
				inner.italic = true
			}
			collectInline(rc, t, source, inner)
		case *ast.CodeSpan:
			inner := st
			inner.code = true
			collectInline(rc, t, source, inner)
		case *ast.Link:
			inner := st
			inner.link = string(t.Destination)
			collectInline(rc, t, source, inner)
		case *ast.AutoLink:
			url := string(t.URL(source))
			inner := st
			inner.link = url
			rc.add(string(t.Label(source)), inner)
		case *ast.Image:
			inner := st
			inner.link = string(t.Destination)
			collectInline(rc, t, source, inner)
		case *ast.RawHTML:
			// dropped, same as HTML blocks
		default:
			collectInline(rc, c, source, st)
		}
	}
}
