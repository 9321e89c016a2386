package exporter

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// htmlMD is the renderer for the HTML target. Unlike the binary targets it
// understands GFM tables and emoji shortcodes.
var htmlMD = goldmark.New(
	goldmark.WithExtensions(extension.GFM, emoji.Emoji),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

const htmlShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
body { max-width: 48rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.6; color: #1f2328; }
pre { background: #f6f8fa; padding: 1rem; overflow-x: auto; border-radius: 6px; }
code { background: #f6f8fa; padding: 0.1rem 0.3rem; border-radius: 4px; font-size: 0.9em; }
pre code { padding: 0; }
blockquote { border-left: 4px solid #d0d7de; margin-left: 0; padding-left: 1rem; color: #666666; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d0d7de; padding: 0.4rem 0.8rem; }
img { max-width: 100%%; }
</style>
</head>
<body>
%s</body>
</html>
`

func renderHTML(body string, title string) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlMD.Convert([]byte(body), &buf); err != nil {
		return nil, err
	}
	if title == "" {
		title = "Exported Document"
	}
	return []byte(fmt.Sprintf(htmlShell, html.EscapeString(title), buf.String())), nil
}
