package importer

import (
	"fmt"
	"strings"

	"github.com/markconv/markconv/internal/ooxml"
)

func convertDocx(data []byte) (string, error) {
	doc, err := ooxml.ParseDocx(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptedInput, err)
	}
	return renderMarkdown(doc), nil
}

func convertPptx(data []byte) (string, error) {
	doc, err := ooxml.ParsePptx(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptedInput, err)
	}
	return renderMarkdown(doc), nil
}

// renderMarkdown flattens a parsed document into Markdown. Consecutive list
// items, code lines and table rows are grouped into single blocks so they
// survive as lists, fences and tables instead of separated paragraphs.
func renderMarkdown(doc *ooxml.Document) string {
	var blocks []string
	paras := doc.Paragraphs
	for i := 0; i < len(paras); {
		p := paras[i]
		switch {
		case p.Code:
			var lines []string
			j := i
			for j < len(paras) && paras[j].Code {
				lines = append(lines, paras[j].Text())
				j++
			}
			blocks = append(blocks, "```\n"+strings.Join(lines, "\n")+"\n```")
			i = j
		case p.List != ooxml.ListNone:
			var lines []string
			counters := map[int]int{}
			j := i
			for j < len(paras) && paras[j].List != ooxml.ListNone {
				lines = append(lines, listLine(paras[j], counters))
				j++
			}
			blocks = append(blocks, strings.Join(lines, "\n"))
			i = j
		case isTableRow(p):
			var lines []string
			j := i
			for j < len(paras) && isTableRow(paras[j]) {
				lines = append(lines, paras[j].Text())
				j++
			}
			blocks = append(blocks, strings.Join(lines, "\n"))
			i = j
		default:
			if b := renderPara(p); b != "" {
				blocks = append(blocks, b)
			}
			i++
		}
	}
	return strings.Join(blocks, "\n\n")
}

func renderPara(p ooxml.Paragraph) string {
	if p.Rule {
		return "---"
	}
	text := inline(p.Runs)
	if text == "" {
		return ""
	}
	switch {
	case p.Heading > 0:
		return strings.Repeat("#", p.Heading) + " " + text
	case p.Quote:
		return "> " + text
	default:
		return text
	}
}

func listLine(p ooxml.Paragraph, counters map[int]int) string {
	for lvl := range counters {
		if lvl > p.Level {
			delete(counters, lvl)
		}
	}
	indent := strings.Repeat("  ", p.Level)
	if p.List == ooxml.ListNumber {
		counters[p.Level]++
		return fmt.Sprintf("%s%d. %s", indent, counters[p.Level], inline(p.Runs))
	}
	delete(counters, p.Level)
	return indent + "- " + inline(p.Runs)
}

func isTableRow(p ooxml.Paragraph) bool {
	return len(p.Runs) == 1 && strings.HasPrefix(p.Runs[0].Text, "| ") && strings.HasSuffix(p.Runs[0].Text, " |")
}

func inline(runs []ooxml.Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(inlineRun(r))
	}
	return strings.TrimSpace(sb.String())
}

func inlineRun(r ooxml.Run) string {
	text := r.Text
	if text == "" {
		return ""
	}
	switch {
	case r.Code:
		text = wrapMarker(text, "`")
	case r.Bold && r.Italic:
		text = wrapMarker(text, "***")
	case r.Bold:
		text = wrapMarker(text, "**")
	case r.Italic:
		text = wrapMarker(text, "*")
	}
	if r.Link != "" {
		text = "[" + text + "](" + r.Link + ")"
	}
	return text
}

// wrapMarker keeps surrounding whitespace outside the emphasis markers,
// which Markdown parsers otherwise refuse to honor.
func wrapMarker(text, marker string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return text
	}
	i := strings.Index(text, trimmed)
	return text[:i] + marker + trimmed + marker + text[i+len(trimmed):]
}
