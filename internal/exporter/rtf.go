package exporter

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/markconv/markconv/internal/ooxml"
)

// Word-compatible preamble: Arial body, Courier New mono, black and gray
// color table entries.
const rtfHeader = `{\rtf1\ansi\ansicpg1252\deff0\nouicompat\deflang1033` +
	`{\fonttbl{\f0\fswiss\fcharset0 Arial;}{\f1\fmodern\fcharset0 Courier New;}}` +
	`{\colortbl ;\red0\green0\blue0;\red102\green102\blue102;}` + "\n"

func renderRTF(body string) []byte {
	doc := parseBlocks([]byte(body))
	var sb strings.Builder
	sb.WriteString(rtfHeader)
	counters := map[int]int{}
	for _, p := range doc.Paragraphs {
		if p.List == ooxml.ListNone {
			counters = map[int]int{}
		}
		writeRTFParagraph(&sb, p, counters)
	}
	sb.WriteString("}")
	return []byte(sb.String())
}

func writeRTFParagraph(sb *strings.Builder, p ooxml.Paragraph, counters map[int]int) {
	switch {
	case p.Rule:
		sb.WriteString(`\pard\brdrb\brdrs\brdrw10\brsp80\sa200\sl276\slmult1\par` + "\n")
	case p.Heading > 0:
		fmt.Fprintf(sb, `\pard\sa200\sl276\slmult1\b\fs%d %s\b0\fs22\par`+"\n", headingRTFSize(p.Heading), rtfRuns(p.Runs))
	case p.Code:
		fmt.Fprintf(sb, `\pard\sa200\sl276\slmult1\f1\fs20 %s\f0\fs22\par`+"\n", rtfRuns(p.Runs))
	case p.Quote:
		fmt.Fprintf(sb, `\pard\li720\sa200\sl276\slmult1\cf2\i %s\i0\cf1\par`+"\n", rtfRuns(p.Runs))
	case p.List == ooxml.ListBullet:
		delete(counters, p.Level)
		fmt.Fprintf(sb, `\pard\fi-360\li%d\sa200\sl276\slmult1 \bullet\tab %s\par`+"\n", 720*(p.Level+1), rtfRuns(p.Runs))
	case p.List == ooxml.ListNumber:
		for lvl := range counters {
			if lvl > p.Level {
				delete(counters, lvl)
			}
		}
		counters[p.Level]++
		fmt.Fprintf(sb, `\pard\fi-360\li%d\sa200\sl276\slmult1 %d.\tab %s\par`+"\n", 720*(p.Level+1), counters[p.Level], rtfRuns(p.Runs))
	default:
		fmt.Fprintf(sb, `\pard\sa200\sl276\slmult1 %s\par`+"\n", rtfRuns(p.Runs))
	}
}

func headingRTFSize(level int) int {
	switch level {
	case 1:
		return 32
	case 2:
		return 28
	case 3:
		return 24
	default:
		return 22
	}
}

func rtfRuns(runs []ooxml.Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(rtfRun(r))
	}
	return sb.String()
}

// rtfRun wraps formatted spans in groups so the formatting closes itself,
// instead of toggle pairs that can clobber paragraph-level state.
func rtfRun(r ooxml.Run) string {
	text := escapeRTF(r.Text)
	switch {
	case r.Code:
		text = `{\f1\fs20 ` + text + `}`
	case r.Bold && r.Italic:
		text = `{\b\i ` + text + `}`
	case r.Bold:
		text = `{\b ` + text + `}`
	case r.Italic:
		text = `{\i ` + text + `}`
	}
	if r.Link != "" {
		text = `{\field{\*\fldinst{HYPERLINK "` + escapeRTF(r.Link) + `"}}{\fldrslt{\ul ` + text + `}}}`
	}
	return text
}

// escapeRTF escapes control characters and encodes everything outside ASCII
// as \uN? keywords. RTF wants the UTF-16 code units as signed 16-bit
// decimals, so characters beyond the BMP become a surrogate pair of two
// keywords.
func escapeRTF(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == '{':
			sb.WriteString(`\{`)
		case r == '}':
			sb.WriteString(`\}`)
		case r == '\n':
			sb.WriteString(`\line `)
		case r == '\t':
			sb.WriteString(`\tab `)
		case r == '\r':
		case r < 0x80:
			sb.WriteRune(r)
		default:
			for _, u := range utf16.Encode([]rune{r}) {
				n := int(u)
				if n >= 0x8000 {
					n -= 0x10000
				}
				fmt.Fprintf(&sb, `\u%d?`, n)
			}
		}
	}
	return sb.String()
}
