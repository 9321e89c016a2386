package exporter

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"

	"github.com/markconv/markconv/internal/ooxml"
)

const (
	pageMargin = 20.0
	bodySize   = 11.0
	bodyLine   = 6.0
	// family name under which a configured TTF is registered
	unicodeFamily = "unicode"
)

var headingSizes = [...]float64{0, 24, 18, 14, 13, 12, 11}

// Fallback locations for a Unicode-capable TTF, tried when PDF_FONT is not
// set. The core Helvetica/Courier fonts only cover ASCII.
var fontSearchPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/local/share/fonts/DejaVuSans.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	"C:\\Windows\\Fonts\\arialuni.ttf",
}

type fontSet struct {
	body    string
	mono    string
	unicode bool
}

func renderPDF(body string, fontPath string) ([]byte, error) {
	doc := parseBlocks([]byte(body))
	pdf := fpdf.New("P", "mm", "A4", "")
	// fpdf resolves font files via path.Join(fontpath, file); its default
	// fontpath "." strips the leading slash from absolute TTF paths, so the
	// location must be emptied for findFont's absolute paths to load.
	pdf.SetFontLocation("")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)

	fonts := setupFonts(pdf, fontPath)
	if !fonts.unicode && !asciiOnly(doc) {
		return nil, fmt.Errorf("%w: set PDF_FONT to a TTF file", ErrFontUnavailable)
	}

	pdf.AddPage()
	r := &pdfRenderer{pdf: pdf, fonts: fonts, counters: map[int]int{}}
	for _, p := range doc.Paragraphs {
		r.paragraph(p)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setupFonts(pdf *fpdf.Fpdf, explicit string) fontSet {
	path := findFont(explicit)
	if path == "" {
		return fontSet{body: "Helvetica", mono: "Courier"}
	}
	for _, style := range []string{"", "B", "I", "BI"} {
		pdf.AddUTF8Font(unicodeFamily, style, path)
	}
	return fontSet{body: unicodeFamily, mono: unicodeFamily, unicode: true}
}

func findFont(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}
	for _, p := range fontSearchPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func asciiOnly(doc *ooxml.Document) bool {
	for _, p := range doc.Paragraphs {
		for _, r := range p.Runs {
			for i := 0; i < len(r.Text); i++ {
				if r.Text[i] > 0x7f {
					return false
				}
			}
		}
	}
	return true
}

type pdfRenderer struct {
	pdf      *fpdf.Fpdf
	fonts    fontSet
	counters map[int]int
}

type textOpts struct {
	baseBold   bool
	baseItalic bool
	mono       bool
	size       float64
	lh         float64
}

func (r *pdfRenderer) paragraph(p ooxml.Paragraph) {
	if p.List == ooxml.ListNone {
		r.counters = map[int]int{}
	}
	switch {
	case p.Rule:
		r.pdf.Ln(3)
		y := r.pdf.GetY()
		w, _ := r.pdf.GetPageSize()
		r.pdf.SetDrawColor(160, 160, 160)
		r.pdf.Line(pageMargin, y, w-pageMargin, y)
		r.pdf.Ln(5)
	case p.Heading > 0:
		size := headingSizes[p.Heading]
		lh := size * 0.55
		r.runs(p.Runs, textOpts{baseBold: true, size: size, lh: lh})
		r.pdf.Ln(lh + 4)
	case p.Code:
		r.runs(p.Runs, textOpts{mono: true, size: 10, lh: 5})
		r.pdf.Ln(5)
	case p.Quote:
		r.pdf.SetLeftMargin(pageMargin + 8)
		r.pdf.SetX(pageMargin + 8)
		r.pdf.SetTextColor(102, 102, 102)
		r.runs(p.Runs, textOpts{baseItalic: true, size: bodySize, lh: bodyLine})
		r.pdf.Ln(bodyLine + 3)
		r.pdf.SetLeftMargin(pageMargin)
		r.pdf.SetX(pageMargin)
		r.pdf.SetTextColor(0, 0, 0)
	case p.List != ooxml.ListNone:
		r.listItem(p)
	default:
		r.runs(p.Runs, textOpts{size: bodySize, lh: bodyLine})
		r.pdf.Ln(bodyLine + 3)
	}
}

func (r *pdfRenderer) listItem(p ooxml.Paragraph) {
	for lvl := range r.counters {
		if lvl > p.Level {
			delete(r.counters, lvl)
		}
	}
	marker := "- "
	if r.fonts.unicode {
		marker = "\u2022 "
	}
	if p.List == ooxml.ListNumber {
		r.counters[p.Level]++
		marker = fmt.Sprintf("%d. ", r.counters[p.Level])
	} else {
		delete(r.counters, p.Level)
	}
	indent := pageMargin + float64(p.Level)*6
	r.pdf.SetLeftMargin(indent + 6)
	r.pdf.SetX(indent)
	r.pdf.SetFont(r.fonts.body, "", bodySize)
	r.pdf.Write(bodyLine, marker)
	r.runs(p.Runs, textOpts{size: bodySize, lh: bodyLine})
	r.pdf.Ln(bodyLine + 1)
	r.pdf.SetLeftMargin(pageMargin)
	r.pdf.SetX(pageMargin)
}

func (r *pdfRenderer) runs(runs []ooxml.Run, o textOpts) {
	for _, run := range runs {
		family := r.fonts.body
		size := o.size
		if o.mono || run.Code {
			family = r.fonts.mono
			if !o.mono {
				size = o.size - 1
			}
		}
		style := ""
		if o.baseBold || run.Bold {
			style += "B"
		}
		if o.baseItalic || run.Italic {
			style += "I"
		}
		r.pdf.SetFont(family, style, size)
		if run.Link != "" {
			r.pdf.WriteLinkString(o.lh, run.Text, run.Link)
		} else {
			r.pdf.Write(o.lh, run.Text)
		}
	}
}
