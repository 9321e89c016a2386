// Package exporter renders Markdown documents into downloadable artifacts.
// DOCX, PDF and RTF share one parsed block model; HTML renders through
// goldmark directly and the Markdown target passes the input through.
package exporter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// Target identifies a supported export format.
type Target string

const (
	TargetDocx     Target = "docx"
	TargetPDF      Target = "pdf"
	TargetRTF      Target = "rtf"
	TargetHTML     Target = "html"
	TargetMarkdown Target = "md"
)

// Targets lists the supported export targets in the order they are
// advertised to clients.
func Targets() []Target {
	return []Target{TargetDocx, TargetPDF, TargetRTF, TargetHTML, TargetMarkdown}
}

var (
	// ErrUnsupportedTarget marks export requests for an unknown format.
	ErrUnsupportedTarget = errors.New("unsupported export target")
	// ErrFontUnavailable marks PDF exports of non-Latin text with no
	// Unicode font configured or discoverable on the host.
	ErrFontUnavailable = errors.New("no unicode font available for pdf export")
)

// Artifact is a rendered export ready to hand to the client.
type Artifact struct {
	Data     []byte
	MIME     string
	Filename string
}

// Options configures an Exporter. PDFFont optionally points at a TTF file
// used for PDF output; when empty, well-known system font paths are tried.
type Options struct {
	PDFFont string
}

// Exporter renders Markdown into export artifacts.
type Exporter struct {
	pdfFont string
}

func New(opts Options) *Exporter {
	return &Exporter{pdfFont: opts.PDFFont}
}

// docMeta is the subset of YAML front matter the exporter understands.
type docMeta struct {
	Title string `yaml:"title"`
}

// Export renders markdown as the requested target. Front matter is stripped
// before rendering for every target except Markdown itself, which passes
// the document through unchanged.
func (ex *Exporter) Export(markdown string, target Target) (*Artifact, error) {
	meta, body := splitFrontmatter(markdown)
	switch target {
	case TargetMarkdown:
		return &Artifact{Data: []byte(markdown), MIME: "text/markdown; charset=utf-8", Filename: "document.md"}, nil
	case TargetDocx:
		data, err := renderDocx(body)
		if err != nil {
			return nil, fmt.Errorf("render docx: %w", err)
		}
		return &Artifact{
			Data:     data,
			MIME:     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			Filename: "document.docx",
		}, nil
	case TargetPDF:
		data, err := renderPDF(body, ex.pdfFont)
		if err != nil {
			return nil, fmt.Errorf("render pdf: %w", err)
		}
		return &Artifact{Data: data, MIME: "application/pdf", Filename: "document.pdf"}, nil
	case TargetRTF:
		return &Artifact{Data: renderRTF(body), MIME: "application/rtf", Filename: "document.rtf"}, nil
	case TargetHTML:
		data, err := renderHTML(body, meta.Title)
		if err != nil {
			return nil, fmt.Errorf("render html: %w", err)
		}
		return &Artifact{Data: data, MIME: "text/html; charset=utf-8", Filename: "document.html"}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTarget, target)
	}
}

func splitFrontmatter(markdown string) (docMeta, string) {
	var meta docMeta
	rest, err := frontmatter.Parse(strings.NewReader(markdown), &meta)
	if err != nil {
		return docMeta{}, markdown
	}
	return meta, string(rest)
}
