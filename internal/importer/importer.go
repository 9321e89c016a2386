// Package importer converts uploaded documents to Markdown. Each supported
// source format has its own converter; the Importer detects the format and
// dispatches. PDF pages can optionally be routed through a vision backend
// instead of the text extraction pipeline.
package importer

import (
	"context"
	"fmt"

	"github.com/markconv/markconv/internal/vision"
)

// Format identifies a supported source document type.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatDocx     Format = "docx"
	FormatPptx     Format = "pptx"
	FormatXlsx     Format = "xlsx"
	FormatHTML     Format = "html"
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
)

// Formats lists the supported source formats in the order they are
// advertised to clients.
func Formats() []Format {
	return []Format{FormatPDF, FormatDocx, FormatPptx, FormatXlsx, FormatHTML, FormatText, FormatMarkdown}
}

// Request carries one document to convert. Format may be left empty, in
// which case it is detected from the file name and content.
type Request struct {
	Filename string
	Data     []byte
	Format   Format
}

// Options configures an Importer. Vision may be nil, which disables the
// vision path for PDF pages.
type Options struct {
	Vision vision.Client
}

// Importer converts documents to Markdown.
type Importer struct {
	vision vision.Client
}

func New(opts Options) *Importer {
	return &Importer{vision: opts.Vision}
}

// VisionEnabled reports whether a vision backend is configured.
func (im *Importer) VisionEnabled() bool { return im.vision != nil }

// Import converts req.Data to Markdown. Errors wrap one of the sentinel
// errors in this package so callers can classify them.
func (im *Importer) Import(ctx context.Context, req Request) (string, error) {
	if len(req.Data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrCorruptedInput)
	}
	format := req.Format
	if format == "" {
		format = Detect(req.Filename, req.Data)
	}
	switch format {
	case FormatPDF:
		return im.convertPDF(ctx, req.Data)
	case FormatDocx:
		return convertDocx(req.Data)
	case FormatPptx:
		return convertPptx(req.Data)
	case FormatXlsx:
		return convertXlsx(req.Data)
	case FormatHTML:
		return convertHTML(req.Data)
	case FormatText, FormatMarkdown:
		return convertText(req.Data)
	case "":
		return "", fmt.Errorf("%w: could not detect format of %q", ErrUnsupportedFormat, req.Filename)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
