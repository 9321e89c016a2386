package importer

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/gen2brain/go-fitz"
)

// MuPDF emits extracted images as inline data URIs; they are noise in a
// Markdown document, so drop them.
var dataURIImage = regexp.MustCompile(`!\[[^\]]*\]\(data:image/[^)]*\)`)

// convertPDF extracts each page as HTML and converts it to Markdown,
// falling back to plain text extraction for pages with no usable markup.
func (im *Importer) convertPDF(ctx context.Context, data []byte) (string, error) {
	if err := checkPDF(data); err != nil {
		return "", err
	}
	if im.vision != nil {
		return im.convertPDFVision(ctx, data)
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", ErrCorruptedInput, err)
	}
	defer doc.Close()

	conv := md.NewConverter("", true, nil)
	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		page, err := pdfPageMarkdown(conv, doc, i)
		if err != nil {
			return "", err
		}
		if page != "" {
			pages = append(pages, page)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

func pdfPageMarkdown(conv *md.Converter, doc *fitz.Document, page int) (string, error) {
	html, err := doc.HTML(page, true)
	if err == nil && strings.TrimSpace(html) != "" {
		out, err := conv.ConvertString(html)
		if err == nil {
			out = dataURIImage.ReplaceAllString(out, "")
			if trimmed := strings.TrimSpace(out); trimmed != "" {
				return trimmed, nil
			}
		}
	}
	text, err := doc.Text(page)
	if err != nil {
		return "", fmt.Errorf("%w: extract page %d: %v", ErrCorruptedInput, page+1, err)
	}
	return strings.TrimSpace(text), nil
}

// checkPDF rejects documents MuPDF would either refuse or silently mangle.
// Encrypted PDFs carry an /Encrypt entry in their trailer dictionary.
func checkPDF(data []byte) error {
	if !bytes.HasPrefix(data, pdfMagic) {
		return fmt.Errorf("%w: missing %%PDF header", ErrCorruptedInput)
	}
	if bytes.Contains(data, []byte("/Encrypt")) {
		return fmt.Errorf("%w: pdf requires a password", ErrEncryptedInput)
	}
	return nil
}
