package importer

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/markconv/markconv/internal/ooxml"
)

var pdfMagic = []byte("%PDF-")

// Detect resolves the source format from the file name extension, falling
// back to magic bytes when the extension is missing or unknown. It returns
// the empty Format when neither yields a match.
func Detect(filename string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDocx
	case ".pptx":
		return FormatPptx
	case ".xlsx":
		return FormatXlsx
	case ".html", ".htm":
		return FormatHTML
	case ".md", ".markdown":
		return FormatMarkdown
	case ".txt", ".text":
		return FormatText
	}
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return FormatPDF
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		switch ooxml.SniffZip(data) {
		case "docx":
			return FormatDocx
		case "pptx":
			return FormatPptx
		case "xlsx":
			return FormatXlsx
		}
	case looksLikeHTML(data):
		return FormatHTML
	}
	return ""
}

func looksLikeHTML(data []byte) bool {
	head := bytes.TrimLeft(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), " \t\r\n")
	if len(head) > 256 {
		head = head[:256]
	}
	lower := bytes.ToLower(head)
	return bytes.HasPrefix(lower, []byte("<!doctype html")) || bytes.HasPrefix(lower, []byte("<html"))
}
