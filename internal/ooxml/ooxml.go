// Package ooxml reads and writes the small slice of Office Open XML needed
// for document conversion: WordprocessingML paragraphs with heading, list,
// quote and code styles, and PresentationML slide text. It deliberately
// ignores everything else in the packages it opens.
package ooxml

import (
	"archive/zip"
	"bytes"
	"io"
)

// ListKind classifies a paragraph's list membership.
type ListKind int

const (
	ListNone ListKind = iota
	ListBullet
	ListNumber
)

// Run is a styled span of text within a paragraph.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
	Link   string
}

// Paragraph is one block-level element of a document.
type Paragraph struct {
	Heading int // 1..6 when the paragraph is a heading
	List    ListKind
	Level   int // list indent level, 0-based
	Quote   bool
	Code    bool
	Rule    bool // horizontal rule
	Runs    []Run
}

// Text concatenates the paragraph's run text.
func (p Paragraph) Text() string {
	var b bytes.Buffer
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Document is a flat sequence of paragraphs.
type Document struct {
	Paragraphs []Paragraph
}

// SniffZip reports which OOXML flavor a ZIP archive holds: "docx", "pptx",
// "xlsx", or "" when it is none of them or not a readable archive.
func SniffZip(b []byte) string {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		switch f.Name {
		case "word/document.xml":
			return "docx"
		case "ppt/presentation.xml":
			return "pptx"
		case "xl/workbook.xml":
			return "xlsx"
		}
	}
	return ""
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer func() {
				_ = rc.Close()
			}()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}
