package importer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/image/draw"

	"github.com/markconv/markconv/internal/metrics"
	"github.com/markconv/markconv/internal/vision"
)

// Page rendering parameters for the vision path. 150 DPI keeps small print
// legible; the edge cap bounds payload size for the model.
const (
	pageDPI     = 150
	pageMaxEdge = 2048
	jpegQuality = 85
)

// convertPDFVision renders each page to a JPEG and asks the vision backend
// to transcribe or describe it.
func (im *Importer) convertPDFVision(ctx context.Context, data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", ErrCorruptedInput, err)
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		img, err := renderPageJPEG(doc, i)
		if err != nil {
			return "", err
		}
		text, err := vision.PageToMarkdown(ctx, im.vision, img)
		metrics.RecordVisionRequest(im.vision.Backend(), err == nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrVisionBackend, i+1, err)
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			pages = append(pages, trimmed)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

func renderPageJPEG(doc *fitz.Document, page int) ([]byte, error) {
	img, err := doc.ImageDPI(page, pageDPI)
	if err != nil {
		return nil, fmt.Errorf("%w: render page %d: %v", ErrCorruptedInput, page+1, err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaleDown(img, pageMaxEdge), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("%w: encode page %d: %v", ErrCorruptedInput, page+1, err)
	}
	return buf.Bytes(), nil
}

func scaleDown(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxEdge {
		return img
	}
	scale := float64(maxEdge) / float64(longest)
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
