package vision

import (
	"context"
	"strings"
)

const classifyPrompt = `Analyze this image and classify it into one of two categories:

1. "document" - if it contains:
   - Text documents (letters, forms, contracts, etc.)
   - Tables or spreadsheets
   - Charts, graphs, or statistics
   - Technical diagrams
   - Screenshots with text

2. "photo" - if it contains:
   - Photographs of people, places, or objects
   - Artwork or illustrations
   - Natural scenes
   - Images without significant text content

Respond with ONLY ONE WORD: either "document" or "photo".`

const transcribeSystem = `You are an expert document transcription assistant. Your task is to:
1. Extract ALL text from the document image with 100% accuracy
2. Preserve the document structure using Markdown formatting
3. Maintain original formatting (headings, lists, tables, emphasis)
4. Keep all numbers, dates, and special characters exactly as shown
5. Preserve line breaks and paragraph structure`

const transcribePrompt = `Transcribe this document image to Markdown format.

Requirements:
- Use ## for main headings, ### for subheadings
- Convert tables to Markdown table format
- Use **bold** and *italic* where appropriate
- Preserve bullet points and numbered lists
- Include all text verbatim - do not summarize or paraphrase
- If text is unclear, include [unclear] marker

Output the transcription in valid Markdown format.`

const describeSystem = `You are an expert image analyst. Your task is to provide detailed, accurate descriptions of images.`

const describePrompt = `Describe this image in detail.

Include:
- Main subjects and their characteristics
- Setting and environment
- Colors, lighting, and mood
- Composition and notable elements
- Any text or symbols visible

Provide a clear, structured description in Markdown format.`

// Classify decides whether the page image is a text document or a photo.
// Unclear answers default to "document".
func Classify(ctx context.Context, c Client, image []byte) (string, error) {
	out, err := c.Analyze(ctx, AnalyzeRequest{Prompt: classifyPrompt, Image: image, Temperature: 0})
	if err != nil {
		return "", err
	}
	lower := strings.ToLower(strings.TrimSpace(out))
	if strings.Contains(lower, "photo") && !strings.Contains(lower, "document") {
		return "photo", nil
	}
	return "document", nil
}

// Transcribe extracts a document page as Markdown.
func Transcribe(ctx context.Context, c Client, image []byte) (string, error) {
	return c.Analyze(ctx, AnalyzeRequest{
		System:      transcribeSystem,
		Prompt:      transcribePrompt,
		Image:       image,
		Temperature: 0.1,
	})
}

// Describe writes a Markdown description of a photo or figure.
func Describe(ctx context.Context, c Client, image []byte) (string, error) {
	return c.Analyze(ctx, AnalyzeRequest{
		System:      describeSystem,
		Prompt:      describePrompt,
		Image:       image,
		Temperature: 0.3,
	})
}

// PageToMarkdown runs the two-step flow for one page image: classify, then
// transcribe a document page or describe a photo. Model output wrapped in
// code fences is unwrapped.
func PageToMarkdown(ctx context.Context, c Client, image []byte) (string, error) {
	kind, err := Classify(ctx, c, image)
	if err != nil {
		return "", err
	}
	var out string
	if kind == "document" {
		out, err = Transcribe(ctx, c, image)
	} else {
		out, err = Describe(ctx, c, image)
		if err == nil {
			out = "# Image Description\n\n" + out
		}
	}
	if err != nil {
		return "", err
	}
	return stripCodeFences(out), nil
}

// stripCodeFences removes markdown code fence wrappers that models often add
// around their whole answer, including stray fence lines in the middle.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```markdown") {
		text = strings.TrimLeft(text[len("```markdown"):], "\n")
	} else if strings.HasPrefix(text, "```") {
		if i := strings.Index(text, "\n"); i != -1 {
			text = strings.TrimLeft(text[i+1:], "\n")
		}
	}
	if strings.HasSuffix(text, "```") {
		text = strings.TrimRight(text[:len(text)-3], "\n")
	}
	lines := strings.Split(text, "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		s := strings.TrimSpace(line)
		if s == "```" || s == "```markdown" {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
