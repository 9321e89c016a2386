package importer

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// convertText returns the file content as-is when it is valid UTF-8 and
// reinterprets it as Latin-1 otherwise. Markdown uploads take the same path
// since they are already Markdown.
func convertText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: decode text: %v", ErrCorruptedInput, err)
	}
	return string(decoded), nil
}
