package importer

import (
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/microcosm-cc/bluemonday"
)

// convertHTML sanitizes the document and converts the surviving markup to
// Markdown. Script, style and event-handler attributes are stripped before
// conversion so hostile uploads cannot smuggle anything into the output.
func convertHTML(data []byte) (string, error) {
	clean := bluemonday.UGCPolicy().SanitizeBytes(data)
	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())
	out, err := conv.ConvertString(string(clean))
	if err != nil {
		return "", fmt.Errorf("%w: convert html: %v", ErrCorruptedInput, err)
	}
	return out, nil
}
