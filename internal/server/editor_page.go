package server

import (
	_ "embed"
	"net/http"
)

//go:embed editor.html
var editorHTML string

// EditorPageHandler serves the embedded editor page.
func EditorPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(editorHTML))
	}
}
