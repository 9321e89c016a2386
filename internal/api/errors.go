package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/markconv/markconv/internal/exporter"
	"github.com/markconv/markconv/internal/importer"
	"github.com/markconv/markconv/internal/logx"
)

// statusForError maps conversion failures to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, importer.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, importer.ErrCorruptedInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, importer.ErrEncryptedInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, importer.ErrVisionBackend):
		return http.StatusBadGateway
	case errors.Is(err, exporter.ErrUnsupportedTarget):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Log.Error().Err(err).Msg("write json response")
	}
}
