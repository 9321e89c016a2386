package importer

import "errors"

// Conversion failures fall into a small taxonomy so the HTTP layer can map
// them to status codes without string matching.
var (
	// ErrUnsupportedFormat marks uploads in a format no converter handles.
	ErrUnsupportedFormat = errors.New("unsupported source format")
	// ErrCorruptedInput marks empty, truncated or otherwise unreadable files.
	ErrCorruptedInput = errors.New("corrupted or unreadable input")
	// ErrEncryptedInput marks password-protected documents.
	ErrEncryptedInput = errors.New("encrypted document")
	// ErrVisionBackend marks failures of the optional vision backend.
	ErrVisionBackend = errors.New("vision backend failure")
)
