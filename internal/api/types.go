package api

// ImportResponse is the body returned by POST /api/import.
type ImportResponse struct {
	Markdown string `json:"markdown"`
	Message  string `json:"message"`
}

// ExportRequest is the body accepted by POST /api/export/{format}.
type ExportRequest struct {
	Markdown string `json:"markdown"`
}

// FormatsResponse lists the formats the server accepts and produces.
type FormatsResponse struct {
	Import []string `json:"import"`
	Export []string `json:"export"`
}

// VisionStatus describes the configured vision backend, if any.
type VisionStatus struct {
	Enabled bool   `json:"enabled"`
	Backend string `json:"backend,omitempty"`
	Model   string `json:"model,omitempty"`
}

// StatusResponse is the body returned by GET /api/status.
type StatusResponse struct {
	Version       string       `json:"version"`
	BuildSHA      string       `json:"build_sha"`
	BuildDate     string       `json:"build_date"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	MemoryBytes   uint64       `json:"memory_bytes"`
	Goroutines    int          `json:"goroutines"`
	Vision        VisionStatus `json:"vision"`
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
