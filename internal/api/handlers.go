package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/markconv/markconv/internal/exporter"
	"github.com/markconv/markconv/internal/importer"
	"github.com/markconv/markconv/internal/logx"
	"github.com/markconv/markconv/internal/metrics"
)

// Handlers bundles the dependencies of the JSON API.
type Handlers struct {
	Importer       *importer.Importer
	Exporter       *exporter.Exporter
	MaxUploadBytes int64
	StartedAt      time.Time
	Version        string
	BuildSHA       string
	BuildDate      string
	VisionBackend  string
	VisionModel    string
}

// ImportHandler accepts a multipart upload and returns the converted
// Markdown. The file goes in the "file" field; an optional "format" field
// overrides detection.
func (h *Handlers) ImportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", h.MaxUploadBytes))
				return
			}
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "read upload")
			return
		}

		srcFormat := importer.Format(r.FormValue("format"))
		if srcFormat == "" {
			srcFormat = importer.Detect(header.Filename, data)
		}
		label := string(srcFormat)
		if label == "" {
			label = "unknown"
		}

		jobID := uuid.NewString()
		md, err := h.Importer.Import(r.Context(), importer.Request{Filename: header.Filename, Data: data, Format: srcFormat})
		metrics.RecordImport(label, err == nil)
		if err != nil {
			logx.Log.Error().Err(err).Str("id", jobID).Str("file", header.Filename).Str("format", label).Msg("import failed")
			writeError(w, statusForError(err), err.Error())
			return
		}
		metrics.ObserveConversionDuration("import", label, time.Since(start))
		logx.Log.Info().Str("id", jobID).Str("file", header.Filename).Str("format", label).Dur("elapsed", time.Since(start)).Int("markdown_bytes", len(md)).Msg("import ok")
		writeJSON(w, http.StatusOK, ImportResponse{Markdown: md, Message: fmt.Sprintf("Converted %s", header.Filename)})
	}
}

// ExportHandler renders the posted Markdown as the format named in the URL
// and returns it as an attachment.
func (h *Handlers) ExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		target := exporter.Target(chi.URLParam(r, "format"))
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
		var req ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if strings.TrimSpace(req.Markdown) == "" {
			writeError(w, http.StatusBadRequest, "markdown must not be empty")
			return
		}

		jobID := uuid.NewString()
		art, err := h.Exporter.Export(req.Markdown, target)
		metrics.RecordExport(string(target), err == nil)
		if err != nil {
			logx.Log.Error().Err(err).Str("id", jobID).Str("target", string(target)).Msg("export failed")
			writeError(w, statusForError(err), err.Error())
			return
		}
		metrics.ObserveConversionDuration("export", string(target), time.Since(start))
		logx.Log.Info().Str("id", jobID).Str("target", string(target)).Dur("elapsed", time.Since(start)).Int("bytes", len(art.Data)).Msg("export ok")

		w.Header().Set("Content-Type", art.MIME)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
		if _, err := w.Write(art.Data); err != nil {
			logx.Log.Error().Err(err).Msg("write export artifact")
		}
	}
}

// FormatsHandler lists supported import and export formats.
func (h *Handlers) FormatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := FormatsResponse{}
		for _, f := range importer.Formats() {
			resp.Import = append(resp.Import, string(f))
		}
		for _, t := range exporter.Targets() {
			resp.Export = append(resp.Export, string(t))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// StatusHandler reports build, uptime and resource information.
func (h *Handlers) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{
			Version:       h.Version,
			BuildSHA:      h.BuildSHA,
			BuildDate:     h.BuildDate,
			UptimeSeconds: int64(time.Since(h.StartedAt).Seconds()),
			Goroutines:    runtime.NumGoroutine(),
			Vision: VisionStatus{
				Enabled: h.VisionBackend != "",
				Backend: h.VisionBackend,
				Model:   h.VisionModel,
			},
		}
		if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
			if mi, err := proc.MemoryInfo(); err == nil && mi != nil {
				resp.MemoryBytes = mi.RSS
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HealthHandler answers liveness probes.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
