package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/markconv/markconv/internal/api"
	"github.com/markconv/markconv/internal/config"
	"github.com/markconv/markconv/internal/exporter"
	"github.com/markconv/markconv/internal/importer"
	"github.com/markconv/markconv/internal/metrics"
	"github.com/markconv/markconv/internal/vision"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version string
	SHA     string
	Date    string
}

// New constructs the HTTP handler for the server. visionClient may be nil,
// which leaves PDF imports on the text extraction path.
func New(cfg config.Config, visionClient vision.Client, build BuildInfo) http.Handler {
	r := chi.NewRouter()
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}
	for _, m := range api.MiddlewareChain() {
		r.Use(m)
	}

	preg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = preg
	prometheus.DefaultGatherer = preg
	metrics.Register(preg)
	metrics.SetBuildInfo(build.Version, build.SHA, build.Date)

	h := &api.Handlers{
		Importer:       importer.New(importer.Options{Vision: visionClient}),
		Exporter:       exporter.New(exporter.Options{PDFFont: cfg.PDFFont}),
		MaxUploadBytes: cfg.MaxUploadBytes,
		StartedAt:      time.Now(),
		Version:        build.Version,
		BuildSHA:       build.SHA,
		BuildDate:      build.Date,
	}
	if visionClient != nil {
		h.VisionBackend = visionClient.Backend()
		h.VisionModel = cfg.Vision.Model
	}

	r.Get("/healthz", api.HealthHandler())
	r.Route("/api", func(ar chi.Router) {
		ar.Get("/openapi.json", api.OpenAPIHandler())
		ar.Group(func(g chi.Router) {
			if cfg.APIKey != "" {
				g.Use(api.APIKeyMiddleware(cfg.APIKey))
			}
			g.Post("/import", h.ImportHandler())
			g.Post("/export/{format}", h.ExportHandler())
			g.Get("/formats", h.FormatsHandler())
			g.Get("/status", h.StatusHandler())
		})
	})
	r.Get("/docs", api.SwaggerHandler())
	r.Get("/", EditorPageHandler())

	if cfg.MetricsAddr == fmt.Sprintf(":%d", cfg.Port) {
		r.Handle("/metrics", promhttp.HandlerFor(preg, promhttp.HandlerOpts{}))
	}

	return r
}
