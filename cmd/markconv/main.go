package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/markconv/markconv/internal/config"
	"github.com/markconv/markconv/internal/logx"
	"github.com/markconv/markconv/internal/server"
	"github.com/markconv/markconv/internal/vision"
)

var (
	version   = "dev"
	buildSHA  = "unknown"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load()

	showVersion := flag.Bool("version", false, "print version and exit")
	var cfg config.Config
	// Resolve config with precedence: defaults < file < env < args
	cfg.SetDefaults()
	cfg.ApplyEnv() // allows CONFIG_FILE from env
	// Allow --config to override file path before loading it
	for i := 1; i < len(os.Args); i++ {
		a := os.Args[i]
		if a == "--config" && i+1 < len(os.Args) {
			cfg.ConfigFile = os.Args[i+1]
			break
		}
		if strings.HasPrefix(a, "--config=") {
			cfg.ConfigFile = strings.TrimPrefix(a, "--config=")
			break
		}
	}
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			logx.Log.Fatal().Err(err).Str("path", cfg.ConfigFile).Msg("load config")
		}
	}
	// Overlay env (after file) and then bind flags; args parsed below
	cfg.ApplyEnv()
	cfg.BindFlagsFromCurrent()
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "markconv version=%s sha=%s date=%s\n\n", version, buildSHA, buildDate)
		flag.PrintDefaults()
	}
	flag.Parse()
	if *showVersion {
		fmt.Printf("markconv version=%s sha=%s date=%s\n", version, buildSHA, buildDate)
		return
	}

	// cfg now reflects defaults <- file <- env <- args
	logx.Configure(cfg.LogLevel)

	var visionClient vision.Client
	if cfg.Vision.Enabled {
		vc, err := vision.New(cfg.Vision.Backend, cfg.Vision.BaseURL, cfg.Vision.Model, cfg.Vision.APIKey)
		if err != nil {
			logx.Log.Fatal().Err(err).Msg("configure vision backend")
		}
		logx.Log.Info().Str("backend", vc.Backend()).Str("model", cfg.Vision.Model).Msg("ensuring vision model is available; this may download the model")
		if err := vc.EnsureModel(context.Background()); err != nil {
			logx.Log.Fatal().Err(err).Str("model", cfg.Vision.Model).Msg("vision model unavailable")
		}
		visionClient = vc
	}

	handler := server.New(cfg, visionClient, server.BuildInfo{Version: version, SHA: buildSHA, Date: buildDate})
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}
	var metricsSrv *http.Server
	if cfg.MetricsAddr != fmt.Sprintf(":%d", cfg.Port) {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logx.Log.Info().Dur("timeout", cfg.DrainTimeout).Msg("shutdown requested; draining in-flight conversions")
		go func() {
			<-sigCh
			logx.Log.Warn().Msg("second signal; terminating immediately")
			_ = srv.Close()
		}()
		shutdownCtx := context.Background()
		if cfg.DrainTimeout > 0 {
			var stop context.CancelFunc
			shutdownCtx, stop = context.WithTimeout(shutdownCtx, cfg.DrainTimeout)
			defer stop()
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logx.Log.Warn().Err(err).Msg("drain timeout exceeded; terminating")
			_ = srv.Close()
		}
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(context.Background())
		}
		cancel()
	}()

	if cfg.APIKey != "" {
		logx.Log.Info().Msg("API key auth enabled")
	}
	if metricsSrv != nil {
		go func() {
			logx.Log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server starting")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logx.Log.Error().Err(err).Msg("metrics server error")
			}
		}()
	}
	if cfg.OpenBrowser {
		go func() {
			url := fmt.Sprintf("http://127.0.0.1:%d/", cfg.Port)
			time.Sleep(300 * time.Millisecond)
			if err := browser.OpenURL(url); err != nil {
				logx.Log.Debug().Err(err).Str("url", url).Msg("open browser")
			}
		}()
	}
	logx.Log.Info().Int("port", cfg.Port).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logx.Log.Fatal().Err(err).Msg("server error")
	}
	<-ctx.Done()
}
