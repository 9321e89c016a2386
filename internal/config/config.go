package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for the markconv server.
type Config struct {
	Port           int           `yaml:"port"`
	MetricsAddr    string        `yaml:"metrics_addr"`
	APIKey         string        `yaml:"api_key"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	DrainTimeout   time.Duration `yaml:"drain_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ConfigFile     string        `yaml:"-"`
	LogLevel       string        `yaml:"log_level"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	PDFFont        string        `yaml:"pdf_font"`
	OpenBrowser    bool          `yaml:"open_browser"`
	Vision         VisionConfig  `yaml:"vision"`
}

// VisionConfig holds settings for the optional AI-assisted import path.
// When Enabled is false the importer never contacts a vision backend.
type VisionConfig struct {
	Enabled bool   `yaml:"enabled"`
	Backend string `yaml:"backend"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
}

// SetDefaults initializes c with built-in defaults.
func (c *Config) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = fmt.Sprintf(":%d", c.Port)
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 5 * time.Minute
	}
	if c.DrainTimeout == 0 {
		c.DrainTimeout = time.Minute
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = 50 << 20
	}
	if c.ConfigFile == "" {
		c.ConfigFile = DefaultConfigPath("config.yaml")
	}
	if c.Vision.Backend == "" {
		c.Vision.Backend = "ollama"
	}
	if c.Vision.BaseURL == "" {
		c.Vision.BaseURL = "http://127.0.0.1:11434"
	}
	if c.Vision.Model == "" {
		c.Vision.Model = "qwen2.5vl:32b"
	}
}

// ApplyEnv overlays environment variables onto the current config values.
func (c *Config) ApplyEnv() {
	if v := GetEnv("CONFIG_FILE", ""); v != "" {
		c.ConfigFile = v
	}
	if v := GetEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := GetEnv("PORT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Port = n
		}
	}
	if v := GetEnv("METRICS_PORT", ""); v != "" {
		if strings.Contains(v, ":") {
			c.MetricsAddr = v
		} else {
			c.MetricsAddr = ":" + v
		}
	} else if c.MetricsAddr == "" {
		c.MetricsAddr = fmt.Sprintf(":%d", c.Port)
	}
	if v := GetEnv("API_KEY", ""); v != "" {
		c.APIKey = v
	}
	if v := GetEnv("REQUEST_TIMEOUT", ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RequestTimeout = time.Duration(f * float64(time.Second))
		}
	}
	if v := GetEnv("DRAIN_TIMEOUT", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.DrainTimeout = d
		}
	}
	if v := GetEnv("ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitComma(v)
	}
	if v := GetEnv("MAX_UPLOAD_BYTES", ""); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.MaxUploadBytes = n
		}
	}
	if v := GetEnv("PDF_FONT", ""); v != "" {
		c.PDFFont = v
	}
	if v := GetEnv("OPEN_BROWSER", ""); v != "" {
		c.OpenBrowser = parseBool(v)
	}
	if v := GetEnv("VISION_ENABLED", ""); v != "" {
		c.Vision.Enabled = parseBool(v)
	}
	if v := GetEnv("VISION_BACKEND", ""); v != "" {
		c.Vision.Backend = v
	}
	if v := GetEnv("VISION_BASE_URL", ""); v != "" {
		c.Vision.BaseURL = v
	}
	if v := GetEnv("VISION_MODEL", ""); v != "" {
		c.Vision.Model = v
	}
	if v := GetEnv("VISION_API_KEY", ""); v != "" {
		c.Vision.APIKey = v
	}
}

// BindFlagsFromCurrent binds command line flags using the current config values as defaults.
func (c *Config) BindFlagsFromCurrent() {
	flag.StringVar(&c.ConfigFile, "config", c.ConfigFile, "server config file path")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log verbosity (all, debug, info, warn, error, fatal, none)")
	flag.IntVar(&c.Port, "port", c.Port, "HTTP listen port for the editor and API")
	flag.StringVar(&c.MetricsAddr, "metrics-port", c.MetricsAddr, "Prometheus metrics listen address or port; defaults to the value of --port")
	flag.StringVar(&c.APIKey, "api-key", c.APIKey, "API key required for /api requests; leave empty to disable auth")
	flag.Func("request-timeout", "request timeout in seconds", func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.RequestTimeout = time.Duration(f * float64(time.Second))
		return nil
	})
	flag.DurationVar(&c.DrainTimeout, "drain-timeout", c.DrainTimeout, "time to wait for in-flight requests on shutdown (0 to exit immediately)")
	flag.Func("allowed-origins", "comma separated list of allowed CORS origins", func(v string) error {
		c.AllowedOrigins = splitComma(v)
		return nil
	})
	flag.Int64Var(&c.MaxUploadBytes, "max-upload-bytes", c.MaxUploadBytes, "maximum accepted upload size in bytes")
	flag.StringVar(&c.PDFFont, "pdf-font", c.PDFFont, "TrueType font file used for Unicode PDF export; auto-discovered when empty")
	flag.BoolVar(&c.OpenBrowser, "open-browser", c.OpenBrowser, "open the editor in the default browser after startup")
	flag.BoolVar(&c.Vision.Enabled, "vision", c.Vision.Enabled, "enable the AI-assisted import path for scanned documents")
	flag.StringVar(&c.Vision.Backend, "vision-backend", c.Vision.Backend, "vision backend kind (ollama, openai)")
	flag.StringVar(&c.Vision.BaseURL, "vision-base-url", c.Vision.BaseURL, "vision backend base URL")
	flag.StringVar(&c.Vision.Model, "vision-model", c.Vision.Model, "vision model name")
}

// LoadFile populates the config from a YAML file.
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

// GetEnv returns the environment value for key or def when unset or empty.
func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitComma(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
