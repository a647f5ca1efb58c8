// Package config loads service configuration from YAML, environment
// variables and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdpdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid config")
)

// Limits enforced by Validate.
const (
	MaxUploadBytes = 1 << 30 // 1 GiB
	MaxMarginPx    = 200
	MaxWorkers     = 64
)

// Config holds all configuration for the service and the CLI.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Upload  UploadConfig  `yaml:"upload"`
	Render  RenderConfig  `yaml:"render"`
	Extract ExtractConfig `yaml:"extract"`
	Assets  AssetsConfig  `yaml:"assets"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig defines HTTP listener options.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"` // Empty = CORS disabled
}

// UploadConfig defines where uploads are staged and how large they may be.
type UploadConfig struct {
	Dir      string `yaml:"dir"`
	MaxBytes int64  `yaml:"max_bytes"`
}

// RenderConfig defines Markdown to PDF options.
type RenderConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	Style     string        `yaml:"style"`     // Style name, CSS file path or inline CSS
	Highlight bool          `yaml:"highlight"` // Syntax highlighting for fenced code
	PageSize  string        `yaml:"page_size"` // "a4", "letter", "legal"
	MarginPx  float64       `yaml:"margin_px"`
	Workers   int           `yaml:"workers"` // 0 = auto
}

// ExtractConfig defines PDF to Markdown options.
type ExtractConfig struct {
	Backend string `yaml:"backend"` // "native" or "pdftotext"
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	Dir string `yaml:"dir"` // Empty = embedded assets only
}

// LogConfig defines structured logging options.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":3000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Upload: UploadConfig{
			Dir:      filepath.Join(os.TempDir(), "mdpdf"),
			MaxBytes: 32 << 20,
		},
		Render: RenderConfig{
			Timeout:  30 * time.Second,
			Style:    "default",
			PageSize: "a4",
			MarginPx: 20,
		},
		Extract: ExtractConfig{Backend: "native"},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	if err := validatePositive("server.read_timeout", c.Server.ReadTimeout); err != nil {
		return err
	}
	if err := validatePositive("server.write_timeout", c.Server.WriteTimeout); err != nil {
		return err
	}
	if err := validatePositive("server.shutdown_timeout", c.Server.ShutdownTimeout); err != nil {
		return err
	}
	if err := validatePositive("render.timeout", c.Render.Timeout); err != nil {
		return err
	}

	if c.Upload.Dir == "" {
		return fmt.Errorf("%w: upload.dir is required", ErrInvalidConfig)
	}
	if c.Upload.MaxBytes <= 0 || c.Upload.MaxBytes > MaxUploadBytes {
		return fmt.Errorf("%w: upload.max_bytes must be between 1 and %d, got %d", ErrInvalidConfig, MaxUploadBytes, c.Upload.MaxBytes)
	}

	switch strings.ToLower(c.Render.PageSize) {
	case "a4", "letter", "legal":
	default:
		return fmt.Errorf("%w: render.page_size %q (must be a4, letter, or legal)", ErrInvalidConfig, c.Render.PageSize)
	}
	if c.Render.MarginPx < 0 || c.Render.MarginPx > MaxMarginPx {
		return fmt.Errorf("%w: render.margin_px must be between 0 and %d, got %.1f", ErrInvalidConfig, MaxMarginPx, c.Render.MarginPx)
	}
	if c.Render.Workers < 0 || c.Render.Workers > MaxWorkers {
		return fmt.Errorf("%w: render.workers must be between 0 and %d, got %d", ErrInvalidConfig, MaxWorkers, c.Render.Workers)
	}

	switch c.Extract.Backend {
	case "native", "pdftotext":
	default:
		return fmt.Errorf("%w: extract.backend %q (must be native or pdftotext)", ErrInvalidConfig, c.Extract.Backend)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q (must be text or json)", ErrInvalidConfig, c.Log.Format)
	}

	return nil
}

func validatePositive(field string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, field, d)
	}
	return nil
}

// LoadConfig reads a YAML file from a path or config name on top of
// DefaultConfig. Keys missing from the file keep their default value.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's searched in standard locations.
func LoadConfig(nameOrPath string) (*Config, error) {
	cfg := DefaultConfig()
	if nameOrPath == "" {
		return cfg, nil
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is operator-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yamlutil.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths lists the files tried for a config name, in order:
// name.yaml and name.yml in the current directory, then the same under
// the user config directory (~/.config/mdpdf on Linux).
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "mdpdf", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file from SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yamlutil.Encode(c)
}
