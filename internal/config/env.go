package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of every recognized environment variable.
const EnvPrefix = "MDPDF_"

// EnvConfigPath names the variable holding the config file path.
const EnvConfigPath = EnvPrefix + "CONFIG"

// envSetter applies one environment value to the config.
type envSetter func(c *Config, v string) error

// envVars maps MDPDF_* names to their setters.
// Names not in this table produce a warning (typo detection).
var envVars = map[string]envSetter{
	EnvConfigPath: func(*Config, string) error { return nil }, // consumed by the CLI

	"MDPDF_ADDR":             func(c *Config, v string) error { c.Server.Addr = v; return nil },
	"MDPDF_READ_TIMEOUT":     durationSetter(func(c *Config) *time.Duration { return &c.Server.ReadTimeout }),
	"MDPDF_WRITE_TIMEOUT":    durationSetter(func(c *Config) *time.Duration { return &c.Server.WriteTimeout }),
	"MDPDF_SHUTDOWN_TIMEOUT": durationSetter(func(c *Config) *time.Duration { return &c.Server.ShutdownTimeout }),
	"MDPDF_CORS_ORIGINS": func(c *Config, v string) error {
		c.Server.CORSOrigins = splitList(v)
		return nil
	},

	"MDPDF_UPLOAD_DIR": func(c *Config, v string) error { c.Upload.Dir = v; return nil },
	"MDPDF_MAX_BYTES": func(c *Config, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		c.Upload.MaxBytes = n
		return nil
	},

	"MDPDF_TIMEOUT": durationSetter(func(c *Config) *time.Duration { return &c.Render.Timeout }),
	"MDPDF_STYLE":   func(c *Config, v string) error { c.Render.Style = v; return nil },
	"MDPDF_HIGHLIGHT": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Render.Highlight = b
		return nil
	},
	"MDPDF_PAGE_SIZE": func(c *Config, v string) error { c.Render.PageSize = v; return nil },
	"MDPDF_MARGIN_PX": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.Render.MarginPx = f
		return nil
	},
	"MDPDF_WORKERS": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Render.Workers = n
		return nil
	},

	"MDPDF_EXTRACT_BACKEND": func(c *Config, v string) error { c.Extract.Backend = v; return nil },
	"MDPDF_ASSETS_DIR":      func(c *Config, v string) error { c.Assets.Dir = v; return nil },
	"MDPDF_LOG_LEVEL":       func(c *Config, v string) error { c.Log.Level = v; return nil },
	"MDPDF_LOG_FORMAT":      func(c *Config, v string) error { c.Log.Format = v; return nil },
}

func durationSetter(field func(*Config) *time.Duration) envSetter {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ApplyEnv overlays MDPDF_* variables from environ (os.Environ format) onto
// the config. Empty values are ignored. Unknown names and unparsable values
// do not fail; they are returned as warnings for the caller to log.
func (c *Config) ApplyEnv(environ []string) []string {
	var warnings []string
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		set, known := envVars[name]
		if !known {
			warnings = append(warnings, fmt.Sprintf("unknown environment variable %s (typo?)", name))
			continue
		}
		if value == "" {
			continue
		}
		if err := set(c, value); err != nil {
			warnings = append(warnings, fmt.Sprintf("ignoring %s=%q: %v", name, value, err))
		}
	}
	return warnings
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set are not overridden. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// LookupEnv returns the value of name from environ.
func LookupEnv(environ []string, name string) string {
	prefix := name + "="
	value := ""
	for _, kv := range environ {
		if strings.HasPrefix(kv, prefix) {
			value = kv[len(prefix):]
		}
	}
	return value
}
