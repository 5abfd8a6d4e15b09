// Package config assembles service settings from defaults, an optional YAML
// or TOML file, environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"resume-api/internal/model"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPort      = 3000
	DefaultHost      = "0.0.0.0"
	DefaultBodyLimit = 10 << 20
	DefaultVersion   = "1.0.0"
	DefaultTheme     = "elegant"

	// maxFileSize caps the config file read into memory.
	maxFileSize = 1 << 20
)

var (
	ErrUnsupportedFormat = errors.New("unsupported config file format")
	ErrFileTooLarge      = errors.New("config file too large")
	ErrInvalid           = errors.New("invalid configuration")
)

// Duration is a time.Duration written as "60s" or "1m30s" in config files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Config struct {
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Chrome     ChromeConfig     `yaml:"chrome" toml:"chrome"`
	Validation ValidationConfig `yaml:"validation" toml:"validation"`
	Themes     ThemesConfig     `yaml:"themes" toml:"themes"`
	Render     RenderConfig     `yaml:"render" toml:"render"`
	Log        LogConfig        `yaml:"log" toml:"log"`
}

type ServerConfig struct {
	Host             string   `yaml:"host" toml:"host"`
	Port             int      `yaml:"port" toml:"port"`
	BodyLimit        int      `yaml:"body_limit" toml:"body_limit"`
	CORSAllowOrigins string   `yaml:"cors_allow_origins" toml:"cors_allow_origins"`
	ShutdownTimeout  Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	Version          string   `yaml:"version" toml:"version"`
}

type ChromeConfig struct {
	Path        string   `yaml:"path" toml:"path"`
	NoSandbox   bool     `yaml:"no_sandbox" toml:"no_sandbox"`
	Flags       []string `yaml:"flags" toml:"flags"`
	IdleTimeout Duration `yaml:"idle_timeout" toml:"idle_timeout"`
}

type ValidationConfig struct {
	Mode string `yaml:"mode" toml:"mode"`
}

type ThemesConfig struct {
	Default string `yaml:"default" toml:"default"`
	Dir     string `yaml:"dir" toml:"dir"`
}

type RenderConfig struct {
	// MaxConcurrent <= 0 sizes the limiter from GOMAXPROCS.
	MaxConcurrent int      `yaml:"max_concurrent" toml:"max_concurrent"`
	Timeout       Duration `yaml:"timeout" toml:"timeout"`
	TmpDir        string   `yaml:"tmp_dir" toml:"tmp_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             DefaultHost,
			Port:             DefaultPort,
			BodyLimit:        DefaultBodyLimit,
			CORSAllowOrigins: "*",
			ShutdownTimeout:  Duration{10 * time.Second},
			Version:          DefaultVersion,
		},
		Chrome: ChromeConfig{
			NoSandbox:   true,
			IdleTimeout: Duration{10 * time.Second},
		},
		Validation: ValidationConfig{Mode: string(model.ModeSchema)},
		Themes:     ThemesConfig{Default: DefaultTheme},
		Render:     RenderConfig{Timeout: Duration{60 * time.Second}},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LoadFile merges the file at path into c. The format follows the extension.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if len(data) > maxFileSize {
		return fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, path, len(data))
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides c with any set environment variables.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *Duration) {
		if v, ok := lookup(key); ok && v != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}

	str("HOST", &c.Server.Host)
	num("PORT", &c.Server.Port)
	num("BODY_LIMIT", &c.Server.BodyLimit)
	str("CORS_ALLOW_ORIGINS", &c.Server.CORSAllowOrigins)

	str("PUPPETEER_EXECUTABLE_PATH", &c.Chrome.Path)
	str("CHROME_PATH", &c.Chrome.Path)
	if v, ok := lookup("CHROME_NO_SANDBOX"); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("CHROME_NO_SANDBOX: %w", err))
		} else {
			c.Chrome.NoSandbox = b
		}
	}
	if v, ok := lookup("CHROME_FLAGS"); ok && v != "" {
		c.Chrome.Flags = splitList(v)
	}

	str("VALIDATION_MODE", &c.Validation.Mode)
	str("DEFAULT_THEME", &c.Themes.Default)
	str("THEMES_DIR", &c.Themes.Dir)
	num("MAX_CONCURRENT_RENDERS", &c.Render.MaxConcurrent)
	dur("RENDER_TIMEOUT", &c.Render.Timeout)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	return errors.Join(errs...)
}

// Validate reports every setting that cannot be used.
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("port %d out of range", c.Server.Port))
	}
	if c.Server.BodyLimit <= 0 {
		problems = append(problems, "body limit must be positive")
	}
	if c.Render.Timeout.Duration <= 0 {
		problems = append(problems, "render timeout must be positive")
	}
	if _, err := model.ParseMode(c.Validation.Mode); err != nil {
		problems = append(problems, err.Error())
	}
	if strings.TrimSpace(c.Themes.Default) == "" {
		problems = append(problems, "default theme is empty")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log format %q", c.Log.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
