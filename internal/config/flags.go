package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// EnvConfigFile names the variable holding the config file path.
const EnvConfigFile = "RESUME_API_CONFIG"

// Flags binds command line overrides onto a pflag.FlagSet. Only flags the
// user actually set are applied, so unset flags never mask env or file
// values.
type Flags struct {
	fs *pflag.FlagSet

	configFile  string
	chromePath  string
	validation  string
	themesDir   string
	theme       string
	host        string
	port        int
	maxRenders  int
	timeout     string
	logLevel    string
	logFormat   string
	noSandbox   bool
	chromeFlags []string
}

// NewFlags registers the options shared by every binary.
func NewFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVarP(&f.configFile, "config", "c", "", "config file (.yaml, .yml or .toml)")
	fs.StringVar(&f.chromePath, "chrome-path", "", "path to the Chrome/Chromium executable")
	fs.StringVar(&f.validation, "validation", "", "validation mode: schema or basic")
	fs.StringVar(&f.themesDir, "themes-dir", "", "directory with extra *.html themes")
	fs.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	return f
}

// AddServerFlags registers the HTTP server options.
func (f *Flags) AddServerFlags() *Flags {
	f.fs.StringVar(&f.host, "host", "", "listen host")
	f.fs.IntVarP(&f.port, "port", "p", 0, "listen port")
	f.fs.StringVar(&f.theme, "default-theme", "", "theme used when none or an unknown one is requested")
	f.fs.IntVar(&f.maxRenders, "max-renders", 0, "maximum concurrent renders (0 = auto)")
	f.fs.StringVar(&f.timeout, "render-timeout", "", "timeout for one render, e.g. 60s")
	f.fs.StringVar(&f.logFormat, "log-format", "", "log format: text or json")
	f.fs.BoolVar(&f.noSandbox, "no-sandbox", true, "run Chrome without its sandbox")
	f.fs.StringSliceVar(&f.chromeFlags, "chrome-flag", nil, "extra Chrome switch, repeatable")
	return f
}

// ConfigFile returns the --config value, falling back to RESUME_API_CONFIG.
func (f *Flags) ConfigFile(lookup LookupFunc) string {
	if f.configFile != "" {
		return f.configFile
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, _ := lookup(EnvConfigFile)
	return v
}

// Apply copies the flags the user set onto c.
func (f *Flags) Apply(c *Config) error {
	changed := func(name string) bool {
		fl := f.fs.Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("chrome-path") {
		c.Chrome.Path = f.chromePath
	}
	if changed("validation") {
		c.Validation.Mode = f.validation
	}
	if changed("themes-dir") {
		c.Themes.Dir = f.themesDir
	}
	if changed("log-level") {
		c.Log.Level = f.logLevel
	}
	if changed("host") {
		c.Server.Host = f.host
	}
	if changed("port") {
		c.Server.Port = f.port
	}
	if changed("default-theme") {
		c.Themes.Default = f.theme
	}
	if changed("max-renders") {
		c.Render.MaxConcurrent = f.maxRenders
	}
	if changed("render-timeout") {
		if err := c.Render.Timeout.UnmarshalText([]byte(f.timeout)); err != nil {
			return fmt.Errorf("--render-timeout: %w", err)
		}
	}
	if changed("log-format") {
		c.Log.Format = f.logFormat
	}
	if changed("no-sandbox") {
		c.Chrome.NoSandbox = f.noSandbox
	}
	if changed("chrome-flag") {
		c.Chrome.Flags = f.chromeFlags
	}
	return nil
}

// Load builds the effective configuration: defaults, then the config file,
// then the environment, then flags. The result is validated.
func Load(f *Flags, lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	c := Default()
	if path := f.ConfigFile(lookup); path != "" {
		if err := c.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := c.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	if err := f.Apply(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
