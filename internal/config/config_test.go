package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func serverFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	f := NewFlags(fs).AddServerFlags()
	require.NoError(t, fs.Parse(args))
	return f
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, "0.0.0.0:3000", c.Addr())
	assert.Equal(t, 10<<20, c.Server.BodyLimit)
	assert.Equal(t, 60*time.Second, c.Render.Timeout.Duration)
	assert.Equal(t, "schema", c.Validation.Mode)
	assert.True(t, c.Chrome.NoSandbox)
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: 8080
chrome:
  path: /usr/bin/chromium
  flags: ["--lang=en"]
render:
  timeout: 90s
validation:
  mode: basic
`)
	c := Default()
	require.NoError(t, c.LoadFile(path))
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, DefaultHost, c.Server.Host)
	assert.Equal(t, "/usr/bin/chromium", c.Chrome.Path)
	assert.Equal(t, []string{"--lang=en"}, c.Chrome.Flags)
	assert.Equal(t, 90*time.Second, c.Render.Timeout.Duration)
	assert.Equal(t, "basic", c.Validation.Mode)
}

func TestLoadFile_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[server]
port = 9090
cors_allow_origins = "https://example.com"

[themes]
default = "flat"

[log]
format = "json"
`)
	c := Default()
	require.NoError(t, c.LoadFile(path))
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "https://example.com", c.Server.CORSAllowOrigins)
	assert.Equal(t, "flat", c.Themes.Default)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, 60*time.Second, c.Render.Timeout.Duration)
}

func TestLoadFile_Errors(t *testing.T) {
	c := Default()
	assert.ErrorIs(t, c.LoadFile(writeFile(t, "config.ini", "port=1")), ErrUnsupportedFormat)
	assert.Error(t, c.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, c.LoadFile(writeFile(t, "bad.yaml", "render:\n  timeout: soon\n")))
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(env(map[string]string{
		"PORT":                      "4000",
		"PUPPETEER_EXECUTABLE_PATH": "/opt/chrome",
		"CHROME_NO_SANDBOX":         "false",
		"CHROME_FLAGS":              "--lang=en, --hide-scrollbars,",
		"MAX_CONCURRENT_RENDERS":    "3",
		"RENDER_TIMEOUT":            "2m",
		"VALIDATION_MODE":           "basic",
	}))
	require.NoError(t, err)
	assert.Equal(t, 4000, c.Server.Port)
	assert.Equal(t, "/opt/chrome", c.Chrome.Path)
	assert.False(t, c.Chrome.NoSandbox)
	assert.Equal(t, []string{"--lang=en", "--hide-scrollbars"}, c.Chrome.Flags)
	assert.Equal(t, 3, c.Render.MaxConcurrent)
	assert.Equal(t, 2*time.Minute, c.Render.Timeout.Duration)
	assert.Equal(t, "basic", c.Validation.Mode)
}

func TestApplyEnv_ChromePathWinsOverAlias(t *testing.T) {
	c := Default()
	require.NoError(t, c.ApplyEnv(env(map[string]string{
		"PUPPETEER_EXECUTABLE_PATH": "/opt/puppeteer",
		"CHROME_PATH":               "/opt/chrome",
	})))
	assert.Equal(t, "/opt/chrome", c.Chrome.Path)
}

func TestApplyEnv_Errors(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(env(map[string]string{
		"PORT":              "eighty",
		"RENDER_TIMEOUT":    "later",
		"CHROME_NO_SANDBOX": "maybe",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "RENDER_TIMEOUT")
	assert.Contains(t, err.Error(), "CHROME_NO_SANDBOX")
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Server.Port = 0
	c.Validation.Mode = "strict"
	c.Log.Level = "chatty"
	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "port 0")
	assert.Contains(t, err.Error(), "strict")
	assert.Contains(t, err.Error(), "chatty")
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: 5000
  host: 127.0.0.1
themes:
  default: flat
log:
  level: debug
`)
	lookup := env(map[string]string{
		EnvConfigFile: path,
		"PORT":        "6000",
		"LOG_LEVEL":   "warn",
	})

	c, err := Load(serverFlags(t, "--port", "7000"), lookup)
	require.NoError(t, err)
	// flag beats env beats file beats default
	assert.Equal(t, 7000, c.Server.Port)
	assert.Equal(t, "warn", c.Log.Level)
	assert.Equal(t, "127.0.0.1", c.Server.Host)
	assert.Equal(t, "flat", c.Themes.Default)
	assert.Equal(t, DefaultBodyLimit, c.Server.BodyLimit)
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	c, err := Load(serverFlags(t), env(map[string]string{"CHROME_NO_SANDBOX": "false", "PORT": "4100"}))
	require.NoError(t, err)
	assert.False(t, c.Chrome.NoSandbox)
	assert.Equal(t, 4100, c.Server.Port)
}

func TestLoad_ConfigFlagBeatsEnvPath(t *testing.T) {
	flagPath := writeFile(t, "flag.toml", "[server]\nport = 7100\n")
	c, err := Load(
		serverFlags(t, "--config", flagPath),
		env(map[string]string{EnvConfigFile: filepath.Join(t.TempDir(), "absent.yaml")}),
	)
	require.NoError(t, err)
	assert.Equal(t, 7100, c.Server.Port)
}

func TestLoad_FlagErrors(t *testing.T) {
	_, err := Load(serverFlags(t, "--render-timeout", "soon"), env(nil))
	assert.Error(t, err)

	_, err = Load(serverFlags(t, "--validation", "lenient"), env(nil))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestFlags_CommonOnly(t *testing.T) {
	fs := pflag.NewFlagSet("cli", pflag.ContinueOnError)
	f := NewFlags(fs)
	require.NoError(t, fs.Parse([]string{"--themes-dir", "/themes", "--chrome-path", "/bin/chrome"}))
	assert.Nil(t, fs.Lookup("port"))

	c := Default()
	require.NoError(t, f.Apply(c))
	assert.Equal(t, "/themes", c.Themes.Dir)
	assert.Equal(t, "/bin/chrome", c.Chrome.Path)
}
