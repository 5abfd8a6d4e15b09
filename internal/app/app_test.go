package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"resume-api/internal/config"
	"resume-api/internal/domain"
	"resume-api/internal/model"
	"resume-api/internal/theme"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pdfRenderer struct{ calls int }

func (r *pdfRenderer) RenderFileToPDF(context.Context, string) ([]byte, error) {
	r.calls++
	return []byte("%PDF-1.4"), nil
}

func TestBuild_Defaults(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	cfg := config.Default()
	cfg.Render.TmpDir = t.TempDir()
	r := &pdfRenderer{}

	c, err := Build(cfg, r, logger)
	require.NoError(t, err)
	assert.Equal(t, model.ModeSchema, c.Validator.Mode())
	assert.Equal(t, theme.DefaultTheme, c.Themes.Default())

	resume := map[string]interface{}{"basics": map[string]interface{}{"name": "Ada", "email": "ada@example.com"}}
	pdf, err := c.Generator.Generate(context.Background(), domain.NewRenderRequest(resume, "kendall"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))
	assert.Equal(t, 1, r.calls)
}

func TestBuild_ThemesDirAndDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mono.html"), []byte(`<html>{{.basics.name}}</html>`), 0o600))

	logger, _ := logtest.NewNullLogger()
	cfg := config.Default()
	cfg.Themes.Dir = dir
	cfg.Themes.Default = "mono"
	cfg.Validation.Mode = "basic"

	c, err := Build(cfg, &pdfRenderer{}, logger)
	require.NoError(t, err)
	assert.Equal(t, "mono", c.Themes.Default())
	assert.Equal(t, model.ModeBasic, c.Validator.Mode())
}

func TestBuild_Errors(t *testing.T) {
	logger, _ := logtest.NewNullLogger()

	cfg := config.Default()
	cfg.Themes.Default = "missing"
	_, err := Build(cfg, &pdfRenderer{}, logger)
	assert.ErrorIs(t, err, theme.ErrUnknownTheme)

	cfg = config.Default()
	cfg.Validation.Mode = "strict"
	_, err = Build(cfg, &pdfRenderer{}, logger)
	assert.ErrorIs(t, err, model.ErrUnknownMode)

	cfg = config.Default()
	cfg.Themes.Dir = filepath.Join(t.TempDir(), "absent")
	_, err = Build(cfg, &pdfRenderer{}, logger)
	assert.Error(t, err)
}

func TestBuild_ChromedpRendererByDefault(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	c, err := Build(config.Default(), nil, logger)
	require.NoError(t, err)
	assert.NotNil(t, c.Generator)
}
