package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct{ calls int }

func (f *fakeRenderer) RenderFileToPDF(context.Context, string) ([]byte, error) {
	f.calls++
	return []byte("%PDF-1.4 cli"), nil
}

const validJSON = `{"basics":{"name":"Ada Lovelace","email":"ada@example.com"}}`

func execute(t *testing.T, r *fakeRenderer, stdin string, args ...string) (string, error) {
	t.Helper()
	opts := Options{Env: func(string) (string, bool) { return "", false }}
	if r != nil {
		opts.Renderer = r
	}
	cmd := NewRootCommand(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, nil, "", "validate", writeDoc(t, "resume.json", validJSON))
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)

	out, err = execute(t, nil, `{"basics":{"name":"Ada"}}`, "validate", "-")
	assert.ErrorIs(t, err, ErrInvalidResume)
	assert.Contains(t, out, "basics.email")
}

func TestValidateCommand_JSON(t *testing.T) {
	out, err := execute(t, nil, validJSON, "validate", "--json", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"valid": true`)
}

func TestValidateCommand_YAML(t *testing.T) {
	doc := "basics:\n  name: Ada Lovelace\n  email: ada@example.com\nwork:\n  - name: Analytical Engines\n    startDate: \"1842-01\"\n"
	out, err := execute(t, nil, "", "validate", writeDoc(t, "resume.yaml", doc))
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)
}

func TestValidateCommand_BadInput(t *testing.T) {
	_, err := execute(t, nil, "", "validate", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidResume)

	_, err = execute(t, nil, "{", "validate", "-")
	assert.Error(t, err)
}

func TestRenderCommand(t *testing.T) {
	r := &fakeRenderer{}
	output := filepath.Join(t.TempDir(), "out.pdf")
	out, err := execute(t, r, validJSON, "render", "-", "-o", output, "-t", "flat")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+output)
	assert.Equal(t, 1, r.calls)

	pdf, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 cli", string(pdf))
}

func TestRenderCommand_InvalidSkipsRenderer(t *testing.T) {
	r := &fakeRenderer{}
	_, err := execute(t, r, `{"basics":{}}`, "render", "-", "-o", filepath.Join(t.TempDir(), "out.pdf"))
	assert.ErrorIs(t, err, ErrInvalidResume)
	assert.Equal(t, 0, r.calls)
}

func TestPreviewCommand(t *testing.T) {
	out, err := execute(t, nil, `{"resume":`+validJSON+`}`, "preview", "-", "-t", "kendall")
	require.NoError(t, err)
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "Ada Lovelace")

	path := filepath.Join(t.TempDir(), "resume.html")
	out, err = execute(t, nil, validJSON, "preview", "-", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "theme elegant")
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestThemesCommand(t *testing.T) {
	out, err := execute(t, nil, "", "themes")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines, "elegant (default)")
	assert.Contains(t, lines, "flat")
	assert.Contains(t, lines, "kendall")
	assert.Contains(t, lines, "paper-plus-plus")
}

func TestThemesCommand_ExtraDirAndDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mono.html"), []byte(`<html>{{.basics.name}}</html>`), 0o600))

	out, err := execute(t, nil, "", "themes", "--themes-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "mono\n")
}
