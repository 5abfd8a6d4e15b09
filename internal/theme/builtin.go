package theme

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed templates/*.html
var builtinTemplates embed.FS

// DefaultTheme is used when no theme, or an unknown one, is requested.
const DefaultTheme = "elegant"

// NewTemplateTheme parses src as an html/template with Funcs and returns a
// RenderFunc executing it against the resume map. Known sections are coerced
// to their JSON Resume shapes first, so documents that skipped validation
// still render.
func NewTemplateTheme(name, src string) (RenderFunc, error) {
	tpl, err := template.New(name).Funcs(Funcs()).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse theme %q: %w", name, err)
	}
	return func(resume map[string]interface{}) (string, error) {
		var buf bytes.Buffer
		if err := tpl.Execute(&buf, conform(resume)); err != nil {
			return "", fmt.Errorf("execute theme %q: %w", name, err)
		}
		return buf.String(), nil
	}, nil
}

// Builtin returns a registry holding the embedded themes with elegant as the
// default.
func Builtin() (*Registry, error) {
	r := NewRegistry()
	if _, err := loadFS(r, builtinTemplates, "templates"); err != nil {
		return nil, err
	}
	if err := r.SetDefault(DefaultTheme); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadDir registers every *.html file in dir under its file stem, replacing
// built-in themes of the same name. It returns the registered names.
func LoadDir(r *Registry, dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("themes dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("themes dir: %s is not a directory", dir)
	}
	return loadFS(r, os.DirFS(filepath.Clean(dir)), ".")
}

func loadFS(r *Registry, fsys fs.FS, dir string) ([]string, error) {
	matches, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		src, err := fs.ReadFile(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("read theme %s: %w", m, err)
		}
		name := strings.TrimSuffix(path.Base(m), ".html")
		fn, err := NewTemplateTheme(name, string(src))
		if err != nil {
			return nil, err
		}
		if err := r.Register(name, fn); err != nil {
			return nil, err
		}
		names = append(names, normalize(name))
	}
	return names, nil
}
