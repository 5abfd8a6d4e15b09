// Package theme maps theme names to functions that turn a resume into a
// standalone HTML document.
package theme

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownTheme = errors.New("unknown theme")
	ErrEmptyName    = errors.New("theme name cannot be empty")
)

// RenderFunc renders a resume into a complete HTML page.
type RenderFunc func(resume map[string]interface{}) (string, error)

// Registry is filled at startup and read-only afterwards; Resolve is safe for
// concurrent use once registration is done.
type Registry struct {
	themes map[string]RenderFunc
	def    string
}

func NewRegistry() *Registry {
	return &Registry{themes: map[string]RenderFunc{}}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds or replaces a theme. The first registered theme becomes the
// default until SetDefault is called.
func (r *Registry) Register(name string, fn RenderFunc) error {
	key := normalize(name)
	if key == "" {
		return ErrEmptyName
	}
	if fn == nil {
		return fmt.Errorf("theme %q: nil render func", name)
	}
	r.themes[key] = fn
	if r.def == "" {
		r.def = key
	}
	return nil
}

func (r *Registry) SetDefault(name string) error {
	key := normalize(name)
	if _, ok := r.themes[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	r.def = key
	return nil
}

func (r *Registry) Default() string { return r.def }

func (r *Registry) Has(name string) bool {
	_, ok := r.themes[normalize(name)]
	return ok
}

// Resolve looks name up case-insensitively. Unknown or empty names resolve to
// the default theme; matched reports whether the requested name was found.
func (r *Registry) Resolve(name string) (resolved string, fn RenderFunc, matched bool) {
	key := normalize(name)
	if fn, ok := r.themes[key]; ok {
		return key, fn, true
	}
	return r.def, r.themes[r.def], false
}

// Names lists registered themes in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.themes))
	for k := range r.themes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
