// Package usecase turns validated resumes into PDFs.
package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"resume-api/internal/domain"
	"resume-api/internal/model"
	"resume-api/internal/theme"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultRenderTimeout bounds one Generate call, retry included.
	DefaultRenderTimeout = 60 * time.Second

	minRenderLimit = 1
	maxRenderLimit = 8
	cpuDivisor     = 2

	htmlFileName = "resume.html"
)

var (
	ErrThemeRender = errors.New("theme render failed")
	ErrInvalidPDF  = errors.New("renderer output is not a PDF")
	ErrNoTheme     = errors.New("no theme registered")
)

var pdfMagic = []byte("%PDF")

// Renderer prints an HTML file on disk to PDF bytes.
type Renderer interface {
	RenderFileToPDF(ctx context.Context, htmlPath string) ([]byte, error)
}

// Themes resolves theme names; *theme.Registry satisfies it.
type Themes interface {
	Resolve(name string) (resolved string, fn theme.RenderFunc, matched bool)
	Default() string
}

type Options struct {
	// MaxConcurrent caps simultaneous renders; <= 0 picks a value from GOMAXPROCS.
	MaxConcurrent int
	// Timeout applies to each Generate call; <= 0 means DefaultRenderTimeout.
	Timeout time.Duration
	// TmpDir holds the per-render scratch directories; empty means os.TempDir.
	TmpDir string
	Logger logrus.FieldLogger
}

type Generator struct {
	validator model.Validator
	themes    Themes
	renderer  Renderer
	limiter   *semaphore.Weighted
	limit     int
	timeout   time.Duration
	tmpDir    string
	log       logrus.FieldLogger
}

func NewGenerator(v model.Validator, themes Themes, r Renderer, opts Options) *Generator {
	limit := ResolveRenderLimit(opts.MaxConcurrent)
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Generator{
		validator: v,
		themes:    themes,
		renderer:  r,
		limiter:   semaphore.NewWeighted(int64(limit)),
		limit:     limit,
		timeout:   timeout,
		tmpDir:    opts.TmpDir,
		log:       logger,
	}
}

// ResolveRenderLimit returns n when positive, otherwise half of GOMAXPROCS
// clamped to [1, 8].
func ResolveRenderLimit(n int) int {
	if n > 0 {
		return n
	}
	n = runtime.GOMAXPROCS(0) / cpuDivisor
	if n < minRenderLimit {
		return minRenderLimit
	}
	if n > maxRenderLimit {
		return maxRenderLimit
	}
	return n
}

// RenderLimit is the number of renders allowed to run at once.
func (g *Generator) RenderLimit() int { return g.limit }

func (g *Generator) Validate(doc interface{}) (model.Result, error) {
	return g.validator.Validate(doc)
}

// Generate renders req to PDF. When the resolved theme fails and is not the
// default theme, one more attempt is made with the default; if that also
// fails the first error is returned.
func (g *Generator) Generate(ctx context.Context, req *domain.RenderRequest) ([]byte, error) {
	name, fn, matched := g.themes.Resolve(req.Theme)
	if fn == nil {
		return nil, ErrNoTheme
	}
	logger := g.log.WithFields(logrus.Fields{
		"request_id": req.ID.String(),
		"theme":      name,
	})
	if req.Theme != "" && !matched {
		logger.WithField("requested", req.Theme).Warn("unknown theme, using default")
	}

	if err := g.limiter.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for render slot: %w", err)
	}
	defer g.limiter.Release(1)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	pdf, err := g.render(ctx, req, name, fn, logger)
	if err == nil {
		logger.WithField("duration_ms", time.Since(start).Milliseconds()).Info("resume rendered")
		return pdf, nil
	}

	def := g.themes.Default()
	if name == def {
		return nil, err
	}
	logger.WithError(err).Warn("render failed, retrying with default theme")
	_, defFn, _ := g.themes.Resolve(def)
	pdf, retryErr := g.render(ctx, req, def, defFn, logger)
	if retryErr != nil {
		logger.WithError(retryErr).Error("default theme render failed")
		return nil, err
	}
	logger.WithField("fallback", def).Info("resume rendered")
	return pdf, nil
}

func (g *Generator) render(ctx context.Context, req *domain.RenderRequest, name string, fn theme.RenderFunc, logger logrus.FieldLogger) ([]byte, error) {
	html, err := fn(req.Resume)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrThemeRender, err)
	}

	dir, err := os.MkdirTemp(g.tmpDir, req.WorkDirPattern())
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.WithError(err).WithField("dir", dir).Warn("failed to remove work dir")
		}
	}()

	htmlPath := filepath.Join(dir, htmlFileName)
	if err := os.WriteFile(htmlPath, []byte(html), 0o600); err != nil {
		return nil, fmt.Errorf("write html: %w", err)
	}

	pdf, err := g.renderer.RenderFileToPDF(ctx, htmlPath)
	if err != nil {
		var re *domain.RenderError
		if errors.As(err, &re) && re.Theme == "" {
			re.Theme = name
		}
		return nil, err
	}
	if !bytes.HasPrefix(pdf, pdfMagic) {
		return nil, fmt.Errorf("%w (theme %s, %d bytes)", ErrInvalidPDF, name, len(pdf))
	}
	return pdf, nil
}

// Preview returns the themed HTML for req without starting a browser, along
// with the theme that was used.
func (g *Generator) Preview(req *domain.RenderRequest) (string, string, error) {
	name, fn, _ := g.themes.Resolve(req.Theme)
	if fn == nil {
		return "", "", ErrNoTheme
	}
	html, err := fn(req.Resume)
	if err != nil {
		return "", name, fmt.Errorf("%w: %w", ErrThemeRender, err)
	}
	return html, name, nil
}
