package infrastructure

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"resume-api/internal/domain"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// A4 with 15mm margins on every side.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
	marginMM       = 15.0
	mmPerInch      = 25.4

	defaultIdleTimeout = 10 * time.Second
	maxCapturedOutput  = 16 << 10
)

// ChromeOptions configures the headless browser launched per render.
type ChromeOptions struct {
	// ExecPath overrides chromedp's browser lookup.
	ExecPath string
	// NoSandbox disables the Chrome sandbox, needed in most containers.
	NoSandbox bool
	// ExtraFlags are additional switches such as "--lang=en" or "font-render-hinting=none".
	ExtraFlags []string
	// IdleTimeout bounds the wait for the networkIdle lifecycle event.
	IdleTimeout time.Duration
}

// ChromedpRenderer prints local HTML files to PDF. Every call starts its own
// browser and kills it before returning.
type ChromedpRenderer struct {
	opts ChromeOptions
}

func NewChromedpRenderer(opts ChromeOptions) *ChromedpRenderer {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	return &ChromedpRenderer{opts: opts}
}

func (r *ChromedpRenderer) allocatorOptions(output *headBuffer) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.CombinedOutput(output),
	)
	if r.opts.NoSandbox {
		opts = append(opts,
			chromedp.NoSandbox,
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}
	if r.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.opts.ExecPath))
	}
	for _, f := range r.opts.ExtraFlags {
		if name, value, ok := parseFlag(f); ok {
			opts = append(opts, chromedp.Flag(name, value))
		}
	}
	return opts
}

// RenderFileToPDF loads htmlPath, waits for the network to go idle and prints
// it. On failure the error is a *domain.RenderError carrying the browser's
// process output (Stderr) and the page console (Stdout).
func (r *ChromedpRenderer) RenderFileToPDF(ctx context.Context, htmlPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stderr := newHeadBuffer(maxCapturedOutput)
	console := newHeadBuffer(maxCapturedOutput)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions(stderr)...)
	defer cancelAlloc()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	idle := make(chan struct{})
	var once sync.Once
	navigating := false
	chromedp.ListenTarget(cctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *page.EventLifecycleEvent:
			// ignore the about:blank lifecycle that precedes our navigation
			if e.Name == "init" {
				navigating = true
			}
			if e.Name == "networkIdle" && navigating {
				once.Do(func() { close(idle) })
			}
		case *runtime.EventConsoleAPICalled:
			console.WriteLine(formatConsole(e))
		case *runtime.EventExceptionThrown:
			if e.ExceptionDetails != nil {
				console.WriteLine("exception: " + e.ExceptionDetails.Text)
			}
		}
	})

	var pdf []byte
	err := chromedp.Run(cctx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.Navigate(fileURL(htmlPath)),
		waitNetworkIdle(idle, r.opts.IdleTimeout),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = printParams().Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &domain.RenderError{
			Stdout: console.String(),
			Stderr: stderr.String(),
			Err:    err,
		}
	}
	return pdf, nil
}

func printParams() *page.PrintToPDFParams {
	margin := marginMM / mmPerInch
	return page.PrintToPDF().
		WithPaperWidth(a4WidthInches).
		WithPaperHeight(a4HeightInches).
		WithMarginTop(margin).
		WithMarginRight(margin).
		WithMarginBottom(margin).
		WithMarginLeft(margin).
		WithPrintBackground(true).
		WithPreferCSSPageSize(true)
}

// waitNetworkIdle blocks until idle is closed. Hitting the timeout is not an
// error: whatever has loaded by then is printed.
func waitNetworkIdle(idle <-chan struct{}, timeout time.Duration) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		t := time.NewTimer(timeout)
		defer t.Stop()
		select {
		case <-idle:
			return nil
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func fileURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// parseFlag accepts "--name=value", "name=value" or "--name".
func parseFlag(s string) (string, interface{}, bool) {
	s = strings.TrimLeft(strings.TrimSpace(s), "-")
	if s == "" {
		return "", nil, false
	}
	name, value, found := strings.Cut(s, "=")
	if !found {
		return name, true, true
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return name, b, true
	}
	return name, value, true
}

func formatConsole(e *runtime.EventConsoleAPICalled) string {
	parts := make([]string, 0, len(e.Args))
	for _, a := range e.Args {
		switch {
		case len(a.Value) > 0:
			v := string(a.Value)
			if s, err := strconv.Unquote(v); err == nil {
				v = s
			}
			parts = append(parts, v)
		case a.Description != "":
			parts = append(parts, a.Description)
		}
	}
	return fmt.Sprintf("console.%s: %s", e.Type, strings.Join(parts, " "))
}
