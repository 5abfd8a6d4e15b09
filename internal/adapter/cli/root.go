// Package cli implements resumectl, the operator command line for
// validating, previewing and rendering resumes without the HTTP server.
package cli

import (
	"errors"
	"fmt"

	"resume-api/internal/app"
	"resume-api/internal/config"
	"resume-api/internal/usecase"
	"resume-api/pkg/infrastructure"

	"github.com/spf13/cobra"
)

// ErrInvalidResume is returned after the validation errors have been printed.
var ErrInvalidResume = errors.New("resume is invalid")

type Options struct {
	// Renderer replaces the chromedp renderer; nil uses Chrome.
	Renderer usecase.Renderer
	// Env replaces os.LookupEnv.
	Env config.LookupFunc
}

type state struct {
	opts  Options
	flags *config.Flags
}

// NewRootCommand builds the resumectl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	rt := &state{opts: opts}
	root := &cobra.Command{
		Use:           "resumectl",
		Short:         "Validate, preview and render JSON Resume documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rt.flags = config.NewFlags(root.PersistentFlags())

	root.AddCommand(
		newValidateCommand(rt),
		newRenderCommand(rt),
		newPreviewCommand(rt),
		newThemesCommand(rt),
	)
	return root
}

// components loads configuration and builds the shared components. Logs go
// to the command's stderr.
func (rt *state) components(cmd *cobra.Command) (*app.Components, error) {
	cfg, err := config.Load(rt.flags, rt.opts.Env)
	if err != nil {
		return nil, err
	}
	if !cmd.Flags().Changed("log-level") {
		if _, set := lookup(rt.opts.Env, "LOG_LEVEL"); !set {
			cfg.Log.Level = "warn"
		}
	}
	logger, err := infrastructure.NewLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	c, err := app.Build(cfg, rt.opts.Renderer, logger)
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	return c, nil
}

func lookup(env config.LookupFunc, key string) (string, bool) {
	if env == nil {
		return "", false
	}
	return env(key)
}
