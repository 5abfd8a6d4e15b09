// Package app wires configuration into the validator, theme registry and
// generator shared by the server and the CLI.
package app

import (
	"fmt"

	"resume-api/internal/config"
	"resume-api/internal/model"
	"resume-api/internal/theme"
	"resume-api/internal/usecase"
	"resume-api/pkg/infrastructure"

	"github.com/sirupsen/logrus"
)

type Components struct {
	Validator *model.ResumeValidator
	Themes    *theme.Registry
	Generator *usecase.Generator
}

// Build constructs every component from cfg. renderer may be nil, in which
// case a chromedp renderer is created from cfg.Chrome.
func Build(cfg *config.Config, renderer usecase.Renderer, logger logrus.FieldLogger) (*Components, error) {
	mode, err := model.ParseMode(cfg.Validation.Mode)
	if err != nil {
		return nil, err
	}
	validator, err := model.NewValidator(mode)
	if err != nil {
		return nil, err
	}

	themes, err := theme.Builtin()
	if err != nil {
		return nil, fmt.Errorf("builtin themes: %w", err)
	}
	if cfg.Themes.Dir != "" {
		names, err := theme.LoadDir(themes, cfg.Themes.Dir)
		if err != nil {
			return nil, err
		}
		logger.WithField("themes", names).WithField("dir", cfg.Themes.Dir).Info("loaded extra themes")
	}
	if err := themes.SetDefault(cfg.Themes.Default); err != nil {
		return nil, fmt.Errorf("default theme: %w", err)
	}

	if renderer == nil {
		renderer = infrastructure.NewChromedpRenderer(infrastructure.ChromeOptions{
			ExecPath:    cfg.Chrome.Path,
			NoSandbox:   cfg.Chrome.NoSandbox,
			ExtraFlags:  cfg.Chrome.Flags,
			IdleTimeout: cfg.Chrome.IdleTimeout.Duration,
		})
	}

	gen := usecase.NewGenerator(validator, themes, renderer, usecase.Options{
		MaxConcurrent: cfg.Render.MaxConcurrent,
		Timeout:       cfg.Render.Timeout.Duration,
		TmpDir:        cfg.Render.TmpDir,
		Logger:        logger,
	})
	return &Components{Validator: validator, Themes: themes, Generator: gen}, nil
}
