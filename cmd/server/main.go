package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	httpadapter "resume-api/internal/adapter/http"
	"resume-api/internal/app"
	"resume-api/internal/config"
	infra "resume-api/pkg/infrastructure"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = ""

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flags := config.NewFlags(fs).AddServerFlags()
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(flags, os.LookupEnv)
	if err != nil {
		return err
	}
	if Version != "" {
		cfg.Server.Version = Version
	}

	logger, err := infra.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}
	_, _ = maxprocs.Set(maxprocs.Logger(logger.Debugf))

	components, err := app.Build(cfg, nil, logger)
	if err != nil {
		return err
	}

	h := httpadapter.NewHandler(components.Generator, cfg.Server.Version, logger)
	srv := httpadapter.NewApp(h, httpadapter.Options{
		BodyLimit:        cfg.Server.BodyLimit,
		CORSAllowOrigins: cfg.Server.CORSAllowOrigins,
		Logger:           logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Addr())
	}()
	logger.WithFields(log.Fields{
		"addr":        cfg.Addr(),
		"validation":  components.Validator.Mode(),
		"theme":       components.Themes.Default(),
		"max_renders": components.Generator.RenderLimit(),
	}).Info("JSON Resume API listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := srv.ShutdownWithTimeout(cfg.Server.ShutdownTimeout.Duration); err != nil {
		logger.WithError(err).Warn("shutdown did not complete cleanly")
	}
	return nil
}
