package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

const requestIDKey = "requestid"

type Options struct {
	BodyLimit        int
	CORSAllowOrigins string
	Logger           logrus.FieldLogger
}

// NewApp builds the fiber app with middleware and routes attached.
func NewApp(h *Handler, opts Options) *fiber.App {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	origins := opts.CORSAllowOrigins
	if origins == "" {
		origins = "*"
	}

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		BodyLimit:             opts.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})

	app.Use(requestid.New(requestid.Config{ContextKey: requestIDKey}))
	app.Use(accessLog(logger))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: origins}))

	app.Get("/health", h.Health)
	api := app.Group("/api/resume")
	api.Post("/validate", h.Validate)
	api.Post("/generate", h.Generate)

	return app
}

// errorHandler renders every error that escapes a handler as JSON.
func errorHandler(logger logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			logger.WithError(err).WithField("request_id", c.Locals(requestIDKey)).Error("unhandled error")
		}
		return c.Status(code).JSON(fiber.Map{
			"error":   utils.StatusMessage(code),
			"message": err.Error(),
		})
	}
}

func accessLog(logger logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		entry := logger.WithFields(logrus.Fields{
			"request_id":  c.Locals(requestIDKey),
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.IP(),
		})
		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error("request")
		case status >= fiber.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
		return err
	}
}
