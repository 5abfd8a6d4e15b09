package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"resume-api/internal/domain"
	"resume-api/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	serviceName = "json-resume-api"

	maxStderr = 4000
	maxStdout = 2000
)

// Service is the slice of the generator the handlers need.
type Service interface {
	Validate(doc interface{}) (model.Result, error)
	Generate(ctx context.Context, req *domain.RenderRequest) ([]byte, error)
}

type Handler struct {
	svc     Service
	version string
	log     logrus.FieldLogger
}

func NewHandler(svc Service, version string, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{svc: svc, version: version, log: logger}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": serviceName,
		"version": h.version,
	})
}

func (h *Handler) Validate(c *fiber.Ctx) error {
	body, err := h.decodeBody(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body", "message": err.Error()})
	}

	res, err := h.svc.Validate(model.FromBody(body))
	if err != nil {
		h.requestLog(c).WithError(err).Error("validation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Validation failed", "message": err.Error()})
	}
	return c.JSON(res)
}

func (h *Handler) Generate(c *fiber.Ctx) error {
	body, err := h.decodeBody(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body", "message": err.Error()})
	}

	doc := model.FromBody(body)
	res, err := h.svc.Validate(doc)
	if err != nil {
		h.requestLog(c).WithError(err).Error("validation failed")
		return h.renderFailure(c, err)
	}
	if !res.Valid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid JSON Resume data",
			"details": res.Errors,
		})
	}

	resume, _ := model.AsResume(doc)
	req := domain.NewRenderRequest(resume, requestedTheme(c, body))
	if id, ok := c.Locals(requestIDKey).(string); ok {
		if parsed, err := uuid.Parse(id); err == nil {
			req.ID = parsed
		}
	}

	pdf, err := h.svc.Generate(c.UserContext(), req)
	if err != nil {
		h.requestLog(c).WithError(err).WithField("theme", req.Theme).Error("error generating resume")
		return h.renderFailure(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, req.Filename()))
	return c.Send(pdf)
}

func (h *Handler) renderFailure(c *fiber.Ctx, err error) error {
	out := fiber.Map{
		"error":   "Failed to generate resume",
		"message": err.Error(),
	}
	var re *domain.RenderError
	if errors.As(err, &re) {
		if re.Stderr != "" {
			out["stderr"] = truncate(re.Stderr, maxStderr)
		}
		if re.Stdout != "" {
			out["stdout"] = truncate(re.Stdout, maxStdout)
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(out)
}

// decodeBody parses the request body as arbitrary JSON. An empty body is
// treated as an empty object.
func (h *Handler) decodeBody(c *fiber.Ctx) (interface{}, error) {
	raw := bytes.TrimSpace(c.Body())
	if len(raw) == 0 {
		return map[string]interface{}{}, nil
	}
	var body interface{}
	if err := c.App().Config().JSONDecoder(raw, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func (h *Handler) requestLog(c *fiber.Ctx) logrus.FieldLogger {
	return h.log.WithFields(logrus.Fields{
		"request_id": c.Locals(requestIDKey),
		"path":       c.Path(),
	})
}

// requestedTheme prefers the query parameter over the body field.
func requestedTheme(c *fiber.Ctx, body interface{}) string {
	if t := c.Query("theme"); t != "" {
		return t
	}
	if m, ok := body.(map[string]interface{}); ok {
		if t, ok := m["theme"].(string); ok {
			return t
		}
	}
	return ""
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
