package serverx

import (
	"context"
	"errors"
	"time"

	"github.com/Abraxas-365/watools/auth"
	"github.com/Abraxas-365/watools/docx"
	"github.com/Abraxas-365/watools/errx"
	"github.com/Abraxas-365/watools/logx"
	"github.com/Abraxas-365/watools/metricx"
	"github.com/Abraxas-365/watools/toolx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

// HTTPConfig wires the HTTP host. Metrics and Tokens are optional: without
// Tokens the tool routes are open, without Metrics /metrics is not served.
type HTTPConfig struct {
	Registry *toolx.ToolRegistry
	Metrics  *metricx.Metrics
	Tokens   *auth.TokenService
}

// NewHTTPApp builds the fiber app serving the registry's tools
func NewHTTPApp(cfg HTTPConfig) (*fiber.App, error) {
	if cfg.Registry == nil {
		return nil, errors.New("tool registry is required")
	}

	app := fiber.New(fiber.Config{
		AppName:               ServerName,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if cfg.Metrics != nil {
		app.Use(cfg.Metrics.HTTPMiddleware())
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	h := &toolHandler{registry: cfg.Registry}
	app.Get("/healthz", h.health)
	docx.ToolsRouter(cfg.Registry, cfg.Tokens != nil).RegisterWithFiber(app, "/docs")

	tools := app.Group("/tools")
	if cfg.Tokens != nil {
		tools.Use(cfg.Tokens.Middleware(auth.ScopeTools))
	}
	tools.Get("/", h.list)
	tools.Post("/:name", h.call)

	return app, nil
}

// ServeHTTP listens on addr until ctx ends, then shuts the app down
func ServeHTTP(ctx context.Context, app *fiber.App, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logx.Info("HTTP tool host listening on %s", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logx.Info("Shutting down HTTP tool host")
		return app.ShutdownWithTimeout(shutdownTimeout)
	}
}

type toolHandler struct {
	registry *toolx.ToolRegistry
}

func (h *toolHandler) health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ok",
		"tools":  h.registry.Len(),
	})
}

func (h *toolHandler) list(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"tools": h.registry.Definitions(),
	})
}

// call answers 200 with the envelope for every known tool, including
// failed calls. Only unknown tools get a 404.
func (h *toolHandler) call(c *fiber.Ctx) error {
	name := c.Params("name")
	tool, ok := h.registry.Get(name)
	if !ok {
		env := h.registry.Call(c.UserContext(), name, nil)
		return c.Status(fiber.StatusNotFound).JSON(env)
	}

	env := tool.Call(c.UserContext(), c.Body())
	if !env.Success() {
		logx.Debug("Tool %s failed over HTTP: %s", name, env.Error())
	}
	return c.Status(fiber.StatusOK).JSON(env)
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(toolx.Envelope{"success": false, "error": fiberErr.Message})
	}

	var xerr *errx.Error
	if errors.As(err, &xerr) {
		return xerr.ToFiber(c)
	}

	logx.Error("HTTP %s %s failed: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(toolx.Envelope{"success": false, "error": err.Error()})
}
