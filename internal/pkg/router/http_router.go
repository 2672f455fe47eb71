package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Natsku123/ttv-tools/app/controllers"
	"github.com/Natsku123/ttv-tools/internal/pkg/lifecycle"
)

// HttpRouter installs the unauthenticated routes: the Twitch callback,
// health and metrics.
type HttpRouter struct {
	deps Dependencies
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Twitch signs the raw body, so nothing in front of this route may
	// rewrite it.
	app.Post(lifecycle.CallbackPath, controllers.NewEventSubWebhookHandler(h.deps.WebhookSecret, h.deps.Queue))
}

func NewHttpRouter(deps Dependencies) *HttpRouter {
	return &HttpRouter{deps: deps}
}
