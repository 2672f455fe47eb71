package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Natsku123/ttv-tools/app/repository"
	apiv1 "github.com/Natsku123/ttv-tools/internal/api/v1"
	"github.com/Natsku123/ttv-tools/internal/pkg/jobqueue"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the collaborators the HTTP process routes to.
type Dependencies struct {
	Repos         *repository.Repositories
	Queue         jobqueue.Enqueuer
	QueueStats    apiv1.QueueStats
	Servers       apiv1.ServerLister
	WebhookSecret string
	APIToken      string
	// LimiterStorage backs the /api rate limiter; nil keeps counters in memory.
	LimiterStorage fiber.Storage
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
