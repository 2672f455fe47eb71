package main

import (
	"fmt"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Natsku123/ttv-tools/app/repository"
	"github.com/Natsku123/ttv-tools/internal/pkg/cache"
	"github.com/Natsku123/ttv-tools/internal/pkg/database"
	"github.com/Natsku123/ttv-tools/internal/pkg/env"
	"github.com/Natsku123/ttv-tools/internal/pkg/ipc"
	"github.com/Natsku123/ttv-tools/internal/pkg/jobqueue"
	"github.com/Natsku123/ttv-tools/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "0.0.0.0"), env.GetEnv("APP_PORT", "8000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// The API process only enqueues; cmd/worker runs the jobs.
	queue := jobqueue.GetManager().GetQueue()

	app := fiber.New(fiber.Config{
		AppName:   "ttv-tools",
		BodyLimit: 1 << 20,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// SWAGGER / OPENAPI
	installDocs(app, findBasePath())

	router.InstallRouter(app, router.Dependencies{
		Repos:          repository.GetGlobalFactory().GetRepositories(),
		Queue:          queue,
		QueueStats:     queue,
		Servers:        ipc.NewClientFromEnv(),
		WebhookSecret:  env.GetEnv("TWITCH_WEBHOOK_SECRET", ""),
		APIToken:       env.GetEnv("API_TOKEN", ""),
		LimiterStorage: router.NewLimiterStorage(),
	})

	return app
}

// findBasePath locates the project root from the usual working directories.
func findBasePath() string {
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/api to project root
		"../../../", // Fallback
	}
	for _, path := range basePaths {
		if _, err := os.Stat(path + docsFile); !os.IsNotExist(err) {
			return path
		}
	}
	panic("Could not find project root directory")
}

const docsFile = "public/docs/v1/openapi.yml"

// installDocs serves the v1 OpenAPI document and its UI under /docs/api/v1.
func installDocs(app *fiber.App, basePath string) {
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + docsFile,
		Path:     "v1",
		Title:    "ttv-tools API",
	}))
}
