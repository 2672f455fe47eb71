package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Natsku123/ttv-tools/app/repository"
	"github.com/Natsku123/ttv-tools/internal/pkg/accountsync"
	"github.com/Natsku123/ttv-tools/internal/pkg/cache"
	"github.com/Natsku123/ttv-tools/internal/pkg/database"
	"github.com/Natsku123/ttv-tools/internal/pkg/dedup"
	"github.com/Natsku123/ttv-tools/internal/pkg/env"
	"github.com/Natsku123/ttv-tools/internal/pkg/ipc"
	"github.com/Natsku123/ttv-tools/internal/pkg/jobqueue"
	"github.com/Natsku123/ttv-tools/internal/pkg/lifecycle"
	"github.com/Natsku123/ttv-tools/internal/pkg/notify"
	"github.com/Natsku123/ttv-tools/internal/pkg/twitch"
)

func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalFactory().GetRepositories()
	twitchClient := twitch.NewClientFromEnv()

	manager := jobqueue.GetManager()
	manager.SetProcessors(jobqueue.Processors{
		Notifications: notify.NewPipeline(repos, dedup.NewFromEnv(), twitchClient, ipc.NewClientFromEnv()),
		Subscriptions: lifecycle.NewManager(repos, twitchClient, lifecycle.ConfigFromEnv()),
		Accounts:      accountsync.NewSyncer(repos.Account, twitchClient),
	})
	manager.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Infof("[Worker] Received %s, shutting down", s)

	manager.Stop()
}
