// Command ipc-logger stands in for the Discord bot during local
// development. It accepts the notification routes and logs every call.
package main

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Natsku123/ttv-tools/internal/pkg/env"
	"github.com/Natsku123/ttv-tools/internal/pkg/ipc"
	"github.com/Natsku123/ttv-tools/internal/pkg/notify"
)

func main() {
	env.SetupEnvFile()

	server := ipc.NewServer(env.GetEnv("IPC_SECRET", ""))
	for _, route := range notify.Routes() {
		if slices.Contains(server.Routes(), route) {
			continue
		}
		server.Handle(route, func(_ context.Context, kwargs ipc.Kwargs) (any, error) {
			log.Infof("[IPC] %s -> channel %v: %v", route, kwargs["channel_discord_id"], kwargs["notification_content"])
			return nil, nil
		})
	}
	listServers := func(context.Context, ipc.Kwargs) (any, error) {
		return []ipc.DiscordServer{}, nil
	}
	server.Handle(ipc.RouteGetAllServers, listServers)
	server.Handle(ipc.RouteGetUserServers, listServers)

	addr := fmt.Sprintf("0.0.0.0:%s", env.GetEnv("IPC_PORT", "9999"))
	log.Infof("[IPC] Listening on %s (routes: %v)", addr, server.Routes())
	log.Fatal(http.ListenAndServe(addr, server))
}
