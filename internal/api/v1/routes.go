package apiv1

import "github.com/gofiber/fiber/v2"

// RegisterHandlers mounts the v1 routes on router.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)

	router.Get("/eventsubs", s.ListEventSubscriptions)
	router.Post("/eventsubs", s.CreateEventSubscription)
	router.Get("/eventsubs/:uuid", s.GetEventSubscription)
	router.Patch("/eventsubs/:uuid", s.UpdateEventSubscription)
	router.Delete("/eventsubs/:uuid", s.DeleteEventSubscription)

	router.Get("/discord/servers", s.ListDiscordServers)
	router.Get("/queue/stats", s.GetQueueStats)
}
