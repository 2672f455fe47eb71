package apiv1

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/Natsku123/ttv-tools/app/models"
	"github.com/Natsku123/ttv-tools/app/repository"
	"github.com/Natsku123/ttv-tools/internal/pkg/eventsub"
	"github.com/Natsku123/ttv-tools/internal/pkg/ipc"
	"github.com/Natsku123/ttv-tools/internal/pkg/jobqueue"
)

const requestTimeout = 15 * time.Second

// ServerLister answers the chat-server introspection routes.
type ServerLister interface {
	GetAllServers(ctx context.Context) ([]ipc.DiscordServer, error)
	GetUserServers(ctx context.Context, discordUserID string) ([]ipc.DiscordServer, error)
}

// QueueStats is the read side of the job queue.
type QueueStats interface {
	GetJobStats(ctx context.Context) (map[jobqueue.JobStatus]int64, error)
	GetQueueSize(ctx context.Context) (int64, error)
	GetProcessingSize(ctx context.Context) (int64, error)
	GetDelayedSize(ctx context.Context) (int64, error)
}

// APIServer serves the v1 API
type APIServer struct {
	repos    *repository.Repositories
	queue    jobqueue.Enqueuer
	stats    QueueStats
	servers  ServerLister
	validate *validator.Validate
}

// NewAPIServer creates a new API server instance. stats may be nil.
func NewAPIServer(repos *repository.Repositories, queue jobqueue.Enqueuer, stats QueueStats, servers ServerLister) *APIServer {
	v := validator.New()
	_ = v.RegisterValidation("eventkind", func(fl validator.FieldLevel) bool {
		return eventsub.IsKnown(fl.Field().String())
	})
	return &APIServer{repos: repos, queue: queue, stats: stats, servers: servers, validate: v}
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorResponse{Error: code, Message: message})
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

// ListEventSubscriptions lists the subscriptions of one account.
func (s *APIServer) ListEventSubscriptions(c *fiber.Ctx) error {
	userUUID := strings.TrimSpace(c.Query("user_uuid"))
	if userUUID == "" {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "user_uuid query parameter is required")
	}

	ctx, cancel := requestContext()
	defer cancel()

	subs, err := s.repos.EventSubscription.ListByOwner(ctx, userUUID)
	if err != nil {
		log.Errorf("[API] Listing subscriptions of %s failed: %v", userUUID, err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "")
	}

	out := make([]EventSubscriptionResponse, 0, len(subs))
	for i := range subs {
		out = append(out, toResponse(&subs[i]))
	}
	return c.JSON(out)
}

// GetEventSubscription returns one subscription.
func (s *APIServer) GetEventSubscription(c *fiber.Ctx) error {
	ctx, cancel := requestContext()
	defer cancel()

	sub, err := s.repos.EventSubscription.GetByUUID(ctx, c.Params("uuid"))
	if err != nil {
		return s.lookupError(c, err)
	}
	return c.JSON(toResponse(sub))
}

// CreateEventSubscription stores a subscription and queues its registration
// with Twitch.
func (s *APIServer) CreateEventSubscription(c *fiber.Ctx) error {
	var req CreateEventSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "invalid JSON body")
	}
	if err := s.validate.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	ctx, cancel := requestContext()
	defer cancel()

	if _, err := s.repos.Account.GetByUUID(ctx, req.UserUUID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errorJSON(c, fiber.StatusUnprocessableEntity, "validation_failed", "unknown user_uuid")
		}
		log.Errorf("[API] Account lookup failed: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "")
	}

	sub := &models.EventSubscription{
		UserUUID:          req.UserUUID,
		ServerDiscordID:   req.ServerDiscordID,
		ChannelDiscordID:  req.ChannelDiscordID,
		Event:             req.Event,
		CustomTitle:       req.CustomTitle,
		CustomDescription: req.CustomDescription,
		Message:           req.Message,
	}
	if err := s.repos.EventSubscription.Create(ctx, sub); err != nil {
		log.Errorf("[API] Creating subscription failed: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "")
	}

	if _, err := jobqueue.EnqueueRegistration(ctx, s.queue, sub.UUID); err != nil {
		log.Errorf("[API] Queueing registration of %s failed: %v", sub.UUID, err)
		if delErr := s.repos.EventSubscription.Delete(ctx, sub.UUID); delErr != nil {
			log.Errorf("[API] Rolling back subscription %s failed: %v", sub.UUID, delErr)
		}
		return errorJSON(c, fiber.StatusServiceUnavailable, "queue_unavailable", "registration could not be queued")
	}

	log.Infof("[API] Created subscription %s (%s) for %s", sub.UUID, sub.Event, sub.UserUUID)
	return c.Status(fiber.StatusCreated).JSON(toResponse(sub))
}

// UpdateEventSubscription changes the title, description or message fields
// present in the body.
func (s *APIServer) UpdateEventSubscription(c *fiber.Ctx) error {
	var req UpdateEventSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "invalid JSON body")
	}
	var present map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &present); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "bad_request", "invalid JSON body")
	}
	if err := s.validate.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	ctx, cancel := requestContext()
	defer cancel()

	sub, err := s.repos.EventSubscription.UpdateCustomization(ctx, c.Params("uuid"), req.customization(present))
	if err != nil {
		return s.lookupError(c, err)
	}
	return c.JSON(toResponse(sub))
}

// DeleteEventSubscription queues the removal. The record stays visible until
// the task has removed it from Twitch.
func (s *APIServer) DeleteEventSubscription(c *fiber.Ctx) error {
	ctx, cancel := requestContext()
	defer cancel()

	sub, err := s.repos.EventSubscription.GetByUUID(ctx, c.Params("uuid"))
	if err != nil {
		return s.lookupError(c, err)
	}

	job, err := jobqueue.EnqueueDeregistration(ctx, s.queue, sub.UUID)
	if err != nil {
		log.Errorf("[API] Queueing deregistration of %s failed: %v", sub.UUID, err)
		return errorJSON(c, fiber.StatusServiceUnavailable, "queue_unavailable", "deregistration could not be queued")
	}
	return c.Status(fiber.StatusAccepted).JSON(AcceptedResponse{Status: "queued", JobID: job.ID})
}

// ListDiscordServers lists the servers the bot is in, or those shared with
// a Discord user when user_id is given.
func (s *APIServer) ListDiscordServers(c *fiber.Ctx) error {
	ctx, cancel := requestContext()
	defer cancel()

	var (
		servers []ipc.DiscordServer
		err     error
	)
	if userID := strings.TrimSpace(c.Query("user_id")); userID != "" {
		servers, err = s.servers.GetUserServers(ctx, userID)
	} else {
		servers, err = s.servers.GetAllServers(ctx)
	}
	if err != nil {
		log.Errorf("[API] Server introspection failed: %v", err)
		return errorJSON(c, fiber.StatusBadGateway, "bot_unavailable", "")
	}
	if servers == nil {
		servers = []ipc.DiscordServer{}
	}
	return c.JSON(servers)
}

// GetQueueStats reports queue depth and job totals.
func (s *APIServer) GetQueueStats(c *fiber.Ctx) error {
	if s.stats == nil {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "")
	}

	ctx, cancel := requestContext()
	defer cancel()

	pending, err := s.stats.GetQueueSize(ctx)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "")
	}
	processing, err := s.stats.GetProcessingSize(ctx)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "")
	}
	delayed, err := s.stats.GetDelayedSize(ctx)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "")
	}
	totals, err := s.stats.GetJobStats(ctx)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "")
	}

	resp := QueueStatsResponse{Pending: pending, Processing: processing, Delayed: delayed, Totals: map[string]int64{}}
	for status, n := range totals {
		resp.Totals[string(status)] = n
	}
	return c.JSON(resp)
}

func (s *APIServer) lookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "event subscription not found")
	}
	log.Errorf("[API] Subscription lookup failed: %v", err)
	return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "")
}
