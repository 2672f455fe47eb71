package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/Natsku123/ttv-tools/internal/pkg/eventsub"
	"github.com/Natsku123/ttv-tools/internal/pkg/jobqueue"
	"github.com/Natsku123/ttv-tools/internal/pkg/metrics"
)

const enqueueTimeout = 5 * time.Second

type eventSubEnvelope struct {
	Challenge    string `json:"challenge"`
	Subscription struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Type    string `json:"type"`
		Version string `json:"version"`
	} `json:"subscription"`
	Event json.RawMessage `json:"event"`
}

// NewEventSubWebhookHandler returns the Twitch EventSub callback. Signed
// notifications are queued for the workers; the event itself is not decoded
// here.
func NewEventSubWebhookHandler(secret string, queue jobqueue.Enqueuer) fiber.Handler {
	m := metrics.Pipeline()
	if secret == "" {
		log.Warn("[EventSub] TWITCH_WEBHOOK_SECRET is not set, every callback will be rejected")
	}

	return func(c *fiber.Ctx) error {
		messageType, err := eventsub.ParseMessageType(strings.TrimSpace(c.Get(eventsub.HeaderMessageType)))
		if err != nil {
			m.ObserveWebhook("unknown", metrics.ResultInvalid)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_message_type"})
		}

		messageID := strings.TrimSpace(c.Get(eventsub.HeaderMessageID))
		body := append([]byte(nil), c.BodyRaw()...)
		if !eventsub.VerifySignature(secret, messageID, c.Get(eventsub.HeaderMessageTimestamp), body, c.Get(eventsub.HeaderMessageSignature)) {
			log.Warnf("[EventSub] Signature mismatch for message %s from %s", messageID, c.IP())
			m.ObserveWebhook(string(messageType), metrics.ResultRejected)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "invalid_signature"})
		}

		var envelope eventSubEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			m.ObserveWebhook(string(messageType), metrics.ResultInvalid)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
		}

		switch messageType {
		case eventsub.MessageTypeVerification:
			if envelope.Challenge == "" {
				m.ObserveWebhook(string(messageType), metrics.ResultInvalid)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing_challenge"})
			}
			log.Infof("[EventSub] Verified subscription %s (%s)", envelope.Subscription.ID, envelope.Subscription.Type)
			m.ObserveWebhook(string(messageType), metrics.ResultOK)
			c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			return c.Status(fiber.StatusOK).SendString(envelope.Challenge)

		case eventsub.MessageTypeRevocation:
			log.Warnf("[EventSub] Subscription %s (%s) revoked: %s",
				envelope.Subscription.ID, envelope.Subscription.Type, envelope.Subscription.Status)
			m.ObserveWebhook(string(messageType), metrics.ResultOK)
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
		}

		if !hasEvent(envelope.Event) {
			m.ObserveWebhook(string(messageType), metrics.ResultOK)
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
		}

		subscriptionType := envelope.Subscription.Type
		if subscriptionType == "" {
			subscriptionType = strings.TrimSpace(c.Get(eventsub.HeaderSubscriptionType))
		}

		ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
		defer cancel()
		if _, err := jobqueue.EnqueueNotification(ctx, queue, messageID, subscriptionType, envelope.Event); err != nil {
			log.Errorf("[EventSub] Failed to enqueue notification %s: %v", messageID, err)
			m.ObserveWebhook(string(messageType), metrics.ResultError)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "enqueue_failed"})
		}

		m.ObserveWebhook(string(messageType), metrics.ResultOK)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	}
}

func hasEvent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
