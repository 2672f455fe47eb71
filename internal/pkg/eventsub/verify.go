package eventsub

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// Webhook request headers sent by Twitch.
const (
	HeaderMessageID           = "Twitch-Eventsub-Message-Id"
	HeaderMessageRetry        = "Twitch-Eventsub-Message-Retry"
	HeaderMessageType         = "Twitch-Eventsub-Message-Type"
	HeaderMessageSignature    = "Twitch-Eventsub-Message-Signature"
	HeaderMessageTimestamp    = "Twitch-Eventsub-Message-Timestamp"
	HeaderSubscriptionType    = "Twitch-Eventsub-Subscription-Type"
	HeaderSubscriptionVersion = "Twitch-Eventsub-Subscription-Version"
)

// SignaturePrefix tags the hex digest in the signature header.
const SignaturePrefix = "sha256="

// MessageType classifies a webhook delivery.
type MessageType string

const (
	MessageTypeNotification MessageType = "notification"
	MessageTypeVerification MessageType = "webhook_callback_verification"
	MessageTypeRevocation   MessageType = "revocation"
)

var ErrInvalidMessageType = errors.New("invalid message type")

// ParseMessageType accepts only the three message types Twitch defines.
func ParseMessageType(raw string) (MessageType, error) {
	switch t := MessageType(raw); t {
	case MessageTypeNotification, MessageTypeVerification, MessageTypeRevocation:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMessageType, raw)
	}
}

// ComputeSignature returns the header value Twitch would send for the message.
func ComputeSignature(secret, messageID, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(messageID))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return SignaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares the supplied header against the expected
// signature in constant time. An empty secret never verifies.
func VerifySignature(secret, messageID, timestamp string, body []byte, supplied string) bool {
	if secret == "" || supplied == "" {
		return false
	}
	expected := ComputeSignature(secret, messageID, timestamp, body)
	return hmac.Equal([]byte(expected), []byte(supplied))
}
