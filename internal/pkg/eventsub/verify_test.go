package eventsub

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSignature_MatchesReferenceHMAC(t *testing.T) {
	secret := "s3cre7"
	id := "e76c6bd4-55c9-4987-8304-da1588d8988b"
	ts := "2019-11-16T10:11:12.634234626Z"
	body := []byte(`{"event":{"broadcaster_user_id":"1337"}}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id + ts + string(body)))
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, ComputeSignature(secret, id, ts, body))
}

func TestVerifySignature(t *testing.T) {
	secret := "s3cre7"
	body := []byte(`{"challenge":"abc123"}`)
	valid := ComputeSignature(secret, "msg-1", "ts-1", body)

	tests := []struct {
		name      string
		secret    string
		id        string
		timestamp string
		body      []byte
		signature string
		want      bool
	}{
		{"valid", secret, "msg-1", "ts-1", body, valid, true},
		{"wrong secret", "other", "msg-1", "ts-1", body, valid, false},
		{"tampered body", secret, "msg-1", "ts-1", []byte(`{"challenge":"evil"}`), valid, false},
		{"tampered id", secret, "msg-2", "ts-1", body, valid, false},
		{"tampered timestamp", secret, "msg-1", "ts-2", body, valid, false},
		{"missing prefix", secret, "msg-1", "ts-1", body, valid[len(SignaturePrefix):], false},
		{"empty signature", secret, "msg-1", "ts-1", body, "", false},
		{"empty secret", "", "msg-1", "ts-1", body, ComputeSignature("", "msg-1", "ts-1", body), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifySignature(tt.secret, tt.id, tt.timestamp, tt.body, tt.signature))
		})
	}
}

func TestParseMessageType(t *testing.T) {
	for _, raw := range []string{"notification", "webhook_callback_verification", "revocation"} {
		got, err := ParseMessageType(raw)
		require.NoError(t, err)
		assert.Equal(t, MessageType(raw), got)
	}

	for _, raw := range []string{"", "Notification", "ping", "revocation "} {
		_, err := ParseMessageType(raw)
		assert.ErrorIs(t, err, ErrInvalidMessageType, raw)
	}
}
