package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

var ErrSignatureMismatch = errors.New("signature mismatch")

// WebhookVerifier validates payment-gateway webhook signatures. The gateway
// signs base64(HMAC-SHA256(secret, timestamp + rawBody)); verification must
// run over the exact request bytes, never a re-serialized payload.
type WebhookVerifier struct {
	secret []byte
}

// NewWebhookVerifier builds WebhookVerifier with the shared secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// Sign computes the expected signature for timestamp and raw body.
func (v *WebhookVerifier) Sign(timestamp string, rawBody []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(timestamp))
	mac.Write(rawBody)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks the signature header against the recomputed value.
func (v *WebhookVerifier) Verify(signature, timestamp string, rawBody []byte) error {
	if signature == "" || timestamp == "" {
		return ErrSignatureMismatch
	}
	expected := v.Sign(timestamp, rawBody)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}
