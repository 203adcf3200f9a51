package model

import (
	"time"

	"github.com/google/uuid"
)

// WebhookSource identifies which external system sent a notification.
type WebhookSource string

const (
	WebhookSourcePayment WebhookSource = "PAYMENT_GATEWAY"
	WebhookSourceCarrier WebhookSource = "SHIPPING_CARRIER"
)

// WebhookInboxEntry keeps the raw body of every inbound webhook for replay
// and audit.
type WebhookInboxEntry struct {
	ID         uuid.UUID
	Source     WebhookSource
	Body       []byte
	ReceivedAt time.Time
}
