package model

import (
	"time"

	"github.com/google/uuid"
)

// RefundType distinguishes how the refund was initiated.
type RefundType string

const (
	RefundTypeGateway RefundType = "GATEWAY"
	RefundTypeStaff   RefundType = "STAFF"
)

// Refund records a confirmed gateway refund. GatewayRefundID is the
// idempotency key: exactly one row exists per gateway refund reference.
type Refund struct {
	ID              uuid.UUID
	PaymentID       int64
	GatewayRefundID string
	Amount          float64
	Type            RefundType
	Note            string
	CreatedAt       time.Time
}
