package repository

import (
	"context"
	"encoding/json"

	"github.com/craftline/fulfillment/internal/domain/model"
)

// PaymentRepository describes persistence operations with payments and refunds.
type PaymentRepository interface {
	GetByGatewayID(ctx context.Context, gatewayPaymentID string) (*model.Payment, error)
	GetLatestByOrder(ctx context.Context, orderID int64) (*model.Payment, error)
	// Apply records the gateway-reported outcome for a payment attempt inside a
	// single transaction: the payment row is locked (or inserted on first
	// sight), transitioned forward only, and a completed payment advances the
	// owning order to its ready-to-fulfill state. Returns false when the event
	// is a duplicate or would move the payment backward.
	Apply(ctx context.Context, orderID int64, gatewayPaymentID string, status model.PaymentStatus, method string, amount float64, raw json.RawMessage) (bool, error)
	// MarkRefunded transitions a completed payment to refunded, inserts the
	// refund row keyed by gateway refund reference, and marks the owning order
	// returned. Returns false when the payment is already refunded.
	MarkRefunded(ctx context.Context, gatewayPaymentID string, refund model.Refund) (bool, error)
}
