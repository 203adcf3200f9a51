package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/craftline/fulfillment/internal/domain/model"
)

// WebhookFacade describes reconciliation capabilities required by webhook
// handlers.
type WebhookFacade interface {
	RecordWebhook(ctx context.Context, source model.WebhookSource, body []byte) error
	ApplyPaymentEvent(ctx context.Context, orderID int64, gatewayPaymentID string, status model.PaymentStatus, method string, amount float64, raw json.RawMessage) (bool, error)
	ApplyRefundEvent(ctx context.Context, gatewayPaymentID, gatewayRefundID string, amount float64, refundType model.RefundType, note string) (bool, error)
	ApplyCarrierEvent(ctx context.Context, orderID int64, statusCode int, statusText string, eventAt time.Time, awbCode, trackingURL string) (*model.Order, int, error)
	DispatchCompensation(ctx context.Context, order *model.Order, actionCode int)
}

// StaffFacade describes operations exposed to staff endpoints.
type StaffFacade interface {
	CompleteOrder(ctx context.Context, orderID int64) (*model.Order, error)
	OrderByID(ctx context.Context, id int64) (*model.Order, error)
	DispatchCompensation(ctx context.Context, order *model.Order, actionCode int)
}

// Pinger reports backing storage availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// FulfillmentFacade aggregates the full set of operations used across handlers.
type FulfillmentFacade interface {
	WebhookFacade
	StaffFacade
	Pinger
}
