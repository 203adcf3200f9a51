package repository

import (
	"context"

	"github.com/craftline/fulfillment/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	// ApplyDeliveryEvent appends the event row, appends the raw code to the
	// order's previous_statuses and, unless the event is stale or the order is
	// terminal, overwrites the denormalized latest-status fields. The whole
	// sequence runs in one transaction and returns the refreshed order.
	ApplyDeliveryEvent(ctx context.Context, event model.DeliveryStatusEvent, status model.OrderStatus, awbCode, trackingURL string) (*model.Order, error)
}
