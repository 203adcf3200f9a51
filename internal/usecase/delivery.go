package usecase

import (
	"context"
	"time"

	"github.com/craftline/fulfillment/internal/domain/model"
	"github.com/craftline/fulfillment/internal/domain/repository"
	"github.com/craftline/fulfillment/internal/translator"
)

// DeliveryUseCase applies carrier status notifications to orders.
type DeliveryUseCase struct {
	orders repository.OrderRepository
}

// NewDeliveryUseCase constructs DeliveryUseCase.
func NewDeliveryUseCase(orders repository.OrderRepository) *DeliveryUseCase {
	return &DeliveryUseCase{orders: orders}
}

// Apply appends the delivery event to the order's history, updates the
// denormalized latest-status projection, and returns the refreshed order with
// the action code derived from the raw carrier status.
func (u *DeliveryUseCase) Apply(ctx context.Context, orderID int64, statusCode int, statusText string, eventAt time.Time, awbCode, trackingURL string) (*model.Order, int, error) {
	if statusText == "" {
		statusText = translator.StatusText(statusCode)
	}
	action := translator.ActionCode(statusCode)

	event := model.DeliveryStatusEvent{
		OrderID:    orderID,
		StatusCode: statusCode,
		StatusText: statusText,
		ActionCode: action,
		EventAt:    eventAt,
		ReceivedAt: time.Now(),
	}

	order, err := u.orders.ApplyDeliveryEvent(ctx, event, translator.PersistedStatus(statusCode), awbCode, trackingURL)
	if err != nil {
		return nil, translator.ActionNone, err
	}
	return order, action, nil
}

// OrderByID fetches a single order.
func (u *DeliveryUseCase) OrderByID(ctx context.Context, id int64) (*model.Order, error) {
	return u.orders.GetByID(ctx, id)
}
