package app

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/craftline/fulfillment/internal/domain/errors"
	"github.com/craftline/fulfillment/internal/domain/model"
	"github.com/craftline/fulfillment/internal/domain/repository"
	"github.com/craftline/fulfillment/internal/usecase"
)

// GatewayProvider fetches the gateway's authoritative view of an order's
// charge for staff-initiated verification.
type GatewayProvider interface {
	FetchOrder(ctx context.Context, orderID string) (*model.GatewayCharge, error)
}

// HealthChecker reports storage availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// FulfillmentFacade is the single entry point the transport layer talks to.
type FulfillmentFacade struct {
	payments   *usecase.PaymentUseCase
	deliveries *usecase.DeliveryUseCase
	dispatcher *usecase.CompensationDispatcher
	gateway    GatewayProvider
	inbox      repository.InboxRepository
	health     HealthChecker
}

// NewFulfillmentFacade constructs FulfillmentFacade.
func NewFulfillmentFacade(
	payments *usecase.PaymentUseCase,
	deliveries *usecase.DeliveryUseCase,
	dispatcher *usecase.CompensationDispatcher,
	gateway GatewayProvider,
	inbox repository.InboxRepository,
	health HealthChecker,
) *FulfillmentFacade {
	return &FulfillmentFacade{
		payments:   payments,
		deliveries: deliveries,
		dispatcher: dispatcher,
		gateway:    gateway,
		inbox:      inbox,
		health:     health,
	}
}

// RecordWebhook persists the raw webhook body to the inbox for replay.
func (f *FulfillmentFacade) RecordWebhook(ctx context.Context, source model.WebhookSource, body []byte) error {
	entry := model.WebhookInboxEntry{
		ID:         uuid.New(),
		Source:     source,
		Body:       body,
		ReceivedAt: time.Now(),
	}
	return f.inbox.Store(ctx, entry)
}

// ApplyPaymentEvent reconciles a gateway payment notification with stored
// state. Returns false when the event was already applied.
func (f *FulfillmentFacade) ApplyPaymentEvent(ctx context.Context, orderID int64, gatewayPaymentID string, status model.PaymentStatus, method string, amount float64, raw json.RawMessage) (bool, error) {
	return f.payments.ApplyGatewayEvent(ctx, orderID, gatewayPaymentID, status, method, amount, raw)
}

// ApplyRefundEvent records a gateway-confirmed refund.
func (f *FulfillmentFacade) ApplyRefundEvent(ctx context.Context, gatewayPaymentID, gatewayRefundID string, amount float64, refundType model.RefundType, note string) (bool, error) {
	return f.payments.ApplyRefund(ctx, gatewayPaymentID, gatewayRefundID, amount, refundType, note)
}

// ApplyCarrierEvent records a carrier delivery event and returns the updated
// order plus the compensating action the status calls for.
func (f *FulfillmentFacade) ApplyCarrierEvent(ctx context.Context, orderID int64, statusCode int, statusText string, eventAt time.Time, awbCode, trackingURL string) (*model.Order, int, error) {
	return f.deliveries.Apply(ctx, orderID, statusCode, statusText, eventAt, awbCode, trackingURL)
}

// DispatchCompensation runs the compensating sequence for the action code.
func (f *FulfillmentFacade) DispatchCompensation(ctx context.Context, order *model.Order, actionCode int) {
	f.dispatcher.Dispatch(ctx, order, actionCode)
}

// CompleteOrder re-verifies payment with the gateway before advancing the
// order. The gateway answer is authoritative: a paid charge is applied even
// when the success webhook never arrived.
func (f *FulfillmentFacade) CompleteOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := f.deliveries.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	charge, err := f.gateway.FetchOrder(ctx, strconv.FormatInt(order.ID, 10))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrPaymentNotSettled
		}
		return nil, err
	}

	switch charge.State {
	case model.GatewayOrderPaid:
		if _, err := f.payments.ApplyGatewayEvent(ctx, order.ID, charge.GatewayPaymentID, model.PaymentStatusCompleted, charge.Method, charge.Amount, nil); err != nil {
			return nil, err
		}
		return f.deliveries.OrderByID(ctx, orderID)
	case model.GatewayOrderFailed:
		return nil, domainErrors.ErrPaymentFailed
	default:
		return nil, domainErrors.ErrPaymentNotSettled
	}
}

// OrderByID fetches a single order.
func (f *FulfillmentFacade) OrderByID(ctx context.Context, id int64) (*model.Order, error) {
	return f.deliveries.OrderByID(ctx, id)
}

// Ping verifies storage connectivity.
func (f *FulfillmentFacade) Ping(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
