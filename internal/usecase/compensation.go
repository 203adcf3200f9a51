package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	domainErrors "github.com/craftline/fulfillment/internal/domain/errors"
	"github.com/craftline/fulfillment/internal/domain/model"
	"github.com/craftline/fulfillment/internal/domain/repository"
	"github.com/craftline/fulfillment/internal/pkg/retry"
	"github.com/craftline/fulfillment/internal/translator"
)

// GatewayProvider exposes the subset of the payment gateway used by
// compensating actions.
type GatewayProvider interface {
	IssueRefund(ctx context.Context, orderID string, amount float64, note string) (string, error)
}

// CarrierProvider exposes the subset of the carrier API used by compensating
// actions.
type CarrierProvider interface {
	CancelShipment(ctx context.Context, carrierOrderID string) error
	CreateReturn(ctx context.Context, order *model.Order) (string, error)
}

// CompensationDispatcher orchestrates refunds, returns and cancellations in
// response to carrier action codes. Each step is independently retried; a
// failed step is logged, never rolled back, and never blocks the other step.
type CompensationDispatcher struct {
	payments repository.PaymentRepository
	gateway  GatewayProvider
	carrier  CarrierProvider
	retryCfg retry.Config
	logger   *slog.Logger
}

// NewCompensationDispatcher constructs CompensationDispatcher.
func NewCompensationDispatcher(payments repository.PaymentRepository, gateway GatewayProvider, carrier CarrierProvider, retryCfg retry.Config, logger *slog.Logger) *CompensationDispatcher {
	return &CompensationDispatcher{
		payments: payments,
		gateway:  gateway,
		carrier:  carrier,
		retryCfg: retryCfg,
		logger:   logger,
	}
}

// Dispatch runs the compensating sequence for the action code. Codes other
// than return-to-origin and reverse-and-cancel are informational and cause no
// calls.
func (d *CompensationDispatcher) Dispatch(ctx context.Context, order *model.Order, actionCode int) {
	switch actionCode {
	case translator.ActionReturnToOrigin:
		d.refundAndReturn(ctx, order)
	case translator.ActionReverseAndCancel:
		d.refundAndCancel(ctx, order)
	}
}

func (d *CompensationDispatcher) refundAndReturn(ctx context.Context, order *model.Order) {
	d.issueRefund(ctx, order, "delivery failed, shipment returning to origin")

	returnID, err := retry.Do(ctx, d.retryCfg, func(ctx context.Context) (string, error) {
		return d.carrier.CreateReturn(ctx, order)
	})
	if err != nil {
		d.logger.Error("create return failed after retries",
			slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
		return
	}
	d.logger.Info("return shipment created",
		slog.Int64("order_id", order.ID), slog.String("return_order_id", returnID))
}

func (d *CompensationDispatcher) refundAndCancel(ctx context.Context, order *model.Order) {
	if d.shouldRefund(ctx, order) {
		d.issueRefund(ctx, order, "delivery will not complete, payment reversed")
	}

	if err := retry.DoVoid(ctx, d.retryCfg, func(ctx context.Context) error {
		return d.carrier.CancelShipment(ctx, order.CarrierOrderID)
	}); err != nil {
		d.logger.Error("carrier cancel failed after retries",
			slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
		return
	}
	d.logger.Info("carrier shipment cancelled", slog.Int64("order_id", order.ID))
}

// shouldRefund guards the reverse-and-cancel refund: skip when the latest
// payment is already refunded or was never completed.
func (d *CompensationDispatcher) shouldRefund(ctx context.Context, order *model.Order) bool {
	payment, err := d.payments.GetLatestByOrder(ctx, order.ID)
	if err != nil {
		if !errors.Is(err, domainErrors.ErrNotFound) {
			d.logger.Error("payment lookup failed, skipping refund",
				slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
		}
		return false
	}
	return payment.Status == model.PaymentStatusCompleted
}

func (d *CompensationDispatcher) issueRefund(ctx context.Context, order *model.Order, note string) {
	refundID, err := retry.Do(ctx, d.retryCfg, func(ctx context.Context) (string, error) {
		return d.gateway.IssueRefund(ctx, strconv.FormatInt(order.ID, 10), order.Total, note)
	})
	if err != nil {
		d.logger.Error("refund failed after retries",
			slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
		return
	}
	// The Refund row is written when the gateway confirms via its refund
	// webhook, not here.
	d.logger.Info("refund requested",
		slog.Int64("order_id", order.ID), slog.String("gateway_refund_id", refundID))
}
