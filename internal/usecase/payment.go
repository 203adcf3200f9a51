package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/craftline/fulfillment/internal/domain/model"
	"github.com/craftline/fulfillment/internal/domain/repository"
)

// PaymentUseCase encapsulates payment reconciliation logic.
type PaymentUseCase struct {
	payments repository.PaymentRepository
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(payments repository.PaymentRepository) *PaymentUseCase {
	return &PaymentUseCase{payments: payments}
}

// ApplyGatewayEvent records the gateway-reported payment outcome exactly once
// in effect. Returns false when the event was already applied.
func (u *PaymentUseCase) ApplyGatewayEvent(ctx context.Context, orderID int64, gatewayPaymentID string, status model.PaymentStatus, method string, amount float64, raw json.RawMessage) (bool, error) {
	return u.payments.Apply(ctx, orderID, gatewayPaymentID, status, method, amount, raw)
}

// ApplyRefund marks the payment refunded and records the refund row keyed by
// the gateway refund reference. Returns false when the refund was already
// recorded.
func (u *PaymentUseCase) ApplyRefund(ctx context.Context, gatewayPaymentID, gatewayRefundID string, amount float64, refundType model.RefundType, note string) (bool, error) {
	refund := model.Refund{
		ID:              uuid.New(),
		GatewayRefundID: gatewayRefundID,
		Amount:          amount,
		Type:            refundType,
		Note:            note,
		CreatedAt:       time.Now(),
	}
	return u.payments.MarkRefunded(ctx, gatewayPaymentID, refund)
}

// LatestByOrder returns the most recent payment attempt for an order.
func (u *PaymentUseCase) LatestByOrder(ctx context.Context, orderID int64) (*model.Payment, error) {
	return u.payments.GetLatestByOrder(ctx, orderID)
}
