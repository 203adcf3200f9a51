package test

import (
	"context"
	"sync"

	"github.com/craftline/fulfillment/internal/domain/model"
)

// RefundCall captures one refund request sent to the gateway stub.
type RefundCall struct {
	OrderID string
	Amount  float64
	Note    string
}

// GatewayStub simulates the payment gateway client.
type GatewayStub struct {
	FetchOrderFn  func(context.Context, string) (*model.GatewayCharge, error)
	IssueRefundFn func(context.Context, string, float64, string) (string, error)

	mu          sync.Mutex
	RefundCalls []RefundCall
	FetchCalls  []string
}

// FetchOrder delegates to the override or reports the order as paid.
func (s *GatewayStub) FetchOrder(ctx context.Context, orderID string) (*model.GatewayCharge, error) {
	s.mu.Lock()
	s.FetchCalls = append(s.FetchCalls, orderID)
	s.mu.Unlock()
	if s.FetchOrderFn != nil {
		return s.FetchOrderFn(ctx, orderID)
	}
	return &model.GatewayCharge{
		OrderID:          orderID,
		GatewayPaymentID: "pay-" + orderID,
		State:            model.GatewayOrderPaid,
	}, nil
}

// IssueRefund records the call and returns a deterministic refund reference.
func (s *GatewayStub) IssueRefund(ctx context.Context, orderID string, amount float64, note string) (string, error) {
	s.mu.Lock()
	s.RefundCalls = append(s.RefundCalls, RefundCall{OrderID: orderID, Amount: amount, Note: note})
	s.mu.Unlock()
	if s.IssueRefundFn != nil {
		return s.IssueRefundFn(ctx, orderID, amount, note)
	}
	return "rf-" + orderID, nil
}

// Refunds returns a snapshot of recorded refund calls.
func (s *GatewayStub) Refunds() []RefundCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RefundCall, len(s.RefundCalls))
	copy(out, s.RefundCalls)
	return out
}

// CarrierStub simulates the shipping carrier client.
type CarrierStub struct {
	CancelFn func(context.Context, string) error
	ReturnFn func(context.Context, *model.Order) (string, error)

	mu          sync.Mutex
	Cancelled   []string
	ReturnCalls []int64
}

// CancelShipment records the carrier order id and delegates to the override.
func (s *CarrierStub) CancelShipment(ctx context.Context, carrierOrderID string) error {
	s.mu.Lock()
	s.Cancelled = append(s.Cancelled, carrierOrderID)
	s.mu.Unlock()
	if s.CancelFn != nil {
		return s.CancelFn(ctx, carrierOrderID)
	}
	return nil
}

// CreateReturn records the order and delegates to the override.
func (s *CarrierStub) CreateReturn(ctx context.Context, order *model.Order) (string, error) {
	s.mu.Lock()
	s.ReturnCalls = append(s.ReturnCalls, order.ID)
	s.mu.Unlock()
	if s.ReturnFn != nil {
		return s.ReturnFn(ctx, order)
	}
	return "ret-1", nil
}

// CancelledIDs returns a snapshot of cancelled carrier order ids.
func (s *CarrierStub) CancelledIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Cancelled))
	copy(out, s.Cancelled)
	return out
}

// Returns returns a snapshot of orders sent for return creation.
func (s *CarrierStub) Returns() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.ReturnCalls))
	copy(out, s.ReturnCalls)
	return out
}

// HealthCheckerStub simulates storage health checks.
type HealthCheckerStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s *HealthCheckerStub) HealthCheck(ctx context.Context) error {
	return s.Err
}
