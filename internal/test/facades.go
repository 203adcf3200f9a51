package test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	domainErrors "github.com/craftline/fulfillment/internal/domain/errors"
	"github.com/craftline/fulfillment/internal/domain/model"
)

// DispatchCall captures one compensation dispatch.
type DispatchCall struct {
	OrderID    int64
	ActionCode int
}

// FacadeStub provides controllable behaviour for the HTTP handlers.
type FacadeStub struct {
	RecordWebhookFn func(context.Context, model.WebhookSource, []byte) error
	ApplyPaymentFn  func(context.Context, int64, string, model.PaymentStatus, string, float64, json.RawMessage) (bool, error)
	ApplyRefundFn   func(context.Context, string, string, float64, model.RefundType, string) (bool, error)
	ApplyCarrierFn  func(context.Context, int64, int, string, time.Time, string, string) (*model.Order, int, error)
	CompleteOrderFn func(context.Context, int64) (*model.Order, error)
	OrderByIDFn     func(context.Context, int64) (*model.Order, error)
	PingFn          func(context.Context) error

	mu             sync.Mutex
	Recorded       []model.WebhookSource
	PaymentEvents  []PaymentApplyCall
	RefundEvents   []string
	CarrierEvents  []int
	Dispatches     []DispatchCall
	dispatchSignal chan DispatchCall
}

// NewFacadeStub constructs a stub whose dispatch calls can be awaited.
func NewFacadeStub() *FacadeStub {
	return &FacadeStub{dispatchSignal: make(chan DispatchCall, 16)}
}

// RecordWebhook tracks the source and delegates to the override.
func (s *FacadeStub) RecordWebhook(ctx context.Context, source model.WebhookSource, body []byte) error {
	s.mu.Lock()
	s.Recorded = append(s.Recorded, source)
	s.mu.Unlock()
	if s.RecordWebhookFn != nil {
		return s.RecordWebhookFn(ctx, source, body)
	}
	return nil
}

// ApplyPaymentEvent tracks invocations and returns configured responses.
func (s *FacadeStub) ApplyPaymentEvent(ctx context.Context, orderID int64, gatewayPaymentID string, status model.PaymentStatus, method string, amount float64, raw json.RawMessage) (bool, error) {
	s.mu.Lock()
	s.PaymentEvents = append(s.PaymentEvents, PaymentApplyCall{
		OrderID:          orderID,
		GatewayPaymentID: gatewayPaymentID,
		Status:           status,
		Method:           method,
		Amount:           amount,
	})
	s.mu.Unlock()
	if s.ApplyPaymentFn != nil {
		return s.ApplyPaymentFn(ctx, orderID, gatewayPaymentID, status, method, amount, raw)
	}
	return true, nil
}

// ApplyRefundEvent tracks the gateway refund reference.
func (s *FacadeStub) ApplyRefundEvent(ctx context.Context, gatewayPaymentID, gatewayRefundID string, amount float64, refundType model.RefundType, note string) (bool, error) {
	s.mu.Lock()
	s.RefundEvents = append(s.RefundEvents, gatewayRefundID)
	s.mu.Unlock()
	if s.ApplyRefundFn != nil {
		return s.ApplyRefundFn(ctx, gatewayPaymentID, gatewayRefundID, amount, refundType, note)
	}
	return true, nil
}

// ApplyCarrierEvent tracks the raw status code and returns configured responses.
func (s *FacadeStub) ApplyCarrierEvent(ctx context.Context, orderID int64, statusCode int, statusText string, eventAt time.Time, awbCode, trackingURL string) (*model.Order, int, error) {
	s.mu.Lock()
	s.CarrierEvents = append(s.CarrierEvents, statusCode)
	s.mu.Unlock()
	if s.ApplyCarrierFn != nil {
		return s.ApplyCarrierFn(ctx, orderID, statusCode, statusText, eventAt, awbCode, trackingURL)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusShipped}, 0, nil
}

// DispatchCompensation records the call and signals waiters.
func (s *FacadeStub) DispatchCompensation(ctx context.Context, order *model.Order, actionCode int) {
	call := DispatchCall{OrderID: order.ID, ActionCode: actionCode}
	s.mu.Lock()
	s.Dispatches = append(s.Dispatches, call)
	s.mu.Unlock()
	if s.dispatchSignal != nil {
		select {
		case s.dispatchSignal <- call:
		default:
		}
	}
}

// WaitDispatch blocks until a compensation dispatch happens or the timeout expires.
func (s *FacadeStub) WaitDispatch(timeout time.Duration) (DispatchCall, bool) {
	select {
	case call := <-s.dispatchSignal:
		return call, true
	case <-time.After(timeout):
		return DispatchCall{}, false
	}
}

// CompleteOrder delegates to the override or returns a completed order.
func (s *FacadeStub) CompleteOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	if s.CompleteOrderFn != nil {
		return s.CompleteOrderFn(ctx, orderID)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusReadyToShip, PaymentStatus: model.PaymentStatusCompleted}, nil
}

// OrderByID delegates to the override or reports not found.
func (s *FacadeStub) OrderByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.OrderByIDFn != nil {
		return s.OrderByIDFn(ctx, id)
	}
	return nil, domainErrors.ErrNotFound
}

// Ping delegates to the override or succeeds.
func (s *FacadeStub) Ping(ctx context.Context) error {
	if s.PingFn != nil {
		return s.PingFn(ctx)
	}
	return nil
}

// DispatchCalls returns a snapshot of recorded dispatches.
func (s *FacadeStub) DispatchCalls() []DispatchCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DispatchCall, len(s.Dispatches))
	copy(out, s.Dispatches)
	return out
}
