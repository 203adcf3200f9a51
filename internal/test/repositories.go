package test

import (
	"context"
	"encoding/json"
	"sync"

	domainErrors "github.com/craftline/fulfillment/internal/domain/errors"
	"github.com/craftline/fulfillment/internal/domain/model"
	"github.com/craftline/fulfillment/internal/domain/repository"
)

// OrderRepositoryStub allows tests to customize behaviour.
type OrderRepositoryStub struct {
	GetByIDFn            func(context.Context, int64) (*model.Order, error)
	ApplyDeliveryEventFn func(context.Context, model.DeliveryStatusEvent, model.OrderStatus, string, string) (*model.Order, error)

	Orders        map[int64]*model.Order
	AppliedEvents []model.DeliveryStatusEvent
}

// GetByID returns matched order either via override or stored map.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	if order, ok := s.Orders[id]; ok {
		return order, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ApplyDeliveryEvent tracks invocations and returns configured responses.
func (s *OrderRepositoryStub) ApplyDeliveryEvent(ctx context.Context, event model.DeliveryStatusEvent, status model.OrderStatus, awbCode, trackingURL string) (*model.Order, error) {
	s.AppliedEvents = append(s.AppliedEvents, event)
	if s.ApplyDeliveryEventFn != nil {
		return s.ApplyDeliveryEventFn(ctx, event, status, awbCode, trackingURL)
	}
	if order, ok := s.Orders[event.OrderID]; ok {
		order.Status = status
		code := event.StatusCode
		order.LatestStatusCode = &code
		order.LatestStatusText = event.StatusText
		order.PreviousStatuses = append(order.PreviousStatuses, event.StatusCode)
		return order, nil
	}
	return nil, domainErrors.ErrNotFound
}

// PaymentApplyCall captures a single Apply invocation.
type PaymentApplyCall struct {
	OrderID          int64
	GatewayPaymentID string
	Status           model.PaymentStatus
	Method           string
	Amount           float64
}

// PaymentRepositoryStub allows tests to customize behaviour.
type PaymentRepositoryStub struct {
	GetByGatewayIDFn func(context.Context, string) (*model.Payment, error)
	GetLatestFn      func(context.Context, int64) (*model.Payment, error)
	ApplyFn          func(context.Context, int64, string, model.PaymentStatus, string, float64, json.RawMessage) (bool, error)
	MarkRefundedFn   func(context.Context, string, model.Refund) (bool, error)

	Payments   map[string]*model.Payment
	ApplyCalls []PaymentApplyCall
	Refunds    []model.Refund
}

// GetByGatewayID returns matched payment either via override or stored map.
func (s *PaymentRepositoryStub) GetByGatewayID(ctx context.Context, gatewayPaymentID string) (*model.Payment, error) {
	if s.GetByGatewayIDFn != nil {
		return s.GetByGatewayIDFn(ctx, gatewayPaymentID)
	}
	if payment, ok := s.Payments[gatewayPaymentID]; ok {
		return payment, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetLatestByOrder returns the newest stored payment for the order.
func (s *PaymentRepositoryStub) GetLatestByOrder(ctx context.Context, orderID int64) (*model.Payment, error) {
	if s.GetLatestFn != nil {
		return s.GetLatestFn(ctx, orderID)
	}
	var latest *model.Payment
	for _, p := range s.Payments {
		if p.OrderID != orderID {
			continue
		}
		if latest == nil || p.ID > latest.ID {
			latest = p
		}
	}
	if latest == nil {
		return nil, domainErrors.ErrNotFound
	}
	return latest, nil
}

// Apply tracks invocations and returns configured responses.
func (s *PaymentRepositoryStub) Apply(ctx context.Context, orderID int64, gatewayPaymentID string, status model.PaymentStatus, method string, amount float64, raw json.RawMessage) (bool, error) {
	s.ApplyCalls = append(s.ApplyCalls, PaymentApplyCall{
		OrderID:          orderID,
		GatewayPaymentID: gatewayPaymentID,
		Status:           status,
		Method:           method,
		Amount:           amount,
	})
	if s.ApplyFn != nil {
		return s.ApplyFn(ctx, orderID, gatewayPaymentID, status, method, amount, raw)
	}
	return true, nil
}

// MarkRefunded tracks refunds and returns configured responses.
func (s *PaymentRepositoryStub) MarkRefunded(ctx context.Context, gatewayPaymentID string, refund model.Refund) (bool, error) {
	s.Refunds = append(s.Refunds, refund)
	if s.MarkRefundedFn != nil {
		return s.MarkRefundedFn(ctx, gatewayPaymentID, refund)
	}
	return true, nil
}

// InboxRepositoryStub records stored webhook bodies.
type InboxRepositoryStub struct {
	StoreFn func(context.Context, model.WebhookInboxEntry) error

	mu      sync.Mutex
	Entries []model.WebhookInboxEntry
}

// Store tracks the entry and delegates to the override when present.
func (s *InboxRepositoryStub) Store(ctx context.Context, entry model.WebhookInboxEntry) error {
	s.mu.Lock()
	s.Entries = append(s.Entries, entry)
	s.mu.Unlock()
	if s.StoreFn != nil {
		return s.StoreFn(ctx, entry)
	}
	return nil
}

// Stored returns a snapshot of recorded entries.
func (s *InboxRepositoryStub) Stored() []model.WebhookInboxEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.WebhookInboxEntry, len(s.Entries))
	copy(out, s.Entries)
	return out
}

// FactoryStub bundles repository stubs behind the factory interface.
type FactoryStub struct {
	OrderRepo   *OrderRepositoryStub
	PaymentRepo *PaymentRepositoryStub
	InboxRepo   *InboxRepositoryStub
}

// NewFactoryStub builds a factory with fresh stub repositories.
func NewFactoryStub() *FactoryStub {
	return &FactoryStub{
		OrderRepo:   &OrderRepositoryStub{Orders: make(map[int64]*model.Order)},
		PaymentRepo: &PaymentRepositoryStub{Payments: make(map[string]*model.Payment)},
		InboxRepo:   &InboxRepositoryStub{},
	}
}

// Orders returns the order repository stub.
func (f *FactoryStub) Orders() repository.OrderRepository { return f.OrderRepo }

// Payments returns the payment repository stub.
func (f *FactoryStub) Payments() repository.PaymentRepository { return f.PaymentRepo }

// Inbox returns the inbox repository stub.
func (f *FactoryStub) Inbox() repository.InboxRepository { return f.InboxRepo }
