package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	domainErrors "github.com/craftline/fulfillment/internal/domain/errors"
	"github.com/craftline/fulfillment/internal/domain/model"
	"github.com/craftline/fulfillment/internal/pkg/retry"
	testhelpers "github.com/craftline/fulfillment/internal/test"
	"github.com/craftline/fulfillment/internal/translator"
	"github.com/craftline/fulfillment/internal/usecase"
)

type facadeFixture struct {
	facade  *FulfillmentFacade
	repos   *testhelpers.FactoryStub
	gateway *testhelpers.GatewayStub
	carrier *testhelpers.CarrierStub
	health  *testhelpers.HealthCheckerStub
}

func newFacadeFixture() *facadeFixture {
	repos := testhelpers.NewFactoryStub()
	gateway := &testhelpers.GatewayStub{}
	carrier := &testhelpers.CarrierStub{}
	health := &testhelpers.HealthCheckerStub{}

	payments := usecase.NewPaymentUseCase(repos.PaymentRepo)
	deliveries := usecase.NewDeliveryUseCase(repos.OrderRepo)
	dispatcher := usecase.NewCompensationDispatcher(
		repos.PaymentRepo,
		gateway,
		carrier,
		retry.Config{Attempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	return &facadeFixture{
		facade:  NewFulfillmentFacade(payments, deliveries, dispatcher, gateway, repos.InboxRepo, health),
		repos:   repos,
		gateway: gateway,
		carrier: carrier,
		health:  health,
	}
}

func TestFacadeRecordWebhook(t *testing.T) {
	f := newFacadeFixture()

	if err := f.facade.RecordWebhook(context.Background(), model.WebhookSourceCarrier, []byte(`{"order_id":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := f.repos.InboxRepo.Stored()
	if len(entries) != 1 {
		t.Fatalf("expected one inbox entry, got %d", len(entries))
	}
	if entries[0].Source != model.WebhookSourceCarrier || string(entries[0].Body) != `{"order_id":1}` {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestFacadeApplyCarrierEvent(t *testing.T) {
	f := newFacadeFixture()
	f.repos.OrderRepo.Orders[10] = &model.Order{ID: 10, Status: model.OrderStatusShipped}

	order, action, err := f.facade.ApplyCarrierEvent(context.Background(), 10, 9, "", time.Now(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action != translator.ActionReturnToOrigin {
		t.Fatalf("expected return action, got %d", action)
	}
	if order.Status != model.OrderStatusReturnInitiated {
		t.Fatalf("unexpected order status %s", order.Status)
	}
}

func TestFacadeDispatchCompensation(t *testing.T) {
	f := newFacadeFixture()

	order := &model.Order{ID: 3, CarrierOrderID: "c-3", Total: 30}
	f.facade.DispatchCompensation(context.Background(), order, translator.ActionReturnToOrigin)

	if len(f.gateway.Refunds()) != 1 {
		t.Fatal("expected refund to be requested")
	}
	if len(f.carrier.Returns()) != 1 {
		t.Fatal("expected return to be created")
	}
}

func TestFacadeCompleteOrderPaid(t *testing.T) {
	f := newFacadeFixture()
	f.repos.OrderRepo.Orders[20] = &model.Order{ID: 20, Status: model.OrderStatusNew, PaymentStatus: model.PaymentStatusPending}
	f.gateway.FetchOrderFn = func(ctx context.Context, orderID string) (*model.GatewayCharge, error) {
		return &model.GatewayCharge{
			OrderID:          orderID,
			GatewayPaymentID: "pay-20",
			State:            model.GatewayOrderPaid,
			Amount:           75,
			Method:           "card",
		}, nil
	}

	order, err := f.facade.CompleteOrder(context.Background(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 20 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if len(f.repos.PaymentRepo.ApplyCalls) != 1 {
		t.Fatalf("expected one payment apply, got %d", len(f.repos.PaymentRepo.ApplyCalls))
	}
	call := f.repos.PaymentRepo.ApplyCalls[0]
	if call.GatewayPaymentID != "pay-20" || call.Status != model.PaymentStatusCompleted {
		t.Fatalf("unexpected apply call: %+v", call)
	}
}

func TestFacadeCompleteOrderFailed(t *testing.T) {
	f := newFacadeFixture()
	f.repos.OrderRepo.Orders[20] = &model.Order{ID: 20, Status: model.OrderStatusNew}
	f.gateway.FetchOrderFn = func(ctx context.Context, orderID string) (*model.GatewayCharge, error) {
		return &model.GatewayCharge{State: model.GatewayOrderFailed}, nil
	}

	if _, err := f.facade.CompleteOrder(context.Background(), 20); err != domainErrors.ErrPaymentFailed {
		t.Fatalf("expected payment failed, got %v", err)
	}
	if len(f.repos.PaymentRepo.ApplyCalls) != 0 {
		t.Fatal("failed charge must not be applied")
	}
}

func TestFacadeCompleteOrderPending(t *testing.T) {
	f := newFacadeFixture()
	f.repos.OrderRepo.Orders[20] = &model.Order{ID: 20, Status: model.OrderStatusNew}
	f.gateway.FetchOrderFn = func(ctx context.Context, orderID string) (*model.GatewayCharge, error) {
		return &model.GatewayCharge{State: model.GatewayOrderPending}, nil
	}

	if _, err := f.facade.CompleteOrder(context.Background(), 20); err != domainErrors.ErrPaymentNotSettled {
		t.Fatalf("expected payment not settled, got %v", err)
	}
}

func TestFacadeCompleteOrderUnknownToGateway(t *testing.T) {
	f := newFacadeFixture()
	f.repos.OrderRepo.Orders[20] = &model.Order{ID: 20, Status: model.OrderStatusNew}
	f.gateway.FetchOrderFn = func(ctx context.Context, orderID string) (*model.GatewayCharge, error) {
		return nil, domainErrors.ErrNotFound
	}

	if _, err := f.facade.CompleteOrder(context.Background(), 20); err != domainErrors.ErrPaymentNotSettled {
		t.Fatalf("expected payment not settled, got %v", err)
	}
}

func TestFacadeCompleteOrderMissingOrder(t *testing.T) {
	f := newFacadeFixture()

	if _, err := f.facade.CompleteOrder(context.Background(), 999); err != domainErrors.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(f.gateway.FetchCalls) != 0 {
		t.Fatal("gateway must not be queried for unknown orders")
	}
}

func TestFacadePing(t *testing.T) {
	f := newFacadeFixture()
	if err := f.facade.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.health.Err = errors.New("db down")
	if err := f.facade.Ping(context.Background()); err == nil {
		t.Fatal("expected health error to propagate")
	}
}
