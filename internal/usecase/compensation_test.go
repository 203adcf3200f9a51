package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/craftline/fulfillment/internal/domain/model"
	"github.com/craftline/fulfillment/internal/pkg/retry"
	testhelpers "github.com/craftline/fulfillment/internal/test"
	"github.com/craftline/fulfillment/internal/translator"
)

func newTestDispatcher(payments *testhelpers.PaymentRepositoryStub, gateway *testhelpers.GatewayStub, carrier *testhelpers.CarrierStub) *CompensationDispatcher {
	cfg := retry.Config{
		Attempts:  3,
		BaseDelay: time.Millisecond,
		MaxDelay:  time.Millisecond,
		Sleep:     func(context.Context, time.Duration) error { return nil },
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCompensationDispatcher(payments, gateway, carrier, cfg, logger)
}

func completedPayment(orderID int64) *model.Payment {
	return &model.Payment{ID: 1, OrderID: orderID, GatewayPaymentID: "pay-1", Status: model.PaymentStatusCompleted}
}

func TestDispatchIgnoresInformationalCodes(t *testing.T) {
	gateway := &testhelpers.GatewayStub{}
	carrier := &testhelpers.CarrierStub{}
	d := newTestDispatcher(&testhelpers.PaymentRepositoryStub{}, gateway, carrier)

	order := &model.Order{ID: 1, CarrierOrderID: "c-1", Total: 50}
	for _, action := range []int{translator.ActionNone, 1, 2, 4, 6} {
		d.Dispatch(context.Background(), order, action)
	}

	if len(gateway.Refunds()) != 0 || len(carrier.CancelledIDs()) != 0 || len(carrier.Returns()) != 0 {
		t.Fatal("informational action codes must not trigger external calls")
	}
}

func TestDispatchReturnToOriginRefundsAndCreatesReturn(t *testing.T) {
	gateway := &testhelpers.GatewayStub{}
	carrier := &testhelpers.CarrierStub{}
	d := newTestDispatcher(&testhelpers.PaymentRepositoryStub{}, gateway, carrier)

	order := &model.Order{ID: 42, CarrierOrderID: "c-42", ShipmentID: "s-42", Total: 120.50}
	d.Dispatch(context.Background(), order, translator.ActionReturnToOrigin)

	refunds := gateway.Refunds()
	if len(refunds) != 1 {
		t.Fatalf("expected one refund request, got %d", len(refunds))
	}
	if refunds[0].OrderID != "42" || refunds[0].Amount != 120.50 {
		t.Fatalf("unexpected refund request: %+v", refunds[0])
	}
	if got := carrier.Returns(); len(got) != 1 || got[0] != 42 {
		t.Fatalf("expected one return for order 42, got %v", got)
	}
	if len(carrier.CancelledIDs()) != 0 {
		t.Fatal("return to origin must not cancel the shipment")
	}
}

func TestDispatchReturnToOriginSurvivesRefundFailure(t *testing.T) {
	gateway := &testhelpers.GatewayStub{
		IssueRefundFn: func(context.Context, string, float64, string) (string, error) {
			return "", errors.New("gateway down")
		},
	}
	carrier := &testhelpers.CarrierStub{}
	d := newTestDispatcher(&testhelpers.PaymentRepositoryStub{}, gateway, carrier)

	order := &model.Order{ID: 42, CarrierOrderID: "c-42", Total: 10}
	d.Dispatch(context.Background(), order, translator.ActionReturnToOrigin)

	if len(gateway.Refunds()) != 3 {
		t.Fatalf("refund must be attempted three times, got %d", len(gateway.Refunds()))
	}
	if len(carrier.Returns()) != 1 {
		t.Fatal("return creation must still run after the refund fails")
	}
}

func TestDispatchReverseAndCancelRefundsCompletedPayment(t *testing.T) {
	payments := &testhelpers.PaymentRepositoryStub{
		Payments: map[string]*model.Payment{"pay-1": completedPayment(42)},
	}
	gateway := &testhelpers.GatewayStub{}
	carrier := &testhelpers.CarrierStub{}
	d := newTestDispatcher(payments, gateway, carrier)

	order := &model.Order{ID: 42, CarrierOrderID: "c-42", Total: 99}
	d.Dispatch(context.Background(), order, translator.ActionReverseAndCancel)

	if len(gateway.Refunds()) != 1 {
		t.Fatalf("expected one refund request, got %d", len(gateway.Refunds()))
	}
	if got := carrier.CancelledIDs(); len(got) != 1 || got[0] != "c-42" {
		t.Fatalf("expected shipment c-42 cancelled, got %v", got)
	}
}

func TestDispatchReverseAndCancelSkipsRefundWhenNotCompleted(t *testing.T) {
	payments := &testhelpers.PaymentRepositoryStub{
		Payments: map[string]*model.Payment{
			"pay-1": {ID: 1, OrderID: 42, GatewayPaymentID: "pay-1", Status: model.PaymentStatusRefunded},
		},
	}
	gateway := &testhelpers.GatewayStub{}
	carrier := &testhelpers.CarrierStub{}
	d := newTestDispatcher(payments, gateway, carrier)

	order := &model.Order{ID: 42, CarrierOrderID: "c-42", Total: 99}
	d.Dispatch(context.Background(), order, translator.ActionReverseAndCancel)

	if len(gateway.Refunds()) != 0 {
		t.Fatal("already refunded payment must not be refunded again")
	}
	if len(carrier.CancelledIDs()) != 1 {
		t.Fatal("shipment must still be cancelled")
	}
}

func TestDispatchReverseAndCancelSkipsRefundWhenNoPayment(t *testing.T) {
	gateway := &testhelpers.GatewayStub{}
	carrier := &testhelpers.CarrierStub{}
	d := newTestDispatcher(&testhelpers.PaymentRepositoryStub{Payments: map[string]*model.Payment{}}, gateway, carrier)

	order := &model.Order{ID: 42, CarrierOrderID: "c-42", Total: 99}
	d.Dispatch(context.Background(), order, translator.ActionReverseAndCancel)

	if len(gateway.Refunds()) != 0 {
		t.Fatal("order without payments must not be refunded")
	}
	if len(carrier.CancelledIDs()) != 1 {
		t.Fatal("shipment must still be cancelled")
	}
}

func TestDispatchCancelRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	carrier := &testhelpers.CarrierStub{
		CancelFn: func(context.Context, string) error {
			attempts++
			if attempts < 3 {
				return errors.New("carrier timeout")
			}
			return nil
		},
	}
	d := newTestDispatcher(&testhelpers.PaymentRepositoryStub{Payments: map[string]*model.Payment{}}, &testhelpers.GatewayStub{}, carrier)

	d.Dispatch(context.Background(), &model.Order{ID: 1, CarrierOrderID: "c-1"}, translator.ActionReverseAndCancel)

	if attempts != 3 {
		t.Fatalf("expected three cancel attempts, got %d", attempts)
	}
}
