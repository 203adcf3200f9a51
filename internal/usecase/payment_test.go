package usecase

import (
	"context"
	"encoding/json"
	"testing"

	domainErrors "github.com/craftline/fulfillment/internal/domain/errors"
	"github.com/craftline/fulfillment/internal/domain/model"
	testhelpers "github.com/craftline/fulfillment/internal/test"
)

func TestPaymentUseCaseApplyGatewayEvent(t *testing.T) {
	repo := &testhelpers.PaymentRepositoryStub{}
	uc := NewPaymentUseCase(repo)

	applied, err := uc.ApplyGatewayEvent(context.Background(), 7, "pay-7", model.PaymentStatusCompleted, "upi", 120.50, json.RawMessage(`{"ok":true}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !applied {
		t.Fatal("expected event to be applied")
	}
	if len(repo.ApplyCalls) != 1 {
		t.Fatalf("expected one repository call, got %d", len(repo.ApplyCalls))
	}
	call := repo.ApplyCalls[0]
	if call.OrderID != 7 || call.GatewayPaymentID != "pay-7" || call.Status != model.PaymentStatusCompleted || call.Amount != 120.50 {
		t.Fatalf("unexpected call arguments: %+v", call)
	}
}

func TestPaymentUseCaseApplyGatewayEventDuplicate(t *testing.T) {
	repo := &testhelpers.PaymentRepositoryStub{
		ApplyFn: func(context.Context, int64, string, model.PaymentStatus, string, float64, json.RawMessage) (bool, error) {
			return false, nil
		},
	}
	uc := NewPaymentUseCase(repo)

	applied, err := uc.ApplyGatewayEvent(context.Background(), 7, "pay-7", model.PaymentStatusCompleted, "upi", 120.50, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied {
		t.Fatal("duplicate event must not report applied")
	}
}

func TestPaymentUseCaseApplyRefundFillsRefund(t *testing.T) {
	repo := &testhelpers.PaymentRepositoryStub{}
	uc := NewPaymentUseCase(repo)

	applied, err := uc.ApplyRefund(context.Background(), "pay-7", "rf-7", 120.50, model.RefundTypeGateway, "gateway confirmed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !applied {
		t.Fatal("expected refund to be applied")
	}
	if len(repo.Refunds) != 1 {
		t.Fatalf("expected one refund, got %d", len(repo.Refunds))
	}
	refund := repo.Refunds[0]
	if refund.GatewayRefundID != "rf-7" || refund.Amount != 120.50 || refund.Type != model.RefundTypeGateway {
		t.Fatalf("unexpected refund: %+v", refund)
	}
	if refund.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatal("refund id must be generated")
	}
	if refund.CreatedAt.IsZero() {
		t.Fatal("refund timestamp must be set")
	}
}

func TestPaymentUseCaseLatestByOrderPropagatesNotFound(t *testing.T) {
	uc := NewPaymentUseCase(&testhelpers.PaymentRepositoryStub{Payments: map[string]*model.Payment{}})

	if _, err := uc.LatestByOrder(context.Background(), 99); err != domainErrors.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
