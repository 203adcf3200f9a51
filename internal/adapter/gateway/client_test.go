package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/craftline/fulfillment/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient("://bad-url", testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPClient("/relative", testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestFetchOrderPaid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/O1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"order_id":       "O1",
			"order_status":   "PAID",
			"cf_payment_id":  "cf_100",
			"order_amount":   499.0,
			"payment_method": "upi",
		})
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, testLogger())
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	charge, err := client.FetchOrder(context.Background(), "O1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if charge.State != model.GatewayOrderPaid {
		t.Fatalf("expected paid, got %s", charge.State)
	}
	if charge.GatewayPaymentID != "cf_100" || charge.Amount != 499 {
		t.Fatalf("unexpected charge: %+v", charge)
	}
}

func TestFetchOrderStates(t *testing.T) {
	cases := []struct {
		raw   string
		state model.GatewayOrderState
	}{
		{"PAID", model.GatewayOrderPaid},
		{"EXPIRED", model.GatewayOrderFailed},
		{"FAILED", model.GatewayOrderFailed},
		{"TERMINATED", model.GatewayOrderFailed},
		{"ACTIVE", model.GatewayOrderPending},
		{"", model.GatewayOrderPending},
	}
	for _, tc := range cases {
		if got := stateFromStatus(tc.raw); got != tc.state {
			t.Fatalf("%q: expected %s, got %s", tc.raw, tc.state, got)
		}
	}
}

func TestFetchOrderUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, _ := NewHTTPClient(server.URL, testLogger())
	if _, err := client.FetchOrder(context.Background(), "missing"); !errors.Is(err, ErrOrderUnknown) {
		t.Fatalf("expected ErrOrderUnknown, got %v", err)
	}
}

func TestFetchOrderRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, _ := NewHTTPClient(server.URL, testLogger())
	_, err := client.FetchOrder(context.Background(), "O1")
	var tooMany TooManyRequestsError
	if !errors.As(err, &tooMany) {
		t.Fatalf("expected TooManyRequestsError, got %v", err)
	}
	if tooMany.RetryAfter != 7*time.Second {
		t.Fatalf("expected 7s retry-after, got %s", tooMany.RetryAfter)
	}
}

func TestIssueRefundSendsIdempotentKey(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/O2/refunds" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"cf_refund_id": "rf_55", "refund_status": "SUCCESS"})
	}))
	defer server.Close()

	client, _ := NewHTTPClient(server.URL, testLogger())
	refundID, err := client.IssueRefund(context.Background(), "O2", 499, "delivery failed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refundID != "rf_55" {
		t.Fatalf("expected rf_55, got %q", refundID)
	}
	if received["refund_id"] != "rf-O2" {
		t.Fatalf("expected idempotency key rf-O2, got %v", received["refund_id"])
	}
	if received["refund_amount"] != 499.0 {
		t.Fatalf("expected amount 499, got %v", received["refund_amount"])
	}
}

func TestIssueRefundServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := NewHTTPClient(server.URL, testLogger())
	if _, err := client.IssueRefund(context.Background(), "O2", 499, ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter(""); got != 5*time.Second {
		t.Fatalf("expected default 5s, got %s", got)
	}
	if got := parseRetryAfter("12"); got != 12*time.Second {
		t.Fatalf("expected 12s, got %s", got)
	}
	if got := parseRetryAfter("garbage"); got != 5*time.Second {
		t.Fatalf("expected default 5s, got %s", got)
	}
}
