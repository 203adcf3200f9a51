package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	domainErrors "github.com/craftline/fulfillment/internal/domain/errors"
	"github.com/craftline/fulfillment/internal/domain/model"
)

// ErrOrderUnknown indicates the gateway has no record of the order.
var ErrOrderUnknown = fmt.Errorf("order unknown to gateway: %w", domainErrors.ErrNotFound)

// TooManyRequestsError represents rate limiting signal from the gateway.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Client exposes operations against the payment gateway.
type Client interface {
	FetchOrder(ctx context.Context, orderID string) (*model.GatewayCharge, error)
	IssueRefund(ctx context.Context, orderID string, amount float64, note string) (string, error)
}

// HTTPClient implements Client via the gateway HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// orderResponse mirrors the gateway's order JSON payload.
type orderResponse struct {
	OrderID       string  `json:"order_id"`
	OrderStatus   string  `json:"order_status"`
	CfPaymentID   string  `json:"cf_payment_id"`
	OrderAmount   float64 `json:"order_amount"`
	PaymentMethod string  `json:"payment_method"`
}

// refundResponse mirrors the gateway's refund JSON payload.
type refundResponse struct {
	RefundID     string `json:"cf_refund_id"`
	RefundStatus string `json:"refund_status"`
}

// NewHTTPClient creates HTTP gateway client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// FetchOrder queries the gateway for its view of the order's charge. Used by
// staff-initiated completion to re-verify settlement before mutating state.
func (c *HTTPClient) FetchOrder(ctx context.Context, orderID string) (*model.GatewayCharge, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/orders/", orderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		var data orderResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, err
		}
		return &model.GatewayCharge{
			OrderID:          data.OrderID,
			GatewayPaymentID: data.CfPaymentID,
			State:            stateFromStatus(data.OrderStatus),
			Amount:           data.OrderAmount,
			Method:           data.PaymentMethod,
		}, nil
	case http.StatusNotFound:
		return nil, ErrOrderUnknown
	case http.StatusTooManyRequests:
		return nil, TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("gateway order request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("gateway error: %s", resp.Status)
	}
}

// IssueRefund requests a refund for the order's recorded charge. The refund
// request key is derived from the order id, so the gateway treats repeated
// calls for the same order as already done.
func (c *HTTPClient) IssueRefund(ctx context.Context, orderID string, amount float64, note string) (string, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/orders/", orderID, "/refunds")

	payload, err := json.Marshal(map[string]any{
		"refund_id":     "rf-" + orderID,
		"refund_amount": amount,
		"refund_note":   note,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}
		var data refundResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return "", err
		}
		return data.RefundID, nil
	case http.StatusNotFound:
		return "", ErrOrderUnknown
	case http.StatusTooManyRequests:
		return "", TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("gateway refund request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return "", fmt.Errorf("gateway error: %s", resp.Status)
	}
}

func stateFromStatus(status string) model.GatewayOrderState {
	switch status {
	case "PAID":
		return model.GatewayOrderPaid
	case "EXPIRED", "FAILED", "TERMINATED":
		return model.GatewayOrderFailed
	default:
		return model.GatewayOrderPending
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
