package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/craftline/fulfillment/internal/domain/model"
)

// ErrShipmentUnknown indicates the carrier has no record of the shipment.
var ErrShipmentUnknown = errors.New("shipment unknown to carrier")

// Client exposes operations against the shipping carrier.
type Client interface {
	CancelShipment(ctx context.Context, carrierOrderID string) error
	CreateReturn(ctx context.Context, order *model.Order) (string, error)
}

// HTTPClient implements Client via the carrier HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type returnResponse struct {
	ReturnOrderID string `json:"order_id"`
	Status        string `json:"status"`
}

// NewHTTPClient creates HTTP carrier client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse carrier url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("carrier url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// CancelShipment asks the carrier to cancel the shipment. The carrier treats
// cancelling an already-cancelled shipment as success, so the call is safe to
// retry.
func (c *HTTPClient) CancelShipment(ctx context.Context, carrierOrderID string) error {
	payload, err := json.Marshal(map[string]any{"ids": []string{carrierOrderID}})
	if err != nil {
		return err
	}
	resp, err := c.post(ctx, "/orders/cancel", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		return nil
	case http.StatusNotFound:
		return ErrShipmentUnknown
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("carrier cancel failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return fmt.Errorf("carrier error: %s", resp.Status)
	}
}

// CreateReturn registers a return shipment for an undeliverable order and
// returns the carrier's return order reference.
func (c *HTTPClient) CreateReturn(ctx context.Context, order *model.Order) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"order_id":    order.CarrierOrderID,
		"shipment_id": order.ShipmentID,
		"awb_code":    order.AWBCode,
	})
	if err != nil {
		return "", err
	}
	resp, err := c.post(ctx, "/orders/create/return", payload)
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
		var data returnResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return "", err
		}
		return data.ReturnOrderID, nil
	case http.StatusNotFound:
		return "", ErrShipmentUnknown
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("carrier return failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return "", fmt.Errorf("carrier error: %s", resp.Status)
	}
}

func (c *HTTPClient) post(ctx context.Context, endpointPath string, payload []byte) (*http.Response, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, endpointPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}
