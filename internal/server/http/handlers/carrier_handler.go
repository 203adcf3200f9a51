package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/craftline/fulfillment/internal/domain/errors"
	"github.com/craftline/fulfillment/internal/domain/model"
	"github.com/craftline/fulfillment/internal/server/http/dto"
	"github.com/craftline/fulfillment/internal/translator"
)

// timestampLayouts are tried in order when parsing carrier event times.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// CarrierWebhookHandler ingests shipping carrier tracking notifications.
type CarrierWebhookHandler struct {
	facade WebhookFacade
	logger *slog.Logger
}

// NewCarrierWebhookHandler constructs CarrierWebhookHandler.
func NewCarrierWebhookHandler(facade WebhookFacade, logger *slog.Logger) *CarrierWebhookHandler {
	return &CarrierWebhookHandler{facade: facade, logger: logger}
}

// Handle processes POST /api/webhooks/carrier. Every event with an order_id
// is acknowledged with 200, unknown orders included, so the carrier does not
// endlessly redeliver. Compensating actions run after the acknowledgment.
func (h *CarrierWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.WebhookResponse{Error: "unreadable body"})
		return
	}

	if err := h.facade.RecordWebhook(c.Request.Context(), model.WebhookSourceCarrier, body); err != nil {
		h.logger.Error("webhook inbox store failed", slog.String("error", err.Error()))
	}

	var req dto.CarrierWebhook
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.WebhookResponse{Error: "malformed payload"})
		return
	}
	if req.OrderID == nil {
		c.JSON(http.StatusBadRequest, dto.WebhookResponse{Error: "missing order_id"})
		return
	}

	statusText := req.CurrentStatus
	if statusText == "" {
		statusText = req.ShipmentStatus
	}
	eventAt := parseEventTime(req.CurrentTimestamp)

	order, action, err := h.facade.ApplyCarrierEvent(c.Request.Context(), int64(*req.OrderID), req.CurrentStatusID, statusText, eventAt, req.AWBCode, req.TrackingURL)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			h.logger.Warn("carrier webhook for unknown order", slog.Int64("order_id", int64(*req.OrderID)))
			c.JSON(http.StatusOK, dto.WebhookResponse{Success: true, Message: "order not found, ignored"})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.WebhookResponse{Error: "processing failed"})
		return
	}

	if action != translator.ActionNone {
		go h.facade.DispatchCompensation(detachedContext(c), order, action)
	}

	c.JSON(http.StatusOK, dto.WebhookResponse{Success: true, Message: "applied", Status: string(order.Status)})
}

func parseEventTime(raw string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Now()
}
