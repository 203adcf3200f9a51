package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/craftline/fulfillment/internal/domain/errors"
	"github.com/craftline/fulfillment/internal/domain/model"
	"github.com/craftline/fulfillment/internal/server/http/dto"
)

const (
	eventPaymentSuccess     = "PAYMENT_SUCCESS_WEBHOOK"
	eventPaymentFailed      = "PAYMENT_FAILED_WEBHOOK"
	eventPaymentUserDropped = "PAYMENT_USER_DROPPED_WEBHOOK"
	eventRefundStatus       = "REFUND_STATUS_WEBHOOK"
	eventAutoRefundStatus   = "AUTO_REFUND_STATUS_WEBHOOK"

	refundStatusSuccess = "SUCCESS"

	signatureHeader = "signature"
	timestampHeader = "timestamp"
)

// SignatureVerifier validates webhook authenticity.
type SignatureVerifier interface {
	Verify(signature, timestamp string, rawBody []byte) error
}

// PaymentWebhookHandler ingests payment gateway notifications.
type PaymentWebhookHandler struct {
	facade   WebhookFacade
	verifier SignatureVerifier
	logger   *slog.Logger
}

// NewPaymentWebhookHandler constructs PaymentWebhookHandler.
func NewPaymentWebhookHandler(facade WebhookFacade, verifier SignatureVerifier, logger *slog.Logger) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{facade: facade, verifier: verifier, logger: logger}
}

// Handle processes POST /api/webhooks/payment. The raw body is read before
// any parsing because the signature covers the exact bytes; authentication
// failure means nothing is parsed or persisted.
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.WebhookResponse{Error: "unreadable body"})
		return
	}

	signature := c.GetHeader(signatureHeader)
	timestamp := c.GetHeader(timestampHeader)
	if signature == "" || timestamp == "" {
		c.JSON(http.StatusBadRequest, dto.WebhookResponse{Error: "missing signature headers"})
		return
	}
	if err := h.verifier.Verify(signature, timestamp, body); err != nil {
		c.JSON(http.StatusUnauthorized, dto.WebhookResponse{Error: "invalid signature"})
		return
	}

	if err := h.facade.RecordWebhook(c.Request.Context(), model.WebhookSourcePayment, body); err != nil {
		h.logger.Error("webhook inbox store failed", slog.String("error", err.Error()))
	}

	var req dto.PaymentWebhook
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.WebhookResponse{Error: "malformed payload"})
		return
	}

	switch req.Type {
	case eventPaymentSuccess:
		h.applyPayment(c, req, body, model.PaymentStatusCompleted)
	case eventPaymentFailed, eventPaymentUserDropped:
		h.applyPayment(c, req, body, model.PaymentStatusFailed)
	case eventRefundStatus, eventAutoRefundStatus:
		h.applyRefund(c, req)
	default:
		c.JSON(http.StatusOK, dto.WebhookResponse{Success: true, Message: "event ignored"})
	}
}

func (h *PaymentWebhookHandler) applyPayment(c *gin.Context, req dto.PaymentWebhook, body []byte, status model.PaymentStatus) {
	orderID, ok := paymentOrderID(req.Data)
	if !ok {
		c.JSON(http.StatusBadRequest, dto.WebhookResponse{Error: "missing order_id"})
		return
	}

	var (
		gatewayPaymentID string
		method           string
		amount           float64
	)
	if req.Data.Payment != nil {
		gatewayPaymentID = req.Data.Payment.GatewayPaymentID
		method = req.Data.Payment.PaymentMethod
		amount = req.Data.Payment.PaymentAmount
	}
	if amount == 0 && req.Data.Order != nil {
		amount = req.Data.Order.OrderAmount
	}
	if gatewayPaymentID == "" {
		c.JSON(http.StatusBadRequest, dto.WebhookResponse{Error: "missing cf_payment_id"})
		return
	}

	applied, err := h.facade.ApplyPaymentEvent(c.Request.Context(), orderID, gatewayPaymentID, status, method, amount, json.RawMessage(body))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			h.logger.Warn("payment webhook for unknown order", slog.Int64("order_id", orderID))
			c.JSON(http.StatusOK, dto.WebhookResponse{Success: true, Message: "order not found, ignored"})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.WebhookResponse{Error: "processing failed"})
		return
	}

	message := "applied"
	if !applied {
		message = "already applied"
	}
	c.JSON(http.StatusOK, dto.WebhookResponse{
		Success:   true,
		Message:   message,
		CfOrderID: strconv.FormatInt(orderID, 10),
		Status:    string(status),
	})
}

func (h *PaymentWebhookHandler) applyRefund(c *gin.Context, req dto.PaymentWebhook) {
	refund := req.Data.Refund
	if refund == nil {
		refund = req.Data.AutoRefund
	}
	if refund == nil {
		c.JSON(http.StatusBadRequest, dto.WebhookResponse{Error: "missing refund payload"})
		return
	}
	if refund.RefundStatus != refundStatusSuccess {
		c.JSON(http.StatusOK, dto.WebhookResponse{Success: true, Message: "refund status ignored"})
		return
	}

	applied, err := h.facade.ApplyRefundEvent(c.Request.Context(), refund.GatewayPaymentID, refund.GatewayRefundID, refund.RefundAmount, model.RefundTypeGateway, refund.RefundNote)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			h.logger.Warn("refund webhook for unknown payment", slog.String("cf_payment_id", refund.GatewayPaymentID))
			c.JSON(http.StatusOK, dto.WebhookResponse{Success: true, Message: "payment not found, ignored"})
		case errors.Is(err, domainErrors.ErrInvalidTransition):
			c.JSON(http.StatusConflict, dto.WebhookResponse{Error: "payment not refundable"})
		default:
			c.JSON(http.StatusInternalServerError, dto.WebhookResponse{Error: "processing failed"})
		}
		return
	}

	message := "refund applied"
	if !applied {
		message = "refund already applied"
	}
	c.JSON(http.StatusOK, dto.WebhookResponse{Success: true, Message: message})
}

// paymentOrderID prefers the payment sub-object reference and falls back to
// the order sub-object.
func paymentOrderID(data dto.PaymentWebhookData) (int64, bool) {
	if data.Payment != nil && data.Payment.OrderID != nil {
		return int64(*data.Payment.OrderID), true
	}
	if data.Order != nil && data.Order.OrderID != nil {
		return int64(*data.Order.OrderID), true
	}
	return 0, false
}

// detachedContext carries request values past the response without its
// cancellation, for work that outlives the acknowledgment.
func detachedContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
