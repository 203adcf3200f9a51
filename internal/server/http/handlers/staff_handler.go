package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/craftline/fulfillment/internal/domain/errors"
	"github.com/craftline/fulfillment/internal/server/http/dto"
	"github.com/craftline/fulfillment/internal/translator"
)

// StaffHandler exposes operator endpoints for stuck orders.
type StaffHandler struct {
	facade StaffFacade
	logger *slog.Logger
}

// NewStaffHandler constructs StaffHandler.
func NewStaffHandler(facade StaffFacade, logger *slog.Logger) *StaffHandler {
	return &StaffHandler{facade: facade, logger: logger}
}

// Complete handles POST /api/staff/orders/:id/complete. The gateway is
// queried for the authoritative charge state before the order advances.
func (h *StaffHandler) Complete(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.WebhookResponse{Error: "invalid order id"})
		return
	}

	order, err := h.facade.CompleteOrder(c.Request.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.WebhookResponse{Error: "order not found"})
		case errors.Is(err, domainErrors.ErrPaymentFailed):
			c.JSON(http.StatusPaymentRequired, dto.WebhookResponse{Error: "payment failed"})
		case errors.Is(err, domainErrors.ErrPaymentNotSettled):
			c.JSON(http.StatusConflict, dto.WebhookResponse{Error: "payment not settled"})
		default:
			c.JSON(http.StatusInternalServerError, dto.WebhookResponse{Error: "completion failed"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// Refund handles POST /api/staff/orders/:id/refund. The compensating
// sequence runs after the request is acknowledged.
func (h *StaffHandler) Refund(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.WebhookResponse{Error: "invalid order id"})
		return
	}

	order, err := h.facade.OrderByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.WebhookResponse{Error: "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.WebhookResponse{Error: "lookup failed"})
		return
	}

	h.logger.Info("staff refund requested", slog.Int64("order_id", order.ID))
	go h.facade.DispatchCompensation(detachedContext(c), order, translator.ActionReverseAndCancel)

	c.JSON(http.StatusAccepted, dto.WebhookResponse{Success: true, Message: "refund dispatched"})
}
