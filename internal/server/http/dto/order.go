package dto

import (
	"time"

	"github.com/craftline/fulfillment/internal/domain/model"
)

// OrderResponse is the staff-facing order projection.
type OrderResponse struct {
	ID               int64      `json:"id"`
	Total            float64    `json:"total"`
	Status           string     `json:"status"`
	PaymentStatus    string     `json:"payment_status"`
	AWBCode          string     `json:"awb_code,omitempty"`
	TrackingURL      string     `json:"tracking_url,omitempty"`
	LatestStatusCode *int       `json:"latest_status_code,omitempty"`
	LatestStatusText string     `json:"latest_status_text,omitempty"`
	LatestStatusAt   *time.Time `json:"latest_status_at,omitempty"`
	PreviousStatuses []int      `json:"previous_statuses,omitempty"`
}

// ToOrderResponse converts the domain order to its transport shape.
func ToOrderResponse(order *model.Order) OrderResponse {
	return OrderResponse{
		ID:               order.ID,
		Total:            order.Total,
		Status:           string(order.Status),
		PaymentStatus:    string(order.PaymentStatus),
		AWBCode:          order.AWBCode,
		TrackingURL:      order.TrackingURL,
		LatestStatusCode: order.LatestStatusCode,
		LatestStatusText: order.LatestStatusText,
		LatestStatusAt:   order.LatestStatusAt,
		PreviousStatuses: order.PreviousStatuses,
	}
}
