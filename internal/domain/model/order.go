package model

import "time"

// OrderStatus describes order fulfillment lifecycle.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "NEW"
	OrderStatusReadyToShip     OrderStatus = "READY_TO_SHIP"
	OrderStatusShipped         OrderStatus = "SHIPPED"
	OrderStatusOutForDelivery  OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered       OrderStatus = "DELIVERED"
	OrderStatusReturnInitiated OrderStatus = "RETURN_INITIATED"
	OrderStatusReturned        OrderStatus = "RETURNED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
)

// Terminal reports whether the status accepts no further transitions.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusReturned, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is the fulfillment aggregate root. The latest-status fields are a
// denormalized projection of the newest delivery event; PreviousStatuses is
// append-only and keeps every raw carrier code ever seen, duplicates included.
type Order struct {
	ID               int64
	Total            float64
	Status           OrderStatus
	PaymentStatus    PaymentStatus
	CarrierOrderID   string
	ShipmentID       string
	AWBCode          string
	TrackingURL      string
	LatestStatusCode *int
	LatestStatusText string
	LatestStatusAt   *time.Time
	PreviousStatuses []int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
