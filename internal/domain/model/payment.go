package model

import (
	"encoding/json"
	"time"
)

// PaymentStatus describes gateway charge lifecycle.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// CanTransitionTo reports whether moving to next is a forward transition.
// Payments only move pending→completed|failed and completed→refunded.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return next == PaymentStatusCompleted || next == PaymentStatusFailed
	case PaymentStatusCompleted:
		return next == PaymentStatusRefunded
	}
	return false
}

// Payment describes a single payment attempt against an order. An order may
// accumulate several attempts; GatewayPaymentID is the gateway transaction
// reference and is unique across attempts.
type Payment struct {
	ID               int64
	OrderID          int64
	GatewayPaymentID string
	Amount           float64
	Status           PaymentStatus
	Method           string
	GatewayResponse  json.RawMessage
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
