package model

// GatewayOrderState is the settlement state reported by the payment gateway
// when queried directly, used by staff-initiated completion to re-verify
// payment before advancing the order.
type GatewayOrderState string

const (
	GatewayOrderPaid    GatewayOrderState = "PAID"
	GatewayOrderFailed  GatewayOrderState = "FAILED"
	GatewayOrderPending GatewayOrderState = "PENDING"
)

// GatewayCharge describes the gateway's view of an order's charge.
type GatewayCharge struct {
	OrderID          string
	GatewayPaymentID string
	State            GatewayOrderState
	Amount           float64
	Method           string
}
