package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexInt64 accepts both JSON numbers and numeric strings. Carrier payloads
// are inconsistent about how they encode identifiers.
type FlexInt64 int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) >= 2 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*f = FlexInt64(v)
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexInt64(v)
	return nil
}

// PaymentWebhook is the gateway notification envelope. The event kind lives
// in Type; exactly one of the Data sub-objects is populated per kind.
type PaymentWebhook struct {
	Type string             `json:"type"`
	Data PaymentWebhookData `json:"data"`
}

// PaymentWebhookData carries the kind-specific payload.
type PaymentWebhookData struct {
	Order      *PaymentWebhookOrder  `json:"order"`
	Payment    *PaymentWebhookCharge `json:"payment"`
	Refund     *PaymentWebhookRefund `json:"refund"`
	AutoRefund *PaymentWebhookRefund `json:"auto_refund"`
}

// PaymentWebhookOrder identifies the order the event belongs to.
type PaymentWebhookOrder struct {
	OrderID     *FlexInt64 `json:"order_id"`
	OrderAmount float64    `json:"order_amount"`
}

// PaymentWebhookCharge mirrors the gateway's payment sub-object.
type PaymentWebhookCharge struct {
	OrderID          *FlexInt64 `json:"order_id"`
	GatewayPaymentID string     `json:"cf_payment_id"`
	PaymentStatus    string     `json:"payment_status"`
	PaymentMethod    string     `json:"payment_method"`
	PaymentAmount    float64    `json:"payment_amount"`
}

// PaymentWebhookRefund mirrors the gateway's refund sub-object.
type PaymentWebhookRefund struct {
	GatewayPaymentID string  `json:"cf_payment_id"`
	GatewayRefundID  string  `json:"cf_refund_id"`
	RefundStatus     string  `json:"refund_status"`
	RefundAmount     float64 `json:"refund_amount"`
	RefundNote       string  `json:"refund_note"`
}

// CarrierWebhook is the carrier tracking notification.
type CarrierWebhook struct {
	OrderID          *FlexInt64 `json:"order_id"`
	CurrentStatusID  int        `json:"current_status_id"`
	CurrentStatus    string     `json:"current_status"`
	ShipmentStatus   string     `json:"shipment_status"`
	CurrentTimestamp string     `json:"current_timestamp"`
	AWBCode          string     `json:"awb_code"`
	TrackingURL      string     `json:"tracking_url"`
}

// WebhookResponse is the uniform acknowledgment body.
type WebhookResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	CfOrderID string `json:"cf_order_id,omitempty"`
	Status    string `json:"status,omitempty"`
}
