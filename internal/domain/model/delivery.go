package model

import "time"

// DeliveryStatusEvent is one append-only log row per carrier webhook. Rows are
// never updated or deleted; duplicates are allowed because the log is an audit
// trail, not a set.
type DeliveryStatusEvent struct {
	ID         int64
	OrderID    int64
	StatusCode int
	StatusText string
	ActionCode int
	EventAt    time.Time
	ReceivedAt time.Time
}
