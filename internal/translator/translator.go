// Package translator maps raw carrier status codes to internal vocabulary.
// The table below is the single source of truth; extend it by adding rows,
// never by editing handler logic.
package translator

import "github.com/craftline/fulfillment/internal/domain/model"

// Category is the coarse delivery bucket used for UI and reporting.
type Category string

const (
	CategoryProcessing     Category = "processing"
	CategoryPacked         Category = "packed"
	CategoryShipped        Category = "shipped"
	CategoryOutForDelivery Category = "out_for_delivery"
	CategoryDelivered      Category = "delivered"
	CategoryCancelled      Category = "cancelled"
)

// Action codes driving compensating behaviour. Only ActionReturnToOrigin and
// ActionReverseAndCancel trigger side effects; everything else is
// informational.
const (
	ActionNone             = 0
	ActionReturnToOrigin   = 3
	ActionReverseAndCancel = 5
)

type statusRow struct {
	text      string
	category  Category
	persisted model.OrderStatus
	action    int
}

// Unknown codes fail closed toward cancelled so they demand human attention
// rather than reading as delivered.
var defaultRow = statusRow{
	text:      "Unknown",
	category:  CategoryCancelled,
	persisted: model.OrderStatusCancelled,
	action:    ActionNone,
}

var statusTable = map[int]statusRow{
	1:  {"AWB Assigned", CategoryProcessing, model.OrderStatusReadyToShip, ActionNone},
	2:  {"Label Generated", CategoryProcessing, model.OrderStatusReadyToShip, ActionNone},
	3:  {"Pickup Scheduled", CategoryPacked, model.OrderStatusReadyToShip, ActionNone},
	4:  {"Pickup Queued", CategoryPacked, model.OrderStatusReadyToShip, ActionNone},
	5:  {"Manifest Generated", CategoryPacked, model.OrderStatusReadyToShip, ActionNone},
	6:  {"Shipped", CategoryShipped, model.OrderStatusShipped, ActionNone},
	7:  {"Delivered", CategoryDelivered, model.OrderStatusDelivered, ActionNone},
	8:  {"Cancelled", CategoryCancelled, model.OrderStatusCancelled, ActionReverseAndCancel},
	9:  {"RTO Initiated", CategoryCancelled, model.OrderStatusReturnInitiated, ActionReturnToOrigin},
	10: {"RTO Delivered", CategoryCancelled, model.OrderStatusReturned, ActionNone},
	12: {"Lost", CategoryCancelled, model.OrderStatusCancelled, ActionReverseAndCancel},
	13: {"Pickup Error", CategoryProcessing, model.OrderStatusReadyToShip, ActionNone},
	15: {"Pickup Rescheduled", CategoryPacked, model.OrderStatusReadyToShip, ActionNone},
	16: {"Cancellation Requested", CategoryCancelled, model.OrderStatusCancelled, ActionNone},
	17: {"Out For Delivery", CategoryOutForDelivery, model.OrderStatusOutForDelivery, ActionNone},
	18: {"In Transit", CategoryShipped, model.OrderStatusShipped, ActionNone},
	19: {"Out For Pickup", CategoryPacked, model.OrderStatusReadyToShip, ActionNone},
	20: {"Pickup Exception", CategoryProcessing, model.OrderStatusReadyToShip, ActionNone},
	21: {"Undelivered", CategoryCancelled, model.OrderStatusReturnInitiated, ActionReturnToOrigin},
	22: {"Delayed", CategoryShipped, model.OrderStatusShipped, ActionNone},
}

func lookup(code int) statusRow {
	if row, ok := statusTable[code]; ok {
		return row
	}
	return defaultRow
}

// CategoryFor returns the coarse lifecycle bucket for a raw carrier code.
func CategoryFor(code int) Category { return lookup(code).category }

// StatusText returns the human-readable label for a raw carrier code.
func StatusText(code int) string { return lookup(code).text }

// PersistedStatus returns the order status written for a raw carrier code.
func PersistedStatus(code int) model.OrderStatus { return lookup(code).persisted }

// ActionCode returns the compensating action code for a raw carrier code.
func ActionCode(code int) int { return lookup(code).action }
