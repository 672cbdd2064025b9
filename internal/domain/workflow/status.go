package workflow

// Status represents a named stage in a work order's lifecycle
type Status string

const (
	StatusReceived  Status = "RECEIVED"
	StatusInspected Status = "INSPECTED"
	StatusInWIP     Status = "IN_WIP"
	StatusOnHold    Status = "ON_HOLD"
	StatusRework    Status = "REWORK"
	StatusCompleted Status = "COMPLETED"
	StatusPacked    Status = "PACKED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusClosed    Status = "CLOSED"
	StatusCancelled Status = "CANCELLED"
)

var validStatuses = map[Status]bool{
	StatusReceived:  true,
	StatusInspected: true,
	StatusInWIP:     true,
	StatusOnHold:    true,
	StatusRework:    true,
	StatusCompleted: true,
	StatusPacked:    true,
	StatusShipped:   true,
	StatusDelivered: true,
	StatusClosed:    true,
	StatusCancelled: true,
}

var terminalStatuses = map[Status]bool{
	StatusClosed:    true,
	StatusCancelled: true,
}

// AllStatuses returns the full status catalog in pipeline order.
// A client's active graph is always a subset of this universe.
func AllStatuses() []Status {
	return []Status{
		StatusReceived,
		StatusInspected,
		StatusInWIP,
		StatusOnHold,
		StatusRework,
		StatusCompleted,
		StatusPacked,
		StatusShipped,
		StatusDelivered,
		StatusClosed,
		StatusCancelled,
	}
}

// IsTerminal returns true if the status is a terminal status (no further transitions expected)
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a member of the status universe
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// ClosureTrigger determines which business event finalizes a work order
type ClosureTrigger string

const (
	CloseAtShipment      ClosureTrigger = "at_shipment"
	CloseAtClientReceipt ClosureTrigger = "at_client_receipt"
	CloseAtCompletion    ClosureTrigger = "at_completion"
	CloseManual          ClosureTrigger = "manual"
)

var validClosureTriggers = map[ClosureTrigger]bool{
	CloseAtShipment:      true,
	CloseAtClientReceipt: true,
	CloseAtCompletion:    true,
	CloseManual:          true,
}

// String returns the string representation of the closure trigger
func (t ClosureTrigger) String() string {
	return string(t)
}

// IsValid returns true if the closure trigger is a known policy
func (t ClosureTrigger) IsValid() bool {
	return validClosureTriggers[t]
}
