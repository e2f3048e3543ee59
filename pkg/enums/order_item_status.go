package enums

import "fmt"

// OrderItemStatus tracks the lifecycle of a single ordered line.
type OrderItemStatus string

const (
	OrderItemStatusConfirmed OrderItemStatus = "confirmed"
	OrderItemStatusCancelled OrderItemStatus = "cancelled"
	OrderItemStatusRefunded  OrderItemStatus = "refunded"
)

var validOrderItemStatuses = []OrderItemStatus{
	OrderItemStatusConfirmed,
	OrderItemStatusCancelled,
	OrderItemStatusRefunded,
}

// String implements fmt.Stringer.
func (o OrderItemStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderItemStatus.
func (o OrderItemStatus) IsValid() bool {
	for _, candidate := range validOrderItemStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderItemStatus converts raw input into an OrderItemStatus.
func ParseOrderItemStatus(value string) (OrderItemStatus, error) {
	for _, candidate := range validOrderItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order item status %q", value)
}
