package enums

import "fmt"

// RefundStatus tracks the refund/exchange request state machine.
type RefundStatus string

const (
	RefundStatusRequested RefundStatus = "requested"
	RefundStatusApproved  RefundStatus = "approved"
	RefundStatusRejected  RefundStatus = "rejected"
	RefundStatusCompleted RefundStatus = "completed"
	RefundStatusCancelled RefundStatus = "cancelled"
)

var validRefundStatuses = []RefundStatus{
	RefundStatusRequested,
	RefundStatusApproved,
	RefundStatusRejected,
	RefundStatusCompleted,
	RefundStatusCancelled,
}

// String implements fmt.Stringer.
func (r RefundStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RefundStatus.
func (r RefundStatus) IsValid() bool {
	for _, candidate := range validRefundStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsActive reports whether a refund in this status still blocks new requests
// on the same order item.
func (r RefundStatus) IsActive() bool {
	return r == RefundStatusRequested || r == RefundStatusApproved
}

// IsTerminal reports whether no further transitions are allowed.
func (r RefundStatus) IsTerminal() bool {
	switch r {
	case RefundStatusRejected, RefundStatusCompleted, RefundStatusCancelled:
		return true
	default:
		return false
	}
}

// ParseRefundStatus converts raw input into a RefundStatus.
func ParseRefundStatus(value string) (RefundStatus, error) {
	for _, candidate := range validRefundStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid refund status %q", value)
}
