package enums

import "fmt"

// RefundType distinguishes money-back requests from exchanges.
type RefundType string

const (
	RefundTypeRefund   RefundType = "refund"
	RefundTypeExchange RefundType = "exchange"
)

var validRefundTypes = []RefundType{
	RefundTypeRefund,
	RefundTypeExchange,
}

// String implements fmt.Stringer.
func (r RefundType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RefundType.
func (r RefundType) IsValid() bool {
	for _, candidate := range validRefundTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRefundType converts raw input into a RefundType.
func ParseRefundType(value string) (RefundType, error) {
	for _, candidate := range validRefundTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid refund type %q", value)
}
