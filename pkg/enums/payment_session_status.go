package enums

import "fmt"

// PaymentSessionStatus tracks the lifecycle of a gateway payment session.
type PaymentSessionStatus string

const (
	PaymentSessionStatusInitiated PaymentSessionStatus = "INITIATED"
	PaymentSessionStatusDone      PaymentSessionStatus = "DONE"
	PaymentSessionStatusFailed    PaymentSessionStatus = "FAILED"
	PaymentSessionStatusCancelled PaymentSessionStatus = "CANCELLED"
)

var validPaymentSessionStatuses = []PaymentSessionStatus{
	PaymentSessionStatusInitiated,
	PaymentSessionStatusDone,
	PaymentSessionStatusFailed,
	PaymentSessionStatusCancelled,
}

// String implements fmt.Stringer.
func (p PaymentSessionStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentSessionStatus.
func (p PaymentSessionStatus) IsValid() bool {
	for _, candidate := range validPaymentSessionStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the session can no longer change.
func (p PaymentSessionStatus) IsTerminal() bool {
	switch p {
	case PaymentSessionStatusDone, PaymentSessionStatusFailed, PaymentSessionStatusCancelled:
		return true
	}
	return false
}

// ParsePaymentSessionStatus converts raw input into a PaymentSessionStatus.
func ParsePaymentSessionStatus(value string) (PaymentSessionStatus, error) {
	for _, candidate := range validPaymentSessionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment session status %q", value)
}
