package enums

import "fmt"

// PurchaseStatus tracks the fulfillment lifecycle of a purchase.
type PurchaseStatus string

const (
	PurchaseStatusPending    PurchaseStatus = "PENDING"
	PurchaseStatusProcessing PurchaseStatus = "PROCESSING"
	PurchaseStatusCompleted  PurchaseStatus = "COMPLETED"
	PurchaseStatusConfirmed  PurchaseStatus = "CONFIRMED"
	PurchaseStatusCancelled  PurchaseStatus = "CANCELLED"
)

var validPurchaseStatuses = []PurchaseStatus{
	PurchaseStatusPending,
	PurchaseStatusProcessing,
	PurchaseStatusCompleted,
	PurchaseStatusConfirmed,
	PurchaseStatusCancelled,
}

// String implements fmt.Stringer.
func (p PurchaseStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PurchaseStatus.
func (p PurchaseStatus) IsValid() bool {
	for _, candidate := range validPurchaseStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions leave this status.
func (p PurchaseStatus) IsTerminal() bool {
	return p == PurchaseStatusConfirmed || p == PurchaseStatusCancelled
}

// ParsePurchaseStatus converts raw input into a PurchaseStatus.
func ParsePurchaseStatus(value string) (PurchaseStatus, error) {
	for _, candidate := range validPurchaseStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase status %q", value)
}
