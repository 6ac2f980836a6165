package enums

import "fmt"

// CheckoutStatus tracks an ad-hoc custody record. An OPEN checkout has no end
// instant, only a due-back instant.
type CheckoutStatus string

const (
	CheckoutStatusOpen     CheckoutStatus = "OPEN"
	CheckoutStatusReturned CheckoutStatus = "RETURNED"
)

var validCheckoutStatuses = []CheckoutStatus{
	CheckoutStatusOpen,
	CheckoutStatusReturned,
}

func (s CheckoutStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CheckoutStatus.
func (s CheckoutStatus) IsValid() bool {
	for _, candidate := range validCheckoutStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCheckoutStatus converts raw input into a CheckoutStatus.
func ParseCheckoutStatus(value string) (CheckoutStatus, error) {
	for _, candidate := range validCheckoutStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout status %q", value)
}
