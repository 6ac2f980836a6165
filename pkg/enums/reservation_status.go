package enums

import "fmt"

// ReservationStatus tracks a reservation row. Rows are history: they move to
// RETURNED or CANCELED and are never hard-deleted.
type ReservationStatus string

const (
	ReservationStatusActive   ReservationStatus = "ACTIVE"
	ReservationStatusReturned ReservationStatus = "RETURNED"
	ReservationStatusCanceled ReservationStatus = "CANCELED"
)

var validReservationStatuses = []ReservationStatus{
	ReservationStatusActive,
	ReservationStatusReturned,
	ReservationStatusCanceled,
}

func (s ReservationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ReservationStatus.
func (s ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReservationStatus converts raw input into a ReservationStatus.
func ParseReservationStatus(value string) (ReservationStatus, error) {
	for _, candidate := range validReservationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation status %q", value)
}
