package enums

import "fmt"

// EventStatus tracks an event through its booking lifecycle.
type EventStatus string

const (
	EventStatusDraft      EventStatus = "DRAFT"
	EventStatusReserved   EventStatus = "RESERVED"
	EventStatusCheckedOut EventStatus = "CHECKED_OUT"
	EventStatusClosed     EventStatus = "CLOSED"
	EventStatusCanceled   EventStatus = "CANCELED"
)

var validEventStatuses = []EventStatus{
	EventStatusDraft,
	EventStatusReserved,
	EventStatusCheckedOut,
	EventStatusClosed,
	EventStatusCanceled,
}

func (s EventStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known EventStatus.
func (s EventStatus) IsValid() bool {
	for _, candidate := range validEventStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the event can no longer accept reservations.
func (s EventStatus) IsTerminal() bool {
	return s == EventStatusClosed || s == EventStatusCanceled
}

// ParseEventStatus converts raw input into an EventStatus.
func ParseEventStatus(value string) (EventStatus, error) {
	for _, candidate := range validEventStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event status %q", value)
}
