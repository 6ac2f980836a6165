package booking

import (
	"testing"
	"time"
)

func TestNewWindowValidation(t *testing.T) {
	start := ts("2024-01-10T09:00:00Z")

	if _, err := NewWindow(start, start); err == nil {
		t.Fatal("zero-length window must be rejected")
	}
	if _, err := NewWindow(start, start.Add(-time.Hour)); err == nil {
		t.Fatal("inverted window must be rejected")
	}
	if _, err := NewWindow(time.Time{}, start); err == nil {
		t.Fatal("zero start must be rejected")
	}
	if _, err := NewWindow(start, start.Add(time.Hour)); err != nil {
		t.Fatalf("valid window rejected: %v", err)
	}
}

func TestOverlapsIsSymmetric(t *testing.T) {
	a := Window{Start: ts("2024-01-10T09:00:00Z"), End: ts("2024-01-10T12:00:00Z")}
	b := Window{Start: ts("2024-01-10T11:00:00Z"), End: ts("2024-01-10T14:00:00Z")}
	c := Window{Start: ts("2024-01-10T12:00:00Z"), End: ts("2024-01-10T13:00:00Z")}

	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Fatal("overlapping windows must overlap both ways")
	}
	if a.Overlaps(c) || c.Overlaps(a) {
		t.Fatal("touching half-open windows must not overlap")
	}
}
