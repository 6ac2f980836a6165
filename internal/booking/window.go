package booking

import (
	"time"

	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
)

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow validates and builds a window.
func NewWindow(start, end time.Time) (Window, error) {
	if start.IsZero() || end.IsZero() {
		return Window{}, pkgerrors.New(pkgerrors.CodeValidation, "window start and end are required")
	}
	if !start.Before(end) {
		return Window{}, pkgerrors.New(pkgerrors.CodeValidation, "window start must be before end")
	}
	return Window{Start: start, End: end}, nil
}

// Overlaps reports whether two half-open windows intersect. Touching
// endpoints do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && w.End.After(o.Start)
}
