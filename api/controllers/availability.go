package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/api/responses"
	"github.com/javi-app/javi-backend/api/validators"
	"github.com/javi-app/javi-backend/internal/booking"
	"github.com/javi-app/javi-backend/internal/tenancy"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/logger"
)

// BlockedSetReader answers which items are unavailable for a window. The
// cached snapshot satisfies it in production.
type BlockedSetReader interface {
	BlockedIDs(ctx context.Context, tc tenancy.Context, w booking.Window, ignoreEventID *uuid.UUID) ([]uuid.UUID, error)
}

// AvailabilityBlocked returns the ids of items already booked or checked out
// for the requested window. Pass ignore_event_id when editing an existing
// shoot so its own reservations do not count against it.
func AvailabilityBlocked(reader BlockedSetReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start, err := validators.ParseQueryTime(r, "start")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryTime(r, "end")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		window, err := booking.NewWindow(start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid window"))
			return
		}

		ignoreEventID, err := validators.ParseQueryUUID(r, "ignore_event_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		blocked, err := reader.BlockedIDs(r.Context(), tc, window, ignoreEventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if blocked == nil {
			blocked = []uuid.UUID{}
		}
		responses.WriteSuccess(w, map[string]any{"blocked_ids": blocked})
	}
}
