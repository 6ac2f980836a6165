package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/api/responses"
	"github.com/javi-app/javi-backend/api/validators"
	eventsvc "github.com/javi-app/javi-backend/internal/events"
	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/logger"
	"github.com/javi-app/javi-backend/pkg/types"
)

type eventService interface {
	Create(ctx context.Context, tc tenancy.Context, in eventsvc.CreateInput, actor eventsvc.Actor) (*models.Event, error)
	List(ctx context.Context, tc tenancy.Context) ([]models.Event, error)
	Find(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Event, error)
	Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, in eventsvc.UpdateInput) (*models.Event, error)
	UpdateWindow(ctx context.Context, tc tenancy.Context, id uuid.UUID, startAt, endAt time.Time) (*models.Event, error)
	Cancel(ctx context.Context, tc tenancy.Context, id uuid.UUID) error
	Delete(ctx context.Context, tc tenancy.Context, id uuid.UUID) error
}

type createEventRequest struct {
	Title          string             `json:"title" validate:"required,max=200"`
	StartAt        time.Time          `json:"start_at" validate:"required"`
	EndAt          time.Time          `json:"end_at" validate:"required"`
	Location       string             `json:"location,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	ProductionDocs types.DocumentList `json:"production_docs,omitempty"`
	AssignedPeople []string           `json:"assigned_people,omitempty"`
}

// EventCreate opens a new draft shoot.
func EventCreate(svc eventService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createEventRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, email := requestActor(r)
		event, err := svc.Create(r.Context(), tc, eventsvc.CreateInput{
			Title:          body.Title,
			StartAt:        body.StartAt,
			EndAt:          body.EndAt,
			Location:       body.Location,
			Notes:          body.Notes,
			ProductionDocs: body.ProductionDocs,
			AssignedPeople: body.AssignedPeople,
		}, eventsvc.Actor{UserID: userID, Email: email})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, event)
	}
}

// EventList returns every shoot, newest window first.
func EventList(svc eventService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		events, err := svc.List(r.Context(), tc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, events)
	}
}

// EventGet returns one shoot by id.
func EventGet(svc eventService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.Find(r.Context(), tc, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, event)
	}
}

type updateEventRequest struct {
	Title          *string             `json:"title,omitempty"`
	Location       *string             `json:"location,omitempty"`
	Notes          *string             `json:"notes,omitempty"`
	ProductionDocs *types.DocumentList `json:"production_docs,omitempty"`
	AssignedPeople *[]string           `json:"assigned_people,omitempty"`
}

// EventUpdate edits descriptive fields. The window has its own endpoint
// because moving it can collide with existing reservations.
func EventUpdate(svc eventService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateEventRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.Update(r.Context(), tc, id, eventsvc.UpdateInput{
			Title:          body.Title,
			Location:       body.Location,
			Notes:          body.Notes,
			ProductionDocs: body.ProductionDocs,
			AssignedPeople: body.AssignedPeople,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, event)
	}
}

type updateEventWindowRequest struct {
	StartAt time.Time `json:"start_at" validate:"required"`
	EndAt   time.Time `json:"end_at" validate:"required"`
}

// EventUpdateWindow moves the shoot window, realigning active reservations or
// rejecting the move when any would double-book.
func EventUpdateWindow(svc eventService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateEventWindowRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.UpdateWindow(r.Context(), tc, id, body.StartAt, body.EndAt)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, event)
	}
}

// EventCancel voids the shoot and every active reservation on it.
func EventCancel(svc eventService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Cancel(r.Context(), tc, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "canceled"})
	}
}

// EventDelete removes a shoot that has no active reservations.
func EventDelete(svc eventService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), tc, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
