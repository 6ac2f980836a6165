package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/api/responses"
	"github.com/javi-app/javi-backend/api/validators"
	ressvc "github.com/javi-app/javi-backend/internal/reservations"
	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/enums"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/logger"
)

type reservationService interface {
	ListByEvent(ctx context.Context, tc tenancy.Context, eventID uuid.UUID) ([]models.Reservation, error)
	ReserveItem(ctx context.Context, tc tenancy.Context, eventID, itemID uuid.UUID, actor ressvc.Actor) (*models.Reservation, error)
	ReserveGroup(ctx context.Context, tc tenancy.Context, eventID uuid.UUID, category enums.GearCategory, baseName string, qty int, actor ressvc.Actor) (ressvc.GroupResult, error)
	AddKit(ctx context.Context, tc tenancy.Context, eventID, kitID uuid.UUID, actor ressvc.Actor) (ressvc.KitResult, error)
	Cancel(ctx context.Context, tc tenancy.Context, reservationID uuid.UUID) error
	ReturnAll(ctx context.Context, tc tenancy.Context, eventID uuid.UUID, actor ressvc.Actor) (ressvc.ReturnAllResult, error)
	ReturnByScan(ctx context.Context, tc tenancy.Context, eventID uuid.UUID, scanned string, actor ressvc.Actor) (*models.Reservation, error)
	ReserveByScan(ctx context.Context, tc tenancy.Context, eventID uuid.UUID, scanned string, actor ressvc.Actor) (*models.Reservation, error)
	CreateCheckout(ctx context.Context, tc tenancy.Context, in ressvc.CreateCheckoutInput) (*models.Checkout, error)
	ReturnCheckout(ctx context.Context, tc tenancy.Context, checkoutID uuid.UUID) error
}

func reservationActor(r *http.Request) ressvc.Actor {
	userID, email := requestActor(r)
	return ressvc.Actor{UserID: userID, Email: email}
}

// ReservationList returns every reservation row on a shoot.
func ReservationList(svc reservationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eventID, err := pathUUID(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListByEvent(r.Context(), tc, eventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type reserveItemRequest struct {
	GearItemID string `json:"gear_item_id" validate:"required,uuid"`
}

// ReservationReserveItem books one physical copy onto a shoot.
func ReservationReserveItem(svc reservationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eventID, err := pathUUID(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reserveItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := validators.ParseUUID(body.GearItemID, "gear_item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.ReserveItem(r.Context(), tc, eventID, itemID, reservationActor(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, reservation)
	}
}

type reserveGroupRequest struct {
	Category string `json:"category" validate:"required"`
	BaseName string `json:"base_name" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// ReservationReserveGroup books up to N free copies of a group. Partial
// success is reported, never rolled back.
func ReservationReserveGroup(svc reservationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eventID, err := pathUUID(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reserveGroupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := enums.ParseGearCategory(strings.TrimSpace(body.Category))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		result, err := svc.ReserveGroup(r.Context(), tc, eventID, category, body.BaseName, body.Quantity, reservationActor(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type addKitRequest struct {
	KitID string `json:"kit_id" validate:"required,uuid"`
}

// ReservationAddKit books every free item of a kit onto a shoot.
func ReservationAddKit(svc reservationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eventID, err := pathUUID(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addKitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kitID, err := validators.ParseUUID(body.KitID, "kit_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AddKit(r.Context(), tc, eventID, kitID, reservationActor(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type scanRequest struct {
	Code string `json:"code" validate:"required"`
}

// ReservationReserveScan books whatever item a scanned code resolves to.
func ReservationReserveScan(svc reservationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eventID, err := pathUUID(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body scanRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.ReserveByScan(r.Context(), tc, eventID, body.Code, reservationActor(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, reservation)
	}
}

// ReservationReturnScan returns one item on a shoot by scanned code.
func ReservationReturnScan(svc reservationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eventID, err := pathUUID(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body scanRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.ReturnByScan(r.Context(), tc, eventID, body.Code, reservationActor(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reservation)
	}
}

// ReservationReturnAll wraps the shoot: returns every active item, closes
// open checkouts, and closes the event.
func ReservationReturnAll(svc reservationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eventID, err := pathUUID(r, "eventID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ReturnAll(r.Context(), tc, eventID, reservationActor(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ReservationCancel voids one active reservation.
func ReservationCancel(svc reservationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "reservationID")
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

type createCheckoutRequest struct {
	EventID *string   `json:"event_id,omitempty" validate:"omitempty,uuid"`
	ItemIDs []string  `json:"item_ids" validate:"required,min=1,dive,uuid"`
	DueAt   time.Time `json:"due_at" validate:"required"`
	Note    string    `json:"note,omitempty"`
}

// CheckoutCreate opens a custody record for items leaving the shelf.
func CheckoutCreate(svc reservationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createCheckoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var eventID *uuid.UUID
		if body.EventID != nil {
			id, err := validators.ParseUUID(*body.EventID, "event_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			eventID = &id
		}

		itemIDs := make([]uuid.UUID, 0, len(body.ItemIDs))
		for _, raw := range body.ItemIDs {
			id, err := validators.ParseUUID(raw, "item_ids")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			itemIDs = append(itemIDs, id)
		}

		checkout, err := svc.CreateCheckout(r.Context(), tc, ressvc.CreateCheckoutInput{
			EventID: eventID,
			ItemIDs: itemIDs,
			DueAt:   body.DueAt,
			Note:    validators.SanitizeString(body.Note, 0),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, checkout)
	}
}

// CheckoutReturn closes a custody record.
func CheckoutReturn(svc reservationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "checkoutID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ReturnCheckout(r.Context(), tc, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "returned"})
	}
}
