package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/api/responses"
	"github.com/javi-app/javi-backend/api/validators"
	kitsvc "github.com/javi-app/javi-backend/internal/kits"
	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/logger"
)

type kitService interface {
	List(ctx context.Context, tc tenancy.Context) ([]models.Kit, error)
	Find(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.Kit, error)
	Create(ctx context.Context, tc tenancy.Context, name string, itemIDs []uuid.UUID) (*models.Kit, error)
	Update(ctx context.Context, tc tenancy.Context, id uuid.UUID, in kitsvc.UpdateInput) (*models.Kit, error)
	Delete(ctx context.Context, tc tenancy.Context, id uuid.UUID) error
}

// KitList returns every saved kit.
func KitList(svc kitService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kits, err := svc.List(r.Context(), tc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, kits)
	}
}

// KitGet returns one kit by id.
func KitGet(svc kitService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "kitID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kit, err := svc.Find(r.Context(), tc, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, kit)
	}
}

type createKitRequest struct {
	Name    string   `json:"name" validate:"required,max=200"`
	ItemIDs []string `json:"item_ids" validate:"required,min=1,dive,uuid"`
}

// KitCreate saves a named bundle of gear items.
func KitCreate(svc kitService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createKitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemIDs, err := parseUUIDs(body.ItemIDs, "item_ids")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kit, err := svc.Create(r.Context(), tc, body.Name, itemIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, kit)
	}
}

type updateKitRequest struct {
	Name    *string   `json:"name,omitempty" validate:"omitempty,max=200"`
	ItemIDs *[]string `json:"item_ids,omitempty" validate:"omitempty,min=1,dive,uuid"`
}

// KitUpdate renames a kit or replaces its contents.
func KitUpdate(svc kitService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "kitID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateKitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		in := kitsvc.UpdateInput{Name: body.Name}
		if body.ItemIDs != nil {
			itemIDs, err := parseUUIDs(*body.ItemIDs, "item_ids")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			in.ItemIDs = &itemIDs
		}

		kit, err := svc.Update(r.Context(), tc, id, in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, kit)
	}
}

// KitDelete removes a kit. Reservations made from it are untouched.
func KitDelete(svc kitService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "kitID")
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

func parseUUIDs(raw []string, field string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := validators.ParseUUID(value, field)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
