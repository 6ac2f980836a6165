package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/api/responses"
	"github.com/javi-app/javi-backend/api/validators"
	gearsvc "github.com/javi-app/javi-backend/internal/gear"
	"github.com/javi-app/javi-backend/internal/tenancy"
	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/enums"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
	"github.com/javi-app/javi-backend/pkg/logger"
)

type gearService interface {
	ListGroups(ctx context.Context, tc tenancy.Context) ([]gearsvc.Group, error)
	ListItems(ctx context.Context, tc tenancy.Context) ([]models.GearItem, error)
	FindItem(ctx context.Context, tc tenancy.Context, id uuid.UUID) (*models.GearItem, error)
	CreateGroup(ctx context.Context, tc tenancy.Context, in gearsvc.CreateGroupInput) ([]models.GearItem, error)
	Reconcile(ctx context.Context, tc tenancy.Context, in gearsvc.ReconcileInput) (gearsvc.ReconcileResult, error)
	DeleteGroup(ctx context.Context, tc tenancy.Context, category enums.GearCategory, baseName string) (gearsvc.DeleteGroupResult, error)
	UpdateItem(ctx context.Context, tc tenancy.Context, id uuid.UUID, values map[string]any) error
	DeleteItem(ctx context.Context, tc tenancy.Context, id uuid.UUID) error
}

// GearListGroups returns the inventory grouped by logical item.
func GearListGroups(svc gearService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groups, err := svc.ListGroups(r.Context(), tc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups)
	}
}

// GearListItems returns every physical copy in the inventory.
func GearListItems(svc gearService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListItems(r.Context(), tc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// GearGetItem returns one physical copy by id.
func GearGetItem(svc gearService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.FindItem(r.Context(), tc, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type createGearGroupRequest struct {
	Category    string `json:"category" validate:"required"`
	Name        string `json:"name" validate:"required,max=200"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
	Description string `json:"description,omitempty"`
	AssetTag    string `json:"asset_tag,omitempty"`
	Serial      string `json:"serial,omitempty"`
	QRCode      string `json:"qr_code,omitempty"`
	Location    string `json:"location,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// GearCreateGroup creates N physical copies of one logical item.
func GearCreateGroup(svc gearService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createGearGroupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := enums.ParseGearCategory(strings.TrimSpace(body.Category))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		items, err := svc.CreateGroup(r.Context(), tc, gearsvc.CreateGroupInput{
			Category:    category,
			Name:        body.Name,
			Quantity:    body.Quantity,
			Description: body.Description,
			AssetTag:    body.AssetTag,
			Serial:      body.Serial,
			QRCode:      body.QRCode,
			Location:    body.Location,
			ImageURL:    body.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, items)
	}
}

type reconcileGearGroupRequest struct {
	Category    string  `json:"category" validate:"required"`
	BaseName    string  `json:"base_name" validate:"required"`
	NewName     string  `json:"new_name,omitempty"`
	NewCategory string  `json:"new_category,omitempty"`
	Quantity    int     `json:"quantity" validate:"required,min=0"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// GearReconcile renames, resizes, and edits a group in one pass.
func GearReconcile(svc gearService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reconcileGearGroupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := enums.ParseGearCategory(strings.TrimSpace(body.Category))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		newCategory := category
		if strings.TrimSpace(body.NewCategory) != "" {
			newCategory, err = enums.ParseGearCategory(strings.TrimSpace(body.NewCategory))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid new category"))
				return
			}
		}

		newName := body.BaseName
		if strings.TrimSpace(body.NewName) != "" {
			newName = body.NewName
		}

		result, err := svc.Reconcile(r.Context(), tc, gearsvc.ReconcileInput{
			Category:    category,
			BaseName:    body.BaseName,
			NewName:     newName,
			NewCategory: newCategory,
			Quantity:    body.Quantity,
			Description: body.Description,
			Location:    body.Location,
			ImageURL:    body.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GearDeleteGroup removes every idle copy of a group. Category and name come
// from the query string because group identity is not a single id.
func GearDeleteGroup(svc gearService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := enums.ParseGearCategory(strings.TrimSpace(r.URL.Query().Get("category")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "name is required"))
			return
		}

		result, err := svc.DeleteGroup(r.Context(), tc, category, name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type updateGearItemRequest struct {
	Description *string `json:"description,omitempty"`
	AssetTag    *string `json:"asset_tag,omitempty"`
	Serial      *string `json:"serial,omitempty"`
	QRCode      *string `json:"qr_code,omitempty"`
	Location    *string `json:"location,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

func (r updateGearItemRequest) toValues() map[string]any {
	values := map[string]any{}
	if r.Description != nil {
		values["description"] = validators.SanitizeString(*r.Description, 0)
	}
	if r.AssetTag != nil {
		values["asset_tag"] = validators.SanitizeString(*r.AssetTag, 0)
	}
	if r.Serial != nil {
		values["serial"] = validators.SanitizeString(*r.Serial, 0)
	}
	if r.QRCode != nil {
		values["qr_code"] = validators.SanitizeString(*r.QRCode, 0)
	}
	if r.Location != nil {
		values["location"] = validators.SanitizeString(*r.Location, 0)
	}
	if r.ImageURL != nil {
		values["image_url"] = validators.SanitizeString(*r.ImageURL, 0)
	}
	return values
}

// GearUpdateItem edits the identifying fields of one physical copy. Name and
// category changes go through the group reconcile so copy numbering stays
// consistent.
func GearUpdateItem(svc gearService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateGearItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateItem(r.Context(), tc, id, body.toValues()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.FindItem(r.Context(), tc, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// GearDeleteItem removes one physical copy unless it is reserved or out.
func GearDeleteItem(svc gearService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, err := requireScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItem(r.Context(), tc, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
