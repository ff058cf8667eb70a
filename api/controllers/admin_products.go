package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karavanrugs/karavan-backend/api/responses"
	"github.com/karavanrugs/karavan-backend/api/validators"
	"github.com/karavanrugs/karavan-backend/internal/products"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
	"github.com/karavanrugs/karavan-backend/pkg/logger"
)

type productSizeRequest struct {
	SizeLabel string `json:"size_label" validate:"required"`
	Price     string `json:"price" validate:"required"`
	Stock     int    `json:"stock" validate:"gte=0"`
}

type productCreateRequest struct {
	CategoryID  string               `json:"category_id" validate:"required,uuid"`
	Title       string               `json:"title" validate:"required,min=2,max=200"`
	Slug        string               `json:"slug" validate:"omitempty,max=200"`
	Description *string              `json:"description"`
	Brand       *string              `json:"brand"`
	Material    *string              `json:"material"`
	Colors      []string             `json:"colors"`
	IsFeatured  bool                 `json:"is_featured"`
	Sizes       []productSizeRequest `json:"sizes" validate:"required,min=1,dive"`
}

type productUpdateRequest struct {
	CategoryID  *string              `json:"category_id" validate:"omitempty,uuid"`
	Title       *string              `json:"title" validate:"omitempty,min=2,max=200"`
	Description *string              `json:"description"`
	Brand       *string              `json:"brand"`
	Material    *string              `json:"material"`
	Colors      []string             `json:"colors"`
	IsActive    *bool                `json:"is_active"`
	IsFeatured  *bool                `json:"is_featured"`
	Sizes       []productSizeRequest `json:"sizes" validate:"omitempty,dive"`
}

func buildSizeInputs(rows []productSizeRequest) ([]products.SizeInput, error) {
	if rows == nil {
		return nil, nil
	}
	sizes := make([]products.SizeInput, 0, len(rows))
	for _, row := range rows {
		label := enums.SizeLabel(row.SizeLabel)
		if !label.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown size label").
				WithDetails(map[string]any{"size_label": row.SizeLabel})
		}
		price, err := decimal.NewFromString(row.Price)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "size price must be a decimal").
				WithDetails(map[string]any{"size_label": row.SizeLabel})
		}
		sizes = append(sizes, products.SizeInput{SizeLabel: label, Price: price, Stock: row.Stock})
	}
	return sizes, nil
}

// AdminProductCreate registers a new catalog listing with its variant rows.
func AdminProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID, err := uuid.Parse(payload.CategoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "category_id must be a uuid"))
			return
		}
		sizes, err := buildSizeInputs(payload.Sizes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), products.CreateInput{
			CategoryID:  categoryID,
			Title:       payload.Title,
			Slug:        payload.Slug,
			Description: payload.Description,
			Brand:       payload.Brand,
			Material:    payload.Material,
			Colors:      payload.Colors,
			IsFeatured:  payload.IsFeatured,
			Sizes:       sizes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminProductUpdate patches a listing; a sizes array replaces every variant row.
func AdminProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := products.UpdateInput{
			Title:       payload.Title,
			Description: payload.Description,
			Brand:       payload.Brand,
			Material:    payload.Material,
			Colors:      payload.Colors,
			IsActive:    payload.IsActive,
			IsFeatured:  payload.IsFeatured,
		}
		if payload.CategoryID != nil {
			categoryID, err := uuid.Parse(*payload.CategoryID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "category_id must be a uuid"))
				return
			}
			input.CategoryID = &categoryID
		}
		sizes, err := buildSizeInputs(payload.Sizes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Sizes = sizes

		product, err := svc.Update(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
