package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karavanrugs/karavan-backend/api/responses"
	"github.com/karavanrugs/karavan-backend/api/validators"
	"github.com/karavanrugs/karavan-backend/internal/categories"
	"github.com/karavanrugs/karavan-backend/internal/products"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
	"github.com/karavanrugs/karavan-backend/pkg/logger"
	"github.com/karavanrugs/karavan-backend/pkg/pagination"
)

// ProductList is the public catalog browse endpoint.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ProductDetail resolves a product by slug, falling back to id for admin
// tooling that links by uuid.
func ProductDetail(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := strings.TrimSpace(chi.URLParam(r, "productRef"))
		if ref == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product reference is required"))
			return
		}

		if id, err := uuid.Parse(ref); err == nil {
			product, err := svc.Get(r.Context(), id)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, product)
			return
		}

		product, err := svc.GetBySlug(r.Context(), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// CategoryList is the public category listing used by storefront filters.
func CategoryList(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func parseListInput(r *http.Request) (*products.ListInput, error) {
	query := r.URL.Query()
	input := products.ListInput{
		Filters: products.ListFilters{
			CategorySlug: strings.TrimSpace(query.Get("category")),
			Color:        strings.TrimSpace(query.Get("color")),
			Query:        strings.TrimSpace(query.Get("q")),
			FeaturedOnly: query.Get("featured") == "true",
		},
		Pagination: pagination.Params{
			Cursor: strings.TrimSpace(query.Get("cursor")),
		},
	}

	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return nil, err
	}
	input.Pagination.Limit = limit

	if raw := strings.TrimSpace(query.Get("size")); raw != "" {
		label := enums.SizeLabel(raw)
		if !label.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown size label").WithDetails(map[string]any{"field": "size"})
		}
		input.Filters.SizeLabel = &label
	}

	if min, err := parseQueryDecimal(query.Get("price_min"), "price_min"); err != nil {
		return nil, err
	} else if min != nil {
		input.Filters.PriceMin = min
	}
	if max, err := parseQueryDecimal(query.Get("price_max"), "price_max"); err != nil {
		return nil, err
	} else if max != nil {
		input.Filters.PriceMax = max
	}

	return &input, nil
}

func parseQueryDecimal(raw, field string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a decimal").WithDetails(map[string]any{"field": field})
	}
	return &value, nil
}
