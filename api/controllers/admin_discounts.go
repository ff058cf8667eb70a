package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/karavanrugs/karavan-backend/api/middleware"
	"github.com/karavanrugs/karavan-backend/api/responses"
	"github.com/karavanrugs/karavan-backend/api/validators"
	"github.com/karavanrugs/karavan-backend/internal/discounts"
	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
	"github.com/karavanrugs/karavan-backend/pkg/logger"
)

type discountCreateRequest struct {
	Percent string `json:"percent" validate:"required"`
}

// AdminDiscountCreate appends a new trader discount policy; the latest row wins.
func AdminDiscountCreate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload discountCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		percent, err := decimal.NewFromString(payload.Percent)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "percent must be a decimal"))
			return
		}

		policy, err := svc.Create(r.Context(), discounts.CreateInput{
			Actor:   middleware.ActorFromContext(r.Context()),
			Percent: percent,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, policy)
	}
}

func AdminDiscountList(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		policies, err := svc.List(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"policies": policies})
	}
}
