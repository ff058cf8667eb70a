package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/karavanrugs/karavan-backend/api/middleware"
	"github.com/karavanrugs/karavan-backend/api/responses"
	"github.com/karavanrugs/karavan-backend/api/validators"
	"github.com/karavanrugs/karavan-backend/internal/traders"
	"github.com/karavanrugs/karavan-backend/pkg/logger"
)

func AdminTraderApplications(svc traders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		applications, err := svc.ListApplications(r.Context(), middleware.ActorFromContext(r.Context()), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"applications": newAccountViews(applications)})
	}
}

// AdminTraderApprove grants trader access and returns the one-time temp
// password. It is never shown again after this response.
func AdminTraderApprove(svc traders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParsePathUUID(chi.URLParam(r, "userID"), "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Approve(r.Context(), middleware.ActorFromContext(r.Context()), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"user":          newAccountView(result.User),
			"temp_password": result.TempPassword,
		})
	}
}

func AdminTraderRevoke(svc traders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParsePathUUID(chi.URLParam(r, "userID"), "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Revoke(r.Context(), middleware.ActorFromContext(r.Context()), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"user": newAccountView(user)})
	}
}
