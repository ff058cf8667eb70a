package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/karavanrugs/karavan-backend/api/middleware"
	"github.com/karavanrugs/karavan-backend/api/responses"
	"github.com/karavanrugs/karavan-backend/api/validators"
	"github.com/karavanrugs/karavan-backend/internal/orders"
	"github.com/karavanrugs/karavan-backend/pkg/logger"
)

// AdminOrderDeliver flips fulfilment state. Payment is not a precondition;
// cash-on-delivery orders are delivered first and settled after.
func AdminOrderDeliver(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.MarkDelivered(r.Context(), middleware.ActorFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
