package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/karavanrugs/karavan-backend/api/middleware"
	"github.com/karavanrugs/karavan-backend/api/responses"
	"github.com/karavanrugs/karavan-backend/api/validators"
	"github.com/karavanrugs/karavan-backend/internal/cart"
	"github.com/karavanrugs/karavan-backend/internal/orders"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
	"github.com/karavanrugs/karavan-backend/pkg/logger"
	"github.com/karavanrugs/karavan-backend/pkg/pagination"
	"github.com/karavanrugs/karavan-backend/pkg/types"
)

type checkoutRequest struct {
	ShippingAddress types.Address `json:"shipping_address" validate:"required"`
	PaymentMethod   string        `json:"payment_method" validate:"omitempty,oneof=razorpay cod"`
	TaxPrice        string        `json:"tax_price" validate:"omitempty"`
	ShippingPrice   string        `json:"shipping_price" validate:"omitempty"`
}

type verifyPaymentRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}

// OrderCreate snapshots the actor's cart into an order and clears the cart.
func OrderCreate(ordersSvc orders.Service, cartSvc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		taxPrice, err := parseMoney(payload.TaxPrice, "tax_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shippingPrice, err := parseMoney(payload.ShippingPrice, "shipping_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		view, err := cartSvc.Get(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]orders.LineInput, 0, len(view.Cart.Items))
		for _, item := range view.Cart.Items {
			productID := item.ProductID
			lines = append(lines, orders.LineInput{
				ProductID: &productID,
				Name:      item.ProductTitle,
				SizeLabel: item.SizeLabel,
				Color:     item.Color,
				Qty:       item.Qty,
				UnitPrice: item.UnitPrice,
			})
		}

		order, err := ordersSvc.Create(r.Context(), orders.CreateInput{
			Actor:           actor,
			Lines:           lines,
			ShippingAddress: payload.ShippingAddress,
			PaymentMethod:   enums.PaymentMethod(payload.PaymentMethod),
			TaxPrice:        taxPrice,
			ShippingPrice:   shippingPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// The order owns the snapshot now; a stale cart would double-charge
		// on the next checkout.
		if err := cartSvc.Clear(r.Context(), actor); err != nil && logg != nil {
			logg.Error(r.Context(), "clear cart after checkout", err)
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), orders.ListInput{
			Actor: middleware.ActorFromContext(r.Context()),
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), middleware.ActorFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderBeginPayment opens a gateway checkout session for an unpaid order.
func OrderBeginPayment(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.BeginPayment(r.Context(), middleware.ActorFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// OrderVerifyPayment accepts the gateway callback fields after checkout.
func OrderVerifyPayment(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.VerifyPayment(r.Context(), orders.VerifyPaymentInput{
			Actor:            middleware.ActorFromContext(r.Context()),
			GatewayOrderID:   payload.GatewayOrderID,
			GatewayPaymentID: payload.GatewayPaymentID,
			Signature:        payload.Signature,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func parseMoney(raw, field string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a decimal").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}
