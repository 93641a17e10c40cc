package controllers

import (
	"net/http"

	"github.com/vitrinehub/vitrine-backend/api/responses"
	"github.com/vitrinehub/vitrine-backend/api/validators"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

type finalizeRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	TaxID string `json:"tax_id"`
}

// CheckoutFinalize submits the session cart as an order. Only one submission
// per session runs at a time; a second request while one is in flight gets a
// conflict.
func CheckoutFinalize(eng Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if eng == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "storefront engine unavailable"))
			return
		}

		slug, sessionID, err := sessionScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload finalizeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer := types.CustomerInfo{
			Name:  payload.Name,
			Phone: payload.Phone,
			Email: payload.Email,
			TaxID: payload.TaxID,
		}

		success, err := eng.Finalize(r.Context(), slug, sessionID, customer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, success)
	}
}

// CheckoutDismiss clears the pending order confirmation for the session.
func CheckoutDismiss(eng Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if eng == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "storefront engine unavailable"))
			return
		}

		slug, sessionID, err := sessionScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := eng.DismissSuccess(r.Context(), slug, sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "dismissed"})
	}
}

// CheckoutMessageLink builds the WhatsApp handoff link for the pending order
// confirmation.
func CheckoutMessageLink(eng Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if eng == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "storefront engine unavailable"))
			return
		}

		slug, sessionID, err := sessionScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		link, err := eng.MessageLink(r.Context(), slug, sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"link": link})
	}
}
