package controllers

import (
	"net/http"

	"github.com/vitrinehub/vitrine-backend/api/responses"
	"github.com/vitrinehub/vitrine-backend/api/validators"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
)

type loadCartRequest struct {
	Code string `json:"code" validate:"required"`
}

type savedCartResponse struct {
	Code string `json:"code"`
}

// SavedCartSave snapshots the session cart under a fresh share code.
func SavedCartSave(eng Engine, logg *logger.Logger) http.HandlerFunc {
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

		code, err := eng.SaveCart(r.Context(), slug, sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, savedCartResponse{Code: code})
	}
}

// SavedCartLoad replaces the session cart with a previously saved snapshot.
// An unknown or cross-store code is reported as found=false, not an error.
func SavedCartLoad(eng Engine, logg *logger.Logger) http.HandlerFunc {
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

		var payload loadCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, found, err := eng.LoadCart(r.Context(), slug, sessionID, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"found": found, "cart": record})
	}
}
