package controllers

import (
	"net/http"

	"github.com/vitrinehub/vitrine-backend/api/middleware"
	"github.com/vitrinehub/vitrine-backend/api/responses"
	"github.com/vitrinehub/vitrine-backend/api/validators"
	"github.com/vitrinehub/vitrine-backend/internal/catalog"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
)

// sessionScope pulls the store slug and shopper session resolved by the
// routing middleware. Both are required for every storefront operation.
func sessionScope(r *http.Request) (string, string, error) {
	slug := middleware.StoreSlugFromContext(r.Context())
	if slug == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "store slug is required")
	}
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "shopper session is required")
	}
	return slug, sessionID, nil
}

// StorefrontView renders the storefront projection for the shopper session.
// The query string carries the filter state and is echoed back in the view.
func StorefrontView(eng Engine, logg *logger.Logger) http.HandlerFunc {
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

		view, err := eng.View(r.Context(), slug, sessionID, r.URL.Query())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

type filterChangeRequest struct {
	Search        *string   `json:"search"`
	Brands        *[]string `json:"brands"`
	Category      *string   `json:"category"`
	Sort          *string   `json:"sort"`
	FavoritesOnly *bool     `json:"favorites_only"`
	CarouselBrand *string   `json:"carousel_brand"`
	Page          *int      `json:"page"`
}

type filterChangeResponse struct {
	Query string `json:"query"`
}

// StorefrontFilter applies one filter interaction to the query state carried
// in the request URL and returns the canonical query string for the updated
// shareable link. The client navigates to it; the next View call renders the
// new state.
func StorefrontFilter(eng Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if eng == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "storefront engine unavailable"))
			return
		}

		var payload filterChangeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		change := catalog.FilterChange{
			Search:        payload.Search,
			Brands:        payload.Brands,
			Category:      payload.Category,
			FavoritesOnly: payload.FavoritesOnly,
			CarouselBrand: payload.CarouselBrand,
			Page:          payload.Page,
		}
		if payload.Sort != nil {
			key := enums.SortKey(*payload.Sort)
			if !key.Valid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown sort key"))
				return
			}
			change.Sort = &key
		}

		responses.WriteSuccess(w, filterChangeResponse{
			Query: eng.UpdateFilter(r.URL.Query(), change),
		})
	}
}
