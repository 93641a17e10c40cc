package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/pkg/config"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
	"github.com/vitrinehub/vitrine-backend/pkg/session"
)

const (
	SessionHeader = "X-Session-Id"
	sessionCookie = "vitrine_session"
	sessionMaxAge = 180 * 24 * time.Hour
)

// ShopperSession resolves the shopper session identifier for the request.
// The header wins over the cookie so API clients can pin their own session;
// browser traffic falls back to the cookie and gets one minted on first
// visit. With a token secret configured the cookie carries a signed token
// instead of the raw identifier; an unverifiable cookie is treated as absent
// and the visitor gets a fresh session.
func ShopperSession(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(SessionHeader)
			if sessionID == "" {
				if cookie, err := r.Cookie(sessionCookie); err == nil {
					sessionID = sessionFromCookie(cfg, cookie.Value)
				}
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				setSessionCookie(w, cfg, logg, r, sessionID)
			}

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithShopperSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromCookie(cfg config.SessionConfig, value string) string {
	if cfg.TokenSecret == "" {
		return value
	}
	sessionID, err := session.ParseToken(cfg, value)
	if err != nil {
		return ""
	}
	return sessionID
}

func setSessionCookie(w http.ResponseWriter, cfg config.SessionConfig, logg *logger.Logger, r *http.Request, sessionID string) {
	value := sessionID
	maxAge := sessionMaxAge
	if cfg.TokenSecret != "" {
		signed, err := session.MintToken(cfg, time.Now(), sessionID)
		if err != nil {
			if logg != nil {
				logg.Error(r.Context(), "session.cookie.mint_failed", err)
			}
			return
		}
		value = signed
		maxAge = cfg.TokenTTL
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// StoreResolver copies the {storeSlug} route parameter into the request context.
func StoreResolver() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := chi.URLParam(r, "storeSlug")
			ctx := WithStoreSlug(r.Context(), slug)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
