package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/soma-campus/soma-backend/internal/apperr"
	"github.com/soma-campus/soma-backend/internal/httpx"
	"github.com/soma-campus/soma-backend/internal/utils"
)

const SessionCookieName = "jwt"

type SessionVerifier interface {
	SessionUserID(ctx context.Context, token string) (string, error)
}

// TokenFromRequest prefers the jwt cookie and falls back to a bearer header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func SessionMiddleware(verifier SessionVerifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				httpx.WriteError(w, http.StatusUnauthorized, "Authentication credentials were not provided")
				return
			}

			userID, err := verifier.SessionUserID(r.Context(), token)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindNotFound {
					err = apperr.Unauthorized("User not found")
				}
				httpx.Fail(w, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.WithUserID(r.Context(), userID)))
		})
	}
}

// CORS echoes allow-listed origins with credentials enabled so the jwt
// cookie travels on cross-site requests.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
