package middleware

import (
	"net/http"
	"strings"

	"tradehub-be/internal/logger"
	"tradehub-be/internal/profile"
	"tradehub-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Auth resolves the Bearer token into a caller identity on the request
// context. Requests without a valid token pass through anonymous; the service
// layer decides which operations require authentication.
func Auth(secret []byte, profiles profile.Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				next.ServeHTTP(w, r)
				return
			}

			profileID, err := uuid.Parse(sub)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			p, err := profiles.GetByID(r.Context(), profileID)
			if err != nil {
				logger.FromCtx(r.Context()).Warn("token subject has no profile",
					zap.String("profile_id", profileID.String()),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := utils.SetCallerContext(r.Context(), p.ID, p.Email, string(p.Role), p.Suspended)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
