package middleware

import (
	"net/http"
	"strings"

	"castfeed-backend/infrastructure/config"
	"castfeed-backend/pkg/common"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload the backend cares about
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Authenticate validates the bearer token and puts the caller identity on
// the request context. Development deployments without a JWT secret accept
// an X-User-ID header instead, so local clients need no token machinery.
func Authenticate(cfg *config.Config) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.JWTSecret == "" && cfg.IsDevelopment() {
				userID := r.Header.Get("X-User-ID")
				if userID == "" {
					respondUnauthorized(w, "Missing user identity")
					return
				}
				next.ServeHTTP(w, r.WithContext(common.WithUserID(r.Context(), userID)))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondUnauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				respondUnauthorized(w, "Invalid authorization header format")
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(cfg.JWTSecret), nil
			}, jwt.WithIssuer(cfg.JWTIssuer), jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				respondUnauthorized(w, "Invalid token")
				return
			}

			userID := claims.UserID
			if userID == "" {
				userID = claims.Subject
			}
			if userID == "" {
				respondUnauthorized(w, "Token carries no user identity")
				return
			}

			next.ServeHTTP(w, r.WithContext(common.WithUserID(r.Context(), userID)))
		})
	}
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}
