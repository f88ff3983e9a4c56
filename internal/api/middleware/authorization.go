package middleware

import (
	"context"
	"net/http"
	"strings"

	internaljwt "github.com/makebyjordan/chatbot-crm/internal/jwt"
)

const bearerPrefix = "Bearer "

type claimsKey struct{}

// ClaimsFromContext returns the claims of the token accepted by
// ValidateJWTMiddleware.
func ClaimsFromContext(ctx context.Context) (map[string]interface{}, bool) {
	claims, ok := ctx.Value(claimsKey{}).(map[string]interface{})
	return claims, ok
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// ValidateJWTMiddleware rejects requests without a valid, unexpired access
// token for role.
func ValidateJWTMiddleware(role internaljwt.Role) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
				return
			}

			claims, err := internaljwt.ParseToken(tokenString, role)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, map[string]interface{}(claims))
			next(w, r.WithContext(ctx))
		}
	}
}

var ValidateAdminJWT = ValidateJWTMiddleware(internaljwt.RoleAdmin)
