package middleware

import (
	"net/http"
	"strconv"

	"github.com/makebyjordan/chatbot-crm/utils"
)

// DefaultPreflightMaxAge is how long browsers may cache a preflight answer.
const DefaultPreflightMaxAge = 600

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	// MaxAge in seconds; zero uses DefaultPreflightMaxAge.
	MaxAge int
}

// allowedOrigin returns the value for Access-Control-Allow-Origin, or "" when
// origin may not call this server. With credentials a "*" entry reflects the
// caller's origin, since browsers reject a literal "*" there.
func (c CORSConfig) allowedOrigin(origin string) string {
	for _, o := range c.AllowedOrigins {
		switch {
		case o == "*" && !c.AllowCredentials:
			return "*"
		case o == "*":
			return origin
		case origin != "" && o == origin:
			return o
		}
	}
	return ""
}

// CORS sets the CORS response headers and answers preflight requests. A
// preflight from an origin that is not allowed gets 403 and never reaches
// the handler; other requests pass through without CORS headers.
func CORS(config CORSConfig) Middleware {
	methods := utils.StringJoin(config.AllowedMethods, ", ")
	headers := utils.StringJoin(config.AllowedHeaders, ", ")
	maxAge := config.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultPreflightMaxAge
	}

	return func(f http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			allowed := config.allowedOrigin(r.Header.Get("Origin"))

			if allowed != "" {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", allowed)
				if allowed != "*" {
					h.Add("Vary", "Origin")
				}
				if config.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
			}

			if r.Method == http.MethodOptions {
				if allowed == "" {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(maxAge))
				w.WriteHeader(http.StatusOK)
				return
			}

			f(w, r)
		}
	}
}
