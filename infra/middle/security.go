package middle

import (
	"net/http"
	"strings"

	"github.com/mstgnz/robogate/infra/response"
)

// maxBodySize caps JSON orders and form callbacks
const maxBodySize = 1 << 20

// SecurityHeadersMiddleware adds security headers to responses
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// IPWhitelistMiddleware only lets the listed addresses through. An empty list
// allows everyone, which is the default outside production. Forwarding
// headers count only when the request arrives from one of trustedProxies.
func IPWhitelistMiddleware(allowed, trustedProxies []string) func(http.Handler) http.Handler {
	set := toSet(allowed)
	proxies := toSet(trustedProxies)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(set) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := set[TrustedClientIP(r, proxies)]; !ok {
				response.Error(w, http.StatusForbidden, "IP not whitelisted", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}

// RequestValidationMiddleware validates common request properties
func RequestValidationMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBodySize {
				response.Error(w, http.StatusRequestEntityTooLarge, "Request body too large", nil)
				return
			}
			// unknown or understated lengths are cut off while reading
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
			}

			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")

			// callback bodies are forms, never required to be JSON
			if strings.HasPrefix(r.URL.Path, "/v1/callback") {
				if contentType != "" &&
					!strings.Contains(contentType, "application/x-www-form-urlencoded") &&
					!strings.Contains(contentType, "application/json") {
					response.Error(w, http.StatusUnsupportedMediaType, "Content-Type must be application/x-www-form-urlencoded", nil)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if contentType == "" {
				response.Error(w, http.StatusBadRequest, "Content-Type header is required", nil)
				return
			}
			if !strings.Contains(contentType, "application/json") {
				response.Error(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
