package middle

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mstgnz/robogate/infra/logger"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

type contextKey string

// RequestIDKey is the context key holding the request id
const RequestIDKey contextKey = "request_id"

// statusWriter wraps http.ResponseWriter to capture the status code
type statusWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	sw.size += n
	return n, err
}

func (sw *statusWriter) WriteHeader(statusCode int) {
	sw.statusCode = statusCode
	sw.ResponseWriter.WriteHeader(statusCode)
}

// RequestIDMiddleware keeps an incoming X-Request-ID or assigns a new one,
// echoes it in the response and stores it in the request context
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if requestID == "" {
				requestID = uuid.New().String()
				r.Header.Set(RequestIDHeader, requestID)
			}
			w.Header().Set(RequestIDHeader, requestID)

			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestIDFromContext returns the request id set by RequestIDMiddleware
func GetRequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GatewayLoggingMiddleware logs every payment and callback request once it
// has been served. Callback query strings carry signatures and are not logged.
func GatewayLoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isGatewayEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sw, r)

			providerName := extractProviderFromURL(r.URL.Path)
			if providerName == "" {
				providerName = "default"
			}

			log := logger.WithRequest(providerName, GetRequestIDFromContext(r.Context())).
				AddField("method", r.Method).
				AddField("path", r.URL.Path).
				AddField("status", sw.statusCode).
				AddField("bytes", sw.size).
				AddField("duration_ms", time.Since(start).Milliseconds()).
				AddField("client_ip", GetClientIP(r))

			if sw.statusCode >= http.StatusInternalServerError {
				log.Error("Gateway request failed", nil)
				return
			}
			if sw.statusCode >= http.StatusBadRequest {
				log.Warn("Gateway request rejected")
				return
			}
			log.Info("Gateway request served")
		})
	}
}

// isGatewayEndpoint checks if the URL path is a payment-related endpoint
func isGatewayEndpoint(path string) bool {
	for _, prefix := range []string{"/v1/payments", "/v1/callback"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// extractProviderFromURL extracts the provider name from the URL path
func extractProviderFromURL(path string) string {
	// /v1/payments/{provider}
	// /v1/callback/{provider}/result
	segments := strings.Split(strings.Trim(path, "/"), "/")

	if len(segments) >= 3 {
		switch segments[1] {
		case "payments", "callback":
			return segments[2]
		}
	}

	return ""
}

// GetClientIP extracts the real client IP. Forwarding headers are taken at
// face value, so the result is only fit for logging.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// first hop is the client
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	return RemoteIP(r)
}

// RemoteIP returns the address of the immediate peer
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "::1" {
		return "127.0.0.1"
	}
	return host
}

// TrustedClientIP resolves the client address, honoring forwarding headers
// only when the immediate peer is one of the trusted proxies. X-Forwarded-For
// is walked right to left and the first hop that is not a trusted proxy wins.
func TrustedClientIP(r *http.Request, trustedProxies map[string]struct{}) string {
	peer := RemoteIP(r)
	if _, ok := trustedProxies[peer]; !ok {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if _, ok := trustedProxies[hop]; !ok {
				return hop
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}
