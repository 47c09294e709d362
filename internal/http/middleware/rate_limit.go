package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stkbarbershop/appointments/internal/http/response"
	"github.com/stkbarbershop/appointments/internal/ratelimit"
	"github.com/stkbarbershop/appointments/pkg/logger"
	"github.com/stkbarbershop/appointments/pkg/metrics"
)

// RateLimiter wires the sliding-window limiter into the HTTP pipeline.
type RateLimiter struct {
	limiter    *ratelimit.Limiter
	metrics    *metrics.Metrics
	retryAfter time.Duration

	// KeyFunc resolves the client identifier; defaults to ClientIP.
	KeyFunc func(r *http.Request) string
	// SkipFunc short-circuits rate limiting when it returns true.
	SkipFunc func(r *http.Request) bool
}

func NewRateLimiter(limiter *ratelimit.Limiter, m *metrics.Metrics, retryAfter time.Duration) *RateLimiter {
	return &RateLimiter{
		limiter:    limiter,
		metrics:    m,
		retryAfter: retryAfter,
		KeyFunc:    ClientIP,
	}
}

// Middleware returns the rate limiting middleware. Rejections are
// client-caused, so they log at warn level and never as system faults.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.SkipFunc != nil && rl.SkipFunc(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := rl.KeyFunc(r)
			ctx := context.WithValue(r.Context(), logger.ClientIPKey, key)

			if err := rl.limiter.Allow(key); err != nil {
				if rl.metrics != nil {
					rl.metrics.RateLimited.Inc()
				}
				logger.WarnContext(ctx, "Request rate limited", "client_ip", key)
				w.Header().Set("Retry-After", strconv.Itoa(int(rl.retryAfter.Seconds())))
				response.RateLimit(w, "Prea multe cereri. Încearcă din nou mai târziu.")
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP extracts the real client IP from the request, falling back to
// "unknown" when nothing usable is present.
func ClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first IP if there are multiple
		if idx := strings.Index(xff, ","); idx != -1 {
			xff = xff[:idx]
		}
		if ip := strings.TrimSpace(xff); ip != "" {
			return ip
		}
	}

	// Check X-Real-IP header
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	if r.RemoteAddr == "" {
		return "unknown"
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
