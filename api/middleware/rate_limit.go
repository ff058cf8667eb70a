package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/karavanrugs/karavan-backend/api/responses"
	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
	"github.com/karavanrugs/karavan-backend/pkg/logger"
)

// AttemptLimiter is the slice of the redis client the limiter needs.
type AttemptLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy bounds attempts per client IP for one auth endpoint.
type AuthRateLimitPolicy struct {
	Name   string
	Window time.Duration
	Limit  int64
}

// AuthRateLimit caps per-IP attempts on credential endpoints. A nil limiter
// disables the cap rather than blocking logins.
func AuthRateLimit(policy AuthRateLimitPolicy, limiter AttemptLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || policy.Limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			scope := policy.Name + ":" + clientIP(r)
			allowed, _, err := limiter.FixedWindowAllow(r.Context(), scope, policy.Limit, policy.Window)
			if err != nil {
				// Redis trouble must not lock everyone out.
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "scope", scope), "rate limit check failed")
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "too many attempts, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
