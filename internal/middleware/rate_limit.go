package middleware

import (
	"github.com/deppfellow/recipe-service/internal/server"
)

// RateLimitMiddleware reports rate limiter rejections. Enforcement itself is
// echo's RateLimiter, configured in the router.
type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// RecordRateLimitHit logs the rejection and records a New Relic custom event.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint, identifier string) {
	if r.server.Logger != nil {
		r.server.Logger.Warn().
			Str("endpoint", endpoint).
			Str("ip", identifier).
			Msg("rate limit exceeded")
	}

	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
			"ip":       identifier,
		})
	}
}
