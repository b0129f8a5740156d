package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/local1284/membership/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimitMiddleware bounds request rate for one action class. Keys by the
// authenticated identity when present, otherwise by client IP. On throttle
// the guarded handler never runs and nothing is audited; store errors fail
// open so a counter outage cannot take down the API.
func RateLimitMiddleware(limiter *ratelimit.Limiter, class ratelimit.Class, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if identity := GetIdentity(c); identity != nil {
			key = identity.ID
		}

		result, err := limiter.Check(c.Context(), class, key)
		if err != nil {
			log.Warn("rate limit store error, failing open",
				zap.Error(err),
				zap.String("class", string(class)),
				zap.String("request_id", GetRequestID(c)))
			return c.Next()
		}

		if !result.Allowed {
			retryAfterSec := int(result.RetryAfter.Seconds())
			if retryAfterSec < 1 {
				retryAfterSec = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfterSec))
			return RespondError(c, fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		}

		return c.Next()
	}
}
