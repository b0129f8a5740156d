package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/local1284/membership/internal/metrics"
	"go.uber.org/zap"
)

// LoggerMiddleware emits one structured access log line per request and
// feeds the request metrics.
func LoggerMiddleware(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		latency := time.Since(start)

		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.IP()),
		}
		if identity := GetIdentity(c); identity != nil {
			fields = append(fields, zap.String("user_id", identity.ID))
		}
		log.Info("request", fields...)

		metrics.ObserveRequest(c.Method(), c.Route().Path, status, latency)

		return err
	}
}
