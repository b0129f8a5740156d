package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/google/uuid"
	"github.com/local1284/membership/internal/config"
)

const CtxCSRFToken = "csrf_token"

// csrfExempt lists path prefixes outside the browser-facing surface.
var csrfExempt = []string{"/health", "/metrics", "/ws/"}

// CSRFMiddleware protects state-changing requests with a double-submit
// token. Clients fetch the token from the csrf-token endpoint and echo it
// in the X-Csrf-Token header.
func CSRFMiddleware(cfg *config.Config, storage fiber.Storage) fiber.Handler {
	return csrf.New(csrf.Config{
		Next: func(c *fiber.Ctx) bool {
			for _, prefix := range csrfExempt {
				if strings.HasPrefix(c.Path(), prefix) {
					return true
				}
			}
			return false
		},
		KeyLookup:      "header:X-Csrf-Token",
		CookieName:     cfg.SessionCookieName + "_csrf",
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: cfg.CookieHTTPOnly,
		CookieSameSite: cfg.CookieSameSite,
		Expiration:     cfg.SessionTTL,
		Storage:        storage,
		ContextKey:     CtxCSRFToken,
		KeyGenerator: func() string {
			return uuid.New().String()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return RespondError(c, fiber.StatusForbidden, "Invalid or missing CSRF token.")
		},
	})
}

// GetCSRFToken returns the token issued for this request's client.
func GetCSRFToken(c *fiber.Ctx) string {
	token, _ := c.Locals(CtxCSRFToken).(string)
	return token
}
