package session

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/local1284/membership/internal/config"
)

// Session keys for the authenticated identity. Primitive values only, so
// the middleware's gob codec needs no type registration.
const (
	KeyUserID     = "user_id"
	KeyEmail      = "email"
	KeyRole       = "role"
	KeyCanSendSMS = "can_send_sms"
)

// AssertCookieSecurity is a startup invariant, not a per-request check:
// under production the session cookie must be Secure and HTTPOnly with
// SameSite Lax or Strict. Violations abort startup.
func AssertCookieSecurity(cfg *config.Config) error {
	if !cfg.IsProduction {
		return nil
	}
	if !cfg.CookieSecure {
		return fmt.Errorf("session: cookies must be marked secure in production")
	}
	if !cfg.CookieHTTPOnly {
		return fmt.Errorf("session: cookies must be httpOnly in production")
	}
	switch strings.ToLower(cfg.CookieSameSite) {
	case "lax", "strict":
	default:
		return fmt.Errorf("session: cookies must use SameSite Lax or Strict in production, got %q", cfg.CookieSameSite)
	}
	return nil
}

// NewStore builds the Fiber session store on the shared storage backend.
func NewStore(cfg *config.Config, storage fiber.Storage) *session.Store {
	return session.New(session.Config{
		Storage:        storage,
		Expiration:     cfg.SessionTTL,
		KeyLookup:      "cookie:" + cfg.SessionCookieName,
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: cfg.CookieHTTPOnly,
		CookieSameSite: cfg.CookieSameSite,
	})
}
