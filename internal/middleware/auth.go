package middleware

import (
	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/local1284/membership/internal/rbac"
	"github.com/local1284/membership/internal/session"
	"go.uber.org/zap"
)

const CtxIdentity = "identity"

// GetIdentity returns the authenticated identity, or nil for anonymous
// requests.
func GetIdentity(c *fiber.Ctx) *rbac.Identity {
	identity, _ := c.Locals(CtxIdentity).(*rbac.Identity)
	return identity
}

func identityFromSession(sess *fibersession.Session) *rbac.Identity {
	userID, _ := sess.Get(session.KeyUserID).(string)
	if userID == "" {
		return nil
	}
	email, _ := sess.Get(session.KeyEmail).(string)
	role, _ := sess.Get(session.KeyRole).(string)
	canSendSMS, _ := sess.Get(session.KeyCanSendSMS).(bool)
	return &rbac.Identity{ID: userID, Email: email, Role: role, CanSendSMS: canSendSMS}
}

// AttachIdentity resolves the session into an identity when one exists.
// It never denies; guards downstream decide.
func AttachIdentity(store *fibersession.Store, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			log.Warn("session load failed", zap.Error(err), zap.String("request_id", GetRequestID(c)))
			return c.Next()
		}
		if identity := identityFromSession(sess); identity != nil {
			c.Locals(CtxIdentity, identity)
		}
		return c.Next()
	}
}

// RequireAuth denies anonymous requests with 401.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetIdentity(c) == nil {
			return RespondError(c, fiber.StatusUnauthorized, "Authentication required.")
		}
		return c.Next()
	}
}

// RequireRoles authorizes the request's identity against the required role
// set. Anonymous requests get 401, authenticated-but-insufficient get 403.
func RequireRoles(requiredRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := rbac.Authorize(GetIdentity(c), requiredRoles...)
		if decision.Allowed {
			return c.Next()
		}
		if decision.Reason == rbac.ReasonAuthenticationRequired {
			return RespondError(c, fiber.StatusUnauthorized, "Authentication required.")
		}
		return RespondError(c, fiber.StatusForbidden, "Insufficient permissions.")
	}
}

// RequireSMSPermission gates the broadcast surface on the per-user flag.
func RequireSMSPermission() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := GetIdentity(c)
		if identity == nil {
			return RespondError(c, fiber.StatusUnauthorized, "Authentication required.")
		}
		if !identity.CanSendSMS && identity.Role != rbac.RoleSuperadmin {
			return RespondError(c, fiber.StatusForbidden, "SMS permission required.")
		}
		return c.Next()
	}
}
