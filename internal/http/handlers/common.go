package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/local1284/membership/internal/middleware"
	"github.com/local1284/membership/internal/models"
	"github.com/local1284/membership/internal/services"
)

// callerFromCtx assembles the audit caller for the current request. The
// actor is nil for anonymous requests.
func callerFromCtx(c *fiber.Ctx) services.Caller {
	caller := services.Caller{
		IP:        c.IP(),
		RequestID: middleware.GetRequestID(c),
	}
	if identity := middleware.GetIdentity(c); identity != nil {
		caller.Actor = &models.Actor{
			ID:    identity.ID,
			Email: identity.Email,
			Role:  identity.Role,
		}
	}
	return caller
}

func parsePagination(c *fiber.Ctx, defaultLimit int) (limit, offset int) {
	limit = c.QueryInt("limit", defaultLimit)
	offset = c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
