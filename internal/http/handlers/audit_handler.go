package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/local1284/membership/internal/http/dto"
	"github.com/local1284/membership/internal/middleware"
	"github.com/local1284/membership/internal/models"
	"github.com/local1284/membership/internal/repositories"
	"go.uber.org/zap"
)

// AuditHandler exposes the read side of the audit log. There is no write
// surface; entries are appended by the services layer only.
type AuditHandler struct {
	auditRepo *repositories.AuditRepo
	log       *zap.Logger
}

func NewAuditHandler(auditRepo *repositories.AuditRepo, log *zap.Logger) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo, log: log}
}

func (h *AuditHandler) Query(c *fiber.Ctx) error {
	f := repositories.AuditFilter{
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		ActorID:    c.Query("actor_id"),
		Action:     c.Query("action"),
		Limit:      c.QueryInt("limit", 50),
	}
	if v := c.Query("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.Since = &t
		} else {
			return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid since timestamp, expected RFC3339.")
		}
	}

	entries, err := h.auditRepo.Query(c.Context(), f)
	if err != nil {
		h.log.Error("audit query failed", zap.Error(err), zap.String("request_id", middleware.GetRequestID(c)))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}
