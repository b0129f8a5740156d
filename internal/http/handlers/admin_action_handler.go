package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/local1284/membership/internal/http/dto"
	"github.com/local1284/membership/internal/middleware"
	"github.com/local1284/membership/internal/models"
	"github.com/local1284/membership/internal/services"
	"go.uber.org/zap"
)

// adminTasks is the closed set of maintenance verbs the actions endpoint
// accepts. Each one is a stub that records intent in the audit log until
// the underlying job is wired up.
var adminTasks = map[string]string{
	"archive-audit-log": "Archive audit log entries older than the retention window",
	"refresh-directory": "Refresh the member directory cache",
	"sync-members":      "Synchronize members from the international roster",
}

type AdminActionHandler struct {
	audit *services.AuditTrail
	log   *zap.Logger
}

func NewAdminActionHandler(audit *services.AuditTrail, log *zap.Logger) *AdminActionHandler {
	return &AdminActionHandler{audit: audit, log: log}
}

func (h *AdminActionHandler) List(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: adminTasks})
}

func (h *AdminActionHandler) Run(c *fiber.Ctx) error {
	var req dto.AdminActionRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	description, ok := adminTasks[req.Task]
	if !ok {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Unknown task.")
	}

	h.audit.RecordChange(c.Context(), services.Change{
		Caller:     callerFromCtx(c),
		Action:     models.ActionAdminTask,
		EntityType: "admin_task",
		EntityID:   req.Task,
		Notes:      description,
	})
	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{
		"task":   req.Task,
		"status": "accepted",
	}})
}
