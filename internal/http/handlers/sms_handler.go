package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/local1284/membership/internal/http/dto"
	"github.com/local1284/membership/internal/middleware"
	"github.com/local1284/membership/internal/models"
	"github.com/local1284/membership/internal/repositories"
	"github.com/local1284/membership/internal/services"
	"go.uber.org/zap"
)

type SMSHandler struct {
	smsService *services.SMSService
	log        *zap.Logger
}

func NewSMSHandler(smsService *services.SMSService, log *zap.Logger) *SMSHandler {
	return &SMSHandler{smsService: smsService, log: log}
}

// Groups lists the distinct sms group names across all members.
func (h *SMSHandler) Groups(c *fiber.Ctx) error {
	groups, err := h.smsService.Groups(c.Context())
	if err != nil {
		h.log.Error("list sms groups failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	if groups == nil {
		groups = []string{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: groups})
}

func (h *SMSHandler) History(c *fiber.Ctx) error {
	limit, _ := parsePagination(c, 50)
	messages, err := h.smsService.ListRecent(c.Context(), limit)
	if err != nil {
		h.log.Error("list sms history failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	if messages == nil {
		messages = []models.SMSMessage{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: messages})
}

// Broadcast fans a message out to the selected segment. Guarded by the
// per-user sms permission and the admin-action rate class at the router.
func (h *SMSHandler) Broadcast(c *fiber.Ctx) error {
	var req dto.SMSBroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid request body.")
	}
	if req.SegmentType == "" {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Segment type is required.")
	}

	seg := services.BroadcastSegment{
		Type:     req.SegmentType,
		SMSGroup: req.SMSGroup,
		Tags:     req.Tags,
	}
	if req.Filter != nil {
		seg.Filter = repositories.MemberFilter{
			Name:             req.Filter.Name,
			Status:           req.Filter.Status,
			DepartmentNumber: req.Filter.DepartmentNumber,
		}
	}

	result, err := h.smsService.Broadcast(c.Context(), callerFromCtx(c), seg, req.Body)
	switch {
	case errors.Is(err, services.ErrEmptySegment):
		return middleware.RespondError(c, fiber.StatusBadRequest, "Segment matched no members with a phone number.")
	case errors.Is(err, services.ErrSMSDisabled):
		return middleware.RespondError(c, fiber.StatusServiceUnavailable, "SMS sending is not configured.")
	case err != nil:
		return middleware.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: result})
}
