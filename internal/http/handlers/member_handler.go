package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/local1284/membership/internal/http/dto"
	"github.com/local1284/membership/internal/middleware"
	"github.com/local1284/membership/internal/models"
	"github.com/local1284/membership/internal/rbac"
	"github.com/local1284/membership/internal/repositories"
	"github.com/local1284/membership/internal/services"
	"go.uber.org/zap"
)

type MemberHandler struct {
	memberService *services.MemberService
	log           *zap.Logger
}

func NewMemberHandler(memberService *services.MemberService, log *zap.Logger) *MemberHandler {
	return &MemberHandler{memberService: memberService, log: log}
}

func memberFilterFromQuery(c *fiber.Ctx) repositories.MemberFilter {
	f := repositories.MemberFilter{
		Name:             c.Query("name"),
		CID:              c.Query("cid"),
		UID:              c.Query("uid"),
		Status:           c.Query("status"),
		DepartmentNumber: c.Query("department_number"),
		SMSGroup:         c.Query("sms_group"),
		Tag:              c.Query("tag"),
	}
	if v := c.Query("seniority_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.SeniorityFrom = &t
		}
	}
	if v := c.Query("seniority_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.SeniorityTo = &t
		}
	}
	f.Limit, f.Offset = parsePagination(c, 50)
	return f
}

func (h *MemberHandler) List(c *fiber.Ctx) error {
	f := memberFilterFromQuery(c)
	members, total, err := h.memberService.List(c.Context(), f)
	if err != nil {
		h.log.Error("list members failed", zap.Error(err), zap.String("request_id", middleware.GetRequestID(c)))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	if members == nil {
		members = []models.Member{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.PagedData{
		Items: members, Total: total, Limit: f.Limit, Offset: f.Offset,
	}})
}

func (h *MemberHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid member id.")
	}

	member, err := h.memberService.Get(c.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		return middleware.RespondError(c, fiber.StatusNotFound, "Member not found.")
	}
	if err != nil {
		h.log.Error("get member failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: member})
}

func (h *MemberHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid request body.")
	}
	if req.FirstName == "" || req.LastName == "" {
		return middleware.RespondError(c, fiber.StatusBadRequest, "First and last name are required.")
	}

	member := &models.Member{
		CID:              req.CID,
		UID:              req.UID,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		SeniorityDate:    req.SeniorityDate,
		Status:           req.Status,
		DepartmentNumber: req.DepartmentNumber,
		DepartmentName:   req.DepartmentName,
		Tags:             req.Tags,
		SMSGroups:        req.SMSGroups,
		InternalNotes:    req.InternalNotes,
	}
	if req.Address != nil {
		member.Address = models.Address{
			Street: req.Address.Street, City: req.Address.City,
			State: req.Address.State, Zip: req.Address.Zip,
		}
	}

	if err := h.memberService.Create(c.Context(), callerFromCtx(c), member); err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: member})
}

// Update applies a partial mutation. Stewards are restricted to a narrow
// field allow-list; a request touching anything outside it is denied whole,
// no partial application.
func (h *MemberHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid member id.")
	}

	var req dto.UpdateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	update := services.MemberUpdate{
		CID:              req.CID,
		UID:              req.UID,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		SeniorityDate:    req.SeniorityDate,
		Status:           req.Status,
		DepartmentNumber: req.DepartmentNumber,
		DepartmentName:   req.DepartmentName,
		Tags:             req.Tags,
		SMSGroups:        req.SMSGroups,
		InternalNotes:    req.InternalNotes,
	}
	if req.Address != nil {
		update.Address = &models.Address{
			Street: req.Address.Street, City: req.Address.City,
			State: req.Address.State, Zip: req.Address.Zip,
		}
	}

	decision, deniedField := rbac.MemberFieldsWritable(middleware.GetIdentity(c), update.Fields())
	if !decision.Allowed {
		if decision.Reason == rbac.ReasonAuthenticationRequired {
			return middleware.RespondError(c, fiber.StatusUnauthorized, "Authentication required.")
		}
		return middleware.RespondError(c, fiber.StatusForbidden,
			fmt.Sprintf("Stewards may not modify the %q field.", deniedField))
	}

	member, err := h.memberService.Update(c.Context(), callerFromCtx(c), id, update)
	if errors.Is(err, services.ErrNotFound) {
		return middleware.RespondError(c, fiber.StatusNotFound, "Member not found.")
	}
	if err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: member})
}

func (h *MemberHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid member id.")
	}

	err = h.memberService.Delete(c.Context(), callerFromCtx(c), id)
	if errors.Is(err, services.ErrNotFound) {
		return middleware.RespondError(c, fiber.StatusNotFound, "Member not found.")
	}
	if err != nil {
		h.log.Error("delete member failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// Export returns the filtered roster. Every export is audited with the
// filter and the row count; that entry is written even for an empty result.
func (h *MemberHandler) Export(c *fiber.Ctx) error {
	f := memberFilterFromQuery(c)
	members, err := h.memberService.Export(c.Context(), callerFromCtx(c), f)
	if err != nil {
		h.log.Error("export members failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	if members == nil {
		members = []models.Member{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: members})
}
