package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/local1284/membership/internal/auth"
	"github.com/local1284/membership/internal/http/dto"
	"github.com/local1284/membership/internal/middleware"
	"github.com/local1284/membership/internal/models"
	"github.com/local1284/membership/internal/services"
	"go.uber.org/zap"
)

// AdminUserHandler manages staff accounts. Routed behind the superadmin
// guard only.
type AdminUserHandler struct {
	userService *services.UserService
	log         *zap.Logger
}

func NewAdminUserHandler(userService *services.UserService, log *zap.Logger) *AdminUserHandler {
	return &AdminUserHandler{userService: userService, log: log}
}

func (h *AdminUserHandler) List(c *fiber.Ctx) error {
	users, err := h.userService.List(c.Context())
	if err != nil {
		h.log.Error("list users failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: users})
}

func (h *AdminUserHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid user id.")
	}

	user, err := h.userService.Get(c.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		return middleware.RespondError(c, fiber.StatusNotFound, "User not found.")
	}
	if err != nil {
		h.log.Error("get user failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}

func (h *AdminUserHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid request body.")
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" || req.Role == "" {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Email, password and role are required.")
	}

	user := &models.User{
		Email:      req.Email,
		Role:       req.Role,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		CanSendSMS: req.CanSendSMS,
		IsActive:   true,
	}

	err := h.userService.Create(c.Context(), callerFromCtx(c), user, req.Password)
	var policyErr *auth.PolicyViolationError
	if errors.As(err, &policyErr) {
		return middleware.RespondError(c, fiber.StatusBadRequest, policyErr.Error())
	}
	if err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: user})
}

func (h *AdminUserHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid user id.")
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	update := services.UserUpdate{
		Email:      req.Email,
		Role:       req.Role,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Status:     req.Status,
		CanSendSMS: req.CanSendSMS,
		Password:   req.Password,
	}

	user, err := h.userService.Update(c.Context(), callerFromCtx(c), id, update)
	var policyErr *auth.PolicyViolationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		return middleware.RespondError(c, fiber.StatusNotFound, "User not found.")
	case errors.As(err, &policyErr):
		return middleware.RespondError(c, fiber.StatusBadRequest, policyErr.Error())
	case err != nil:
		return middleware.RespondError(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}

func (h *AdminUserHandler) SetActive(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid user id.")
	}

	var req dto.SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	user, err := h.userService.SetActive(c.Context(), callerFromCtx(c), id, req.Active)
	if errors.Is(err, services.ErrNotFound) {
		return middleware.RespondError(c, fiber.StatusNotFound, "User not found.")
	}
	if err != nil {
		h.log.Error("set active failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}
