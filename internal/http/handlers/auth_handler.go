package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/local1284/membership/internal/auth"
	"github.com/local1284/membership/internal/config"
	"github.com/local1284/membership/internal/http/dto"
	"github.com/local1284/membership/internal/middleware"
	"github.com/local1284/membership/internal/models"
	"github.com/local1284/membership/internal/services"
	"github.com/local1284/membership/internal/session"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userService  *services.UserService
	sessionStore *fibersession.Store
	cfg          *config.Config
	log          *zap.Logger
}

func NewAuthHandler(userService *services.UserService, sessionStore *fibersession.Store, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{userService: userService, sessionStore: sessionStore, cfg: cfg, log: log}
}

// Login authenticates and establishes the session. The session id is
// regenerated before anything is written into it, so the cookie a client
// held before authenticating can never name an authenticated session.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid request body.")
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Email and password are required.")
	}

	user, err := h.userService.Authenticate(c.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return middleware.RespondError(c, fiber.StatusUnauthorized, "Invalid email or password.")
	}
	if err != nil {
		h.log.Error("login failed", zap.Error(err), zap.String("request_id", middleware.GetRequestID(c)))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}

	sess, err := h.sessionStore.Get(c)
	if err != nil {
		h.log.Error("session open failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	if err := sess.Regenerate(); err != nil {
		h.log.Error("session regenerate failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	sess.Set(session.KeyUserID, user.ID.String())
	sess.Set(session.KeyEmail, user.Email)
	sess.Set(session.KeyRole, user.Role)
	sess.Set(session.KeyCanSendSMS, user.CanSendSMS)
	if err := sess.Save(); err != nil {
		h.log.Error("session save failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}

	caller := services.Caller{
		Actor:     &models.Actor{ID: user.ID.String(), Email: user.Email, Role: user.Role},
		IP:        c.IP(),
		RequestID: middleware.GetRequestID(c),
	}
	h.userService.RecordLogin(c.Context(), caller, user.ID)

	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.sessionStore.Get(c)
	if err != nil {
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}

	if identity := middleware.GetIdentity(c); identity != nil {
		h.userService.RecordLogout(c.Context(), callerFromCtx(c), identity.ID)
	}

	if err := sess.Destroy(); err != nil {
		h.log.Warn("session destroy failed", zap.Error(err))
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		return middleware.RespondError(c, fiber.StatusUnauthorized, "Authentication required.")
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: identity})
}

// CSRFToken hands the double-submit token to browser clients.
func (h *AuthHandler) CSRFToken(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.CSRFTokenResponse{
		Token: middleware.GetCSRFToken(c),
	}})
}

// RequestPasswordReset answers identically for known and unknown emails.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Email is required.")
	}

	token, err := h.userService.RequestPasswordReset(c.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		h.log.Error("password reset request failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}

	resp := dto.PasswordResetResponse{
		Message: "If that account exists, a reset link has been sent.",
	}
	if !h.cfg.IsProduction {
		resp.Token = token
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: resp})
}

func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" || req.Password == "" {
		return middleware.RespondError(c, fiber.StatusBadRequest, "Token and password are required.")
	}

	err := h.userService.ConfirmPasswordReset(c.Context(), callerFromCtx(c), req.Token, req.Password)
	var policyErr *auth.PolicyViolationError
	switch {
	case errors.Is(err, services.ErrInvalidResetToken):
		return middleware.RespondError(c, fiber.StatusBadRequest, "Invalid or expired password reset token.")
	case errors.As(err, &policyErr):
		return middleware.RespondError(c, fiber.StatusBadRequest, policyErr.Error())
	case err != nil:
		h.log.Error("password reset confirm failed", zap.Error(err))
		return middleware.RespondError(c, fiber.StatusInternalServerError, "Internal error.")
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
