package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/coursedesk/internal/api/dto"
	"github.com/campuskit/coursedesk/internal/auth"
	"github.com/campuskit/coursedesk/internal/service"
	apperrors "github.com/campuskit/coursedesk/pkg/util"
)

// AuthHandler exposes session and account activation endpoints.
type AuthHandler struct {
	identity *service.IdentityService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(identity *service.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.identity.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"user": userResponse(user),
		"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
	}})
}

// Logout handles POST /auth/logout. The session token stays revoked until its
// natural expiry.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthError("authentication required")
	}
	if err := h.identity.Logout(c.Context(), principal.TokenID, principal.TokenExpiresAt); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Activate handles POST /auth/activate. Consumes the one-time code from the
// invitation mail and sets the initial password.
func (h *AuthHandler) Activate(c *fiber.Ctx) error {
	var req dto.ActivateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Code == "" || req.Password == "" {
		return apperrors.NewValidationError("code and password required", nil)
	}

	user, err := h.identity.Activate(c.Context(), req.Code, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}
