package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tashkhees/support-portal/internal/api/dto"
	"github.com/tashkhees/support-portal/internal/auth"
	"github.com/tashkhees/support-portal/internal/service"
	apperrors "github.com/tashkhees/support-portal/pkg/util"
)

// AuthHandler serves registration, login and profile endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Register POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	session, err := h.service.Register(c.UserContext(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		LicenseKey: req.LicenseKey,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OKMessage("Registration successful", sessionResponse(session)))
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	session, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(sessionResponse(session)))
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationError("authentication required")
	}
	user, err := h.service.Me(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(userResponse(user)))
}

// UpdateProfile PUT /auth/profile.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationError("authentication required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	user, err := h.service.UpdateProfile(c.UserContext(), principal.ID, service.ProfileUpdate{
		Name:            req.Name,
		Email:           req.Email,
		ProfilePicture:  req.ProfilePicture,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("Profile updated", userResponse(user)))
}

// CreateDeveloper POST /auth/developers.
func (h *AuthHandler) CreateDeveloper(c *fiber.Ctx) error {
	var req dto.CreateDeveloperRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	user, err := h.service.CreateDeveloper(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OKMessage("Developer account created", userResponse(user)))
}

// DeleteDeveloper DELETE /auth/developers/:id.
func (h *AuthHandler) DeleteDeveloper(c *fiber.Ctx) error {
	if err := h.service.DeleteDeveloper(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("Developer account deleted", nil))
}
