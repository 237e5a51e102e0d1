package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tashkhees/support-portal/internal/api/dto"
	"github.com/tashkhees/support-portal/internal/auth"
	"github.com/tashkhees/support-portal/internal/domain"
	"github.com/tashkhees/support-portal/internal/repository"
	"github.com/tashkhees/support-portal/internal/service"
	apperrors "github.com/tashkhees/support-portal/pkg/util"
)

// LicensesHandler serves the admin license registry plus the public
// validation check.
type LicensesHandler struct {
	service *service.LicenseService
}

// NewLicensesHandler constructs handler.
func NewLicensesHandler(licenseService *service.LicenseService) *LicensesHandler {
	return &LicensesHandler{service: licenseService}
}

// Generate POST /licenses/generate.
func (h *LicensesHandler) Generate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationError("authentication required")
	}
	var req dto.GenerateLicensesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	keys, err := h.service.Generate(c.UserContext(), principal.ID, req.Count, domain.Product(req.Product), req.ExpiresAt, req.Notes)
	if err != nil {
		return err
	}
	items := make([]dto.LicenseResponse, 0, len(keys))
	for i := range keys {
		items = append(items, licenseResponse(&keys[i]))
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(fiber.Map{"licenses": items}))
}

// List GET /licenses.
func (h *LicensesHandler) List(c *fiber.Ctx) error {
	filter := repository.LicenseFilter{}
	switch strings.ToLower(c.Query("used")) {
	case "true":
		used := true
		filter.Used = &used
	case "false":
		used := false
		filter.Used = &used
	}
	if product := c.Query("product"); product != "" {
		p := domain.Product(product)
		filter.Product = &p
	}
	keys, stats, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.LicenseResponse, 0, len(keys))
	for i := range keys {
		items = append(items, licenseResponse(&keys[i]))
	}
	return c.JSON(dto.OK(dto.LicenseListResponse{
		Licenses: items,
		Stats: dto.LicenseStatsResponse{
			Total:     stats.Total,
			Used:      stats.Used,
			Available: stats.Available,
		},
	}))
}

// Validate POST /licenses/validate. Public: prospective users check their
// key before filling the registration form. An unknown key is a 404 with
// valid=false rather than an error envelope.
func (h *LicensesHandler) Validate(c *fiber.Ctx) error {
	var req dto.ValidateLicenseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	result, err := h.service.Validate(c.UserContext(), req.LicenseKey)
	if err != nil {
		if domainErr := apperrors.ToDomainError(err); domainErr.Code == "NOT_FOUND" {
			return c.Status(fiber.StatusNotFound).JSON(dto.Envelope{
				Success: true,
				Message: "Invalid license key. Please check your key and try again.",
				Data:    dto.ValidateLicenseResponse{Valid: false},
			})
		}
		return err
	}
	return c.JSON(dto.OK(dto.ValidateLicenseResponse{
		Valid:   result.Valid,
		Reason:  result.Reason,
		Product: result.Product,
	}))
}

// Delete DELETE /licenses/:id.
func (h *LicensesHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("License key deleted", nil))
}
