package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tashkhees/support-portal/internal/domain"
	apperrors "github.com/tashkhees/support-portal/pkg/util"
)

// RequireRoles ensures the authenticated user holds one of the allowed
// roles. Authorization is enforced per-route, never globally.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewAuthenticationError("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
