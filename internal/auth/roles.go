package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/coursedesk/internal/domain"
	apperrors "github.com/campuskit/coursedesk/pkg/util"
)

// RequireRank ensures the caller holds at least the given role in the
// student < tutor < author < admin order.
func RequireRank(min domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewAuthError("authentication required")
		}
		if !principal.User.Role.HasRank(min) {
			return apperrors.NewPermissionError("insufficient rank")
		}
		return c.Next()
	}
}
