package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// RequireClient ensures a CLIENT is authenticated.
func RequireClient() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.SubjectType != domain.SubjectTypeClient || principal.Client == nil {
			return errorutil.NewForbidden("client account required")
		}
		return c.Next()
	}
}

// RequireOperator ensures an OPERATOR is authenticated.
func RequireOperator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.SubjectType != domain.SubjectTypeOperator || principal.Operator == nil {
			return errorutil.NewForbidden("operator account required")
		}
		return c.Next()
	}
}
