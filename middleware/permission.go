package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// AdminOnly rejects callers whose token does not carry the ADMIN role. It
// must run after JWTMiddleware.
func AdminOnly(c *fiber.Ctx) error {
	p, ok := CurrentPrincipal(c)
	if !ok {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
	}
	if !p.IsAdmin() {
		return JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}
	return c.Next()
}
