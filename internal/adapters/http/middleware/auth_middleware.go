package middleware

import (
	"context"
	"strings"

	"fintech-financing/internal/core/domain"
	"fintech-financing/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// principalKey is the fiber.Ctx locals key holding the resolved principal.
const principalKey = "principal"

// TokenIntrospector resolves bearer tokens to principals. Implemented by
// services.IdentityService; stubbed in handler tests.
type TokenIntrospector interface {
	Introspect(ctx context.Context, token string) (domain.Principal, error)
}

// AuthMiddleware authenticates every request through the external identity
// service. Fail-closed: an unreachable or disagreeing identity service means
// 401, never a pass-through.
func AuthMiddleware(identity TokenIntrospector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return response.Unauthorized(c, "Missing or invalid bearer token")
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return response.Unauthorized(c, "Missing bearer token")
		}

		principal, err := identity.Introspect(c.Context(), token)
		if err != nil {
			return response.Unauthorized(c, "Invalid token")
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// GetPrincipal returns the principal resolved for this request, if any.
func GetPrincipal(c *fiber.Ctx) (domain.Principal, bool) {
	principal, ok := c.Locals(principalKey).(domain.Principal)
	return principal, ok
}
