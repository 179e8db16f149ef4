package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"linkedapi/internal/auth"
)

const (
	// UserIDLocalKey stores the authenticated user id in Fiber's context locals.
	UserIDLocalKey = "user_id"
	// RoleLocalKey stores the authenticated user's role.
	RoleLocalKey = "role"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token with 401.
func RequireAuth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok, ok := bearer(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		claims, err := v.Verify(tok)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}
		setClaims(c, claims)
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through. An invalid token is still rejected.
func OptionalAuth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok, ok := bearer(c)
		if !ok {
			return c.Next()
		}
		claims, err := v.Verify(tok)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}
		setClaims(c, claims)
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}

func bearer(c *fiber.Ctx) (string, bool) {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(h[7:])
	return tok, tok != ""
}

func setClaims(c *fiber.Ctx, claims *auth.Claims) {
	c.Locals(UserIDLocalKey, claims.Subject)
	c.Locals(RoleLocalKey, claims.Role)
}
