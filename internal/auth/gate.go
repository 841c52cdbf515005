package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dabeez/storefront-gateway/internal/session"
)

const tokenLocalsKey = "adminToken"

// Lifecycle is told when verified admin sessions appear and disappear. The
// dashboard synchronizer hangs off these events.
type Lifecycle interface {
	SessionVerified(sessionID, token string)
	SessionRevoked(sessionID string)
}

// Gate protects admin-only routes. Requests pass only when the session
// holds a token the remote verifier accepts.
type Gate struct {
	store     *TokenStore
	checker   AdminChecker
	lifecycle Lifecycle
}

func NewGate(store *TokenStore, checker AdminChecker, lifecycle Lifecycle) *Gate {
	return &Gate{store: store, checker: checker, lifecycle: lifecycle}
}

func (g *Gate) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, err := session.FromCtx(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		token, err := g.store.Token(sid)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		if !g.checker.IsAdmin(c.Context(), token) {
			// a stored token that no longer verifies means the admin
			// status was revoked upstream
			g.lifecycle.SessionRevoked(sid)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "access denied"})
		}
		g.lifecycle.SessionVerified(sid, token)
		c.Locals(tokenLocalsKey, token)
		return c.Next()
	}
}

// TokenFromCtx returns the verified admin token set by RequireAdmin.
func TokenFromCtx(c *fiber.Ctx) string {
	token, _ := c.Locals(tokenLocalsKey).(string)
	return token
}
