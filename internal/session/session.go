package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CookieName is the browser cookie carrying the session id.
const CookieName = "sid"

const localsKey = "sessionID"

var ErrNoSession = errors.New("no session on request")

// Middleware assigns a session id cookie on first contact and exposes the
// id to handlers via locals. Every session-scoped store keys off it.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(CookieName)
		if sid == "" {
			sid = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     CookieName,
				Value:    sid,
				HTTPOnly: true,
				SameSite: "Lax",
			})
		}
		c.Locals(localsKey, sid)
		return c.Next()
	}
}

// FromCtx returns the session id set by Middleware.
func FromCtx(c *fiber.Ctx) (string, error) {
	sid, ok := c.Locals(localsKey).(string)
	if !ok || sid == "" {
		return "", ErrNoSession
	}
	return sid, nil
}
