package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dabeez/storefront-gateway/internal/session"
)

// Handler owns login, logout and the admin-status check.
type Handler struct {
	store     *TokenStore
	checker   AdminChecker
	lifecycle Lifecycle
}

func NewHandler(store *TokenStore, checker AdminChecker, lifecycle Lifecycle) *Handler {
	return &Handler{store: store, checker: checker, lifecycle: lifecycle}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Post("/api/v1/auth/login", h.login)
	app.Post("/api/v1/auth/logout", h.logout)
	app.Get("/api/v1/auth/me", h.me)
}

type loginRequest struct {
	Token string `json:"token"`
}

// login stores the issued bearer token against the session and reports
// whether it verifies as an admin. The token is opaque to the gateway.
func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "token is required"})
	}
	sid, err := session.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	h.store.Login(sid, payload.Token)
	isAdmin := h.checker.IsAdmin(c.Context(), payload.Token)
	if isAdmin {
		h.lifecycle.SessionVerified(sid, payload.Token)
	}
	return c.JSON(fiber.Map{"isAdmin": isAdmin})
}

func (h *Handler) logout(c *fiber.Ctx) error {
	sid, err := session.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	h.store.Logout(sid)
	h.lifecycle.SessionRevoked(sid)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) me(c *fiber.Ctx) error {
	sid, err := session.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	token, err := h.store.Token(sid)
	if err != nil {
		return c.JSON(fiber.Map{"isAdmin": false})
	}
	return c.JSON(fiber.Map{"isAdmin": h.checker.IsAdmin(c.Context(), token)})
}
