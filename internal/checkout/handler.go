package checkout

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dabeez/storefront-gateway/internal/session"
)

// Handler exposes the checkout flow over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/v1/checkout/form", h.getForm)
	app.Put("/api/v1/checkout/form", h.saveForm)
	app.Post("/api/v1/checkout", h.submit)
}

func (h *Handler) getForm(c *fiber.Ctx) error {
	sid, err := session.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return c.JSON(h.service.FormDraft(sid))
}

func (h *Handler) saveForm(c *fiber.Ctx) error {
	payload := new(Form)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	sid, err := session.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if err := h.service.SaveForm(sid, *payload); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type submitRequest struct {
	Form
	PaymentMethod string `json:"paymentMethod"`
}

func (h *Handler) submit(c *fiber.Ctx) error {
	payload := new(submitRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	sid, err := session.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	form := payload.Form
	if (form == Form{}) {
		form = h.service.FormDraft(sid)
	}

	// the attempt runs to completion even if the client goes away, exactly
	// like the storefront's settlement timer; the service still accepts a
	// cancellable ctx for callers that want one
	order, err := h.service.Submit(context.Background(), sid, form, payload.PaymentMethod)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": ve.Message})
		case errors.Is(err, ErrAttemptInFlight):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		default:
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"order": order})
}
