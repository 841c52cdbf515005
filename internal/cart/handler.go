package cart

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/dabeez/storefront-gateway/internal/session"
)

// Handler exposes the session cart over HTTP.
// This keeps cart-specific routing isolated.
type Handler struct {
	store *Store
}

func NewHandler(s *Store) *Handler {
	return &Handler{store: s}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart", h.addLine)
	app.Patch("/api/v1/cart/:productID", h.updateQuantity)
	app.Delete("/api/v1/cart/:productID", h.removeLine)
	app.Delete("/api/v1/cart", h.clearCart)
}

type addLineRequest struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity,omitempty"`
	Image     string          `json:"image,omitempty"`
}

type cartView struct {
	Items []Line          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func (h *Handler) view(sessionID string) cartView {
	return cartView{
		Items: h.store.Items(sessionID),
		Total: h.store.Total(sessionID),
	}
}

func (h *Handler) addLine(c *fiber.Ctx) error {
	payload := new(addLineRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	if payload.Price.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "price must be non-negative"})
	}
	sid, err := session.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	h.store.Add(sid, Line{
		ProductID: payload.ProductID,
		Name:      payload.Name,
		Price:     payload.Price,
		Quantity:  payload.Quantity,
		Image:     payload.Image,
	})
	return c.Status(fiber.StatusOK).JSON(h.view(sid))
}

type updateQuantityRequest struct {
	Delta int `json:"delta"`
}

func (h *Handler) updateQuantity(c *fiber.Ctx) error {
	payload := new(updateQuantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Delta == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "delta must be non-zero"})
	}
	sid, err := session.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	h.store.UpdateQuantity(sid, c.Params("productID"), payload.Delta)
	return c.JSON(h.view(sid))
}

func (h *Handler) removeLine(c *fiber.Ctx) error {
	sid, err := session.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	h.store.Remove(sid, c.Params("productID"))
	return c.JSON(h.view(sid))
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	sid, err := session.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	h.store.Clear(sid)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	sid, err := session.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	return c.JSON(h.view(sid))
}
