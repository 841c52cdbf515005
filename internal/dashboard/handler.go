package dashboard

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dabeez/storefront-gateway/internal/orderapi"
)

// Handler serves the admin dashboard view. All routes sit behind the admin
// gate handed in at registration.
type Handler struct {
	sync *Synchronizer
}

func NewHandler(s *Synchronizer) *Handler {
	return &Handler{sync: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App, gate fiber.Handler) {
	app.Get("/api/v1/admin/dashboard", gate, h.getDashboard)
	app.Post("/api/v1/admin/dashboard/refresh", gate, h.refresh)
	app.Patch("/api/v1/admin/orders/:id/status", gate, h.updateStatus)
}

func (h *Handler) getDashboard(c *fiber.Ctx) error {
	return c.JSON(h.sync.CurrentView())
}

// refresh backs the dashboard's manual refresh button.
func (h *Handler) refresh(c *fiber.Ctx) error {
	h.sync.Refresh(c.Context())
	return c.JSON(h.sync.CurrentView())
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	payload := new(updateStatusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	// pending -> completed is the only transition the order model has
	if payload.Status != orderapi.StatusCompleted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "only completion is supported"})
	}

	if err := h.sync.MarkCompleted(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(h.sync.CurrentView())
}
