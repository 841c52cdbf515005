package catalog

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/dabeez/storefront-gateway/internal/auth"
)

// Handler proxies the remote product catalog so storefront pages talk to a
// single origin. Reads are public; mutations require a verified admin and
// forward that admin's credential upstream. No product state is kept here.
type Handler struct {
	base string
	http *http.Client
	log  *zap.Logger
}

func NewHandler(base string, timeout time.Duration, log *zap.Logger) *Handler {
	return &Handler{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.listProducts)
	app.Get("/api/v1/products/:id", h.getProduct)
}

func (h *Handler) RegisterAdminRoutes(app *fiber.App, gate fiber.Handler) {
	app.Post("/api/v1/products", gate, h.createProduct)
	app.Delete("/api/v1/products/:id", gate, h.deleteProduct)
}

func (h *Handler) listProducts(c *fiber.Ctx) error {
	return h.proxy(c, http.MethodGet, "/api/products", "")
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	return h.proxy(c, http.MethodGet, "/api/products/"+c.Params("id"), "")
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	return h.proxy(c, http.MethodPost, "/api/products", auth.TokenFromCtx(c))
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	return h.proxy(c, http.MethodDelete, "/api/products/"+c.Params("id"), auth.TokenFromCtx(c))
}

func (h *Handler) proxy(c *fiber.Ctx, method, path, token string) error {
	var body io.Reader
	if len(c.Body()) > 0 {
		body = bytes.NewReader(c.Body())
	}
	req, err := http.NewRequestWithContext(c.Context(), method, h.base+path, body)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if ct := c.Get(fiber.HeaderContentType); ct != "" {
		req.Header.Set(fiber.HeaderContentType, ct)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	res, err := h.http.Do(req)
	if err != nil {
		h.log.Warn("catalog proxy failed", zap.String("path", path), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "catalog unavailable"})
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "catalog unavailable"})
	}

	if ct := res.Header.Get(fiber.HeaderContentType); ct != "" {
		c.Set(fiber.HeaderContentType, ct)
	}
	return c.Status(res.StatusCode).Send(b)
}
