package dashboard

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dabeez/storefront-gateway/internal/orderapi"
)

// passGate stands in for the admin gate in handler tests.
func passGate(c *fiber.Ctx) error { return c.Next() }

func makeDashboardApp(s *Synchronizer) *fiber.App {
	app := fiber.New()
	NewHandler(s).RegisterProtectedRoutes(app, passGate)
	return app
}

func TestDashboardRoutes_ViewAndStatusUpdate(t *testing.T) {
	api := &fakeAPI{stats: orderapi.Stats{TotalOrders: 2, PendingOrders: 2}}
	s, clock := newTestSync(api)
	api.setOrders([]orderapi.Order{
		pendingOrder("o1", clock.Add(-time.Hour)),
		pendingOrder("o2", clock.Add(-2*time.Hour)),
	})
	app := makeDashboardApp(s)

	// manual refresh populates the view
	res, _ := app.Test(httptest.NewRequest("POST", "/api/v1/admin/dashboard/refresh", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for refresh, got %d", res.StatusCode)
	}

	res2, _ := app.Test(httptest.NewRequest("GET", "/api/v1/admin/dashboard", nil))
	b2, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(b2), `"totalOrders":2`) {
		t.Fatalf("expected stats in view, got %s", string(b2))
	}
	if !strings.Contains(string(b2), "ORD-o1") {
		t.Fatalf("expected polled orders in view, got %s", string(b2))
	}

	// only pending -> completed is allowed
	req3 := httptest.NewRequest("PATCH", "/api/v1/admin/orders/o1/status", strings.NewReader(`{"status":"pending"}`))
	req3.Header.Set("Content-Type", "application/json")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for reverse transition, got %d", res3.StatusCode)
	}

	req4 := httptest.NewRequest("PATCH", "/api/v1/admin/orders/o1/status", strings.NewReader(`{"status":"completed"}`))
	req4.Header.Set("Content-Type", "application/json")
	res4, _ := app.Test(req4)
	if res4.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for completion, got %d", res4.StatusCode)
	}
	b4, _ := io.ReadAll(res4.Body)
	if !strings.Contains(string(b4), `"completed"`) {
		t.Fatalf("expected completed order in response, got %s", string(b4))
	}
}

func TestDashboardRoutes_StatusUpdateFailureSurfaces(t *testing.T) {
	api := &fakeAPI{updateErr: errors.New("upstream unavailable")}
	s, clock := newTestSync(api)
	api.setOrders([]orderapi.Order{pendingOrder("o1", clock.Add(-time.Hour))})
	app := makeDashboardApp(s)
	s.Refresh(context.Background())

	req := httptest.NewRequest("PATCH", "/api/v1/admin/orders/o1/status", strings.NewReader(`{"status":"completed"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusBadGateway {
		t.Fatalf("expected 502 for rejected update, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "status update rejected") {
		t.Fatalf("expected visible error message, got %s", string(b))
	}
}
