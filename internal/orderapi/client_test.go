package orderapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(srv.URL, 2*time.Second, zap.NewNop())
}

func TestCreateOrder_Success(t *testing.T) {
	var gotBody CreateOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/orders" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"order": map[string]any{
				"_id":         "abc123",
				"orderId":     "ORD-1001",
				"status":      StatusPending,
				"totalAmount": 20.28,
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv)
	order, err := c.CreateOrder(context.Background(), CreateOrderRequest{
		Customer:      Customer{Name: "Ada", Phone: "0123", Address: "1 Lane"},
		Items:         []Item{{Name: "Honey", Price: 9.99, Quantity: 2}},
		TotalAmount:   20.28,
		PaymentMethod: PaymentCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.OrderID != "ORD-1001" || order.ID != "abc123" {
		t.Fatalf("unexpected order: %+v", order)
	}
	if gotBody.TotalAmount != 20.28 || gotBody.PaymentMethod != PaymentCash {
		t.Fatalf("payload not forwarded, got %+v", gotBody)
	}
}

func TestCreateOrder_ServiceDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "out of stock"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CreateOrder(context.Background(), CreateOrderRequest{})
	var se *SubmissionError
	if !errors.As(err, &se) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	if se.Message != "out of stock" {
		t.Fatalf("expected service message, got %q", se.Message)
	}
}

func TestCreateOrder_HTTPErrorCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "items are required"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CreateOrder(context.Background(), CreateOrderRequest{})
	var se *SubmissionError
	if !errors.As(err, &se) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	if !strings.Contains(se.Message, "items are required") {
		t.Fatalf("expected upstream message, got %q", se.Message)
	}
}

func TestCreateOrder_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv).CreateOrder(context.Background(), CreateOrderRequest{})
	var se *SubmissionError
	if !errors.As(err, &se) {
		t.Fatalf("expected SubmissionError on network failure, got %v", err)
	}
}

func TestListOrders_SendsBearerAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("expected bearer credential, got %q", got)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"_id": "b", "orderId": "ORD-2", "status": StatusPending, "createdAt": time.Now().UTC().Format(time.RFC3339)},
			{"_id": "a", "orderId": "ORD-1", "status": StatusCompleted, "createdAt": time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)},
		})
	}))
	defer srv.Close()

	orders, err := newTestClient(srv).ListOrders(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 2 || orders[0].OrderID != "ORD-2" {
		t.Fatalf("expected newest-first list preserved, got %+v", orders)
	}
}

func TestGetStats_Decodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders/stats" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(Stats{TotalOrders: 10, PendingOrders: 4, CompletedOrders: 6, TodaysOrders: 3, TotalRevenue: 123.45})
	}))
	defer srv.Close()

	stats, err := newTestClient(srv).GetStats(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalOrders != 10 || stats.TotalRevenue != 123.45 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestUpdateOrderStatus_AcceptsBareAndWrappedBodies(t *testing.T) {
	for _, wrapped := range []bool{false, true} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPatch || r.URL.Path != "/api/orders/abc/status" {
				t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["status"] != StatusCompleted {
				t.Fatalf("expected completed status, got %+v", body)
			}
			order := map[string]any{"_id": "abc", "status": StatusCompleted}
			if wrapped {
				_ = json.NewEncoder(w).Encode(map[string]any{"order": order})
			} else {
				_ = json.NewEncoder(w).Encode(order)
			}
		}))

		order, err := newTestClient(srv).UpdateOrderStatus(context.Background(), "tok-1", "abc", StatusCompleted)
		if err != nil {
			t.Fatalf("unexpected error (wrapped=%v): %v", wrapped, err)
		}
		if order.ID != "abc" || order.Status != StatusCompleted {
			t.Fatalf("unexpected order (wrapped=%v): %+v", wrapped, order)
		}
		srv.Close()
	}
}

func TestUpdateOrderStatus_ErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "order not found"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv).UpdateOrderStatus(context.Background(), "tok-1", "missing", StatusCompleted)
	if err == nil || !strings.Contains(err.Error(), "order not found") {
		t.Fatalf("expected upstream message, got %v", err)
	}
}
