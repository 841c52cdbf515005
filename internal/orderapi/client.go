package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Client talks to the remote order API. Calls go through a circuit breaker
// so a dead upstream fails fast; 4xx responses do not count as breaker
// failures because they mean the upstream is alive and answering.
type Client struct {
	base    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	log     *zap.Logger
}

func NewClient(base string, timeout time.Duration, log *zap.Logger) *Client {
	settings := gobreaker.Settings{
		Name: "order-api",
		IsSuccessful: func(err error) bool {
			var ae *apiError
			if errors.As(err, &ae) {
				return ae.status < http.StatusInternalServerError
			}
			return err == nil
		},
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		log:     log,
	}
}

// apiError is a non-2xx answer from the order API.
type apiError struct {
	status int
	body   []byte
}

func (e *apiError) Error() string {
	if msg := serviceMessage(e.body); msg != "" {
		return msg
	}
	return fmt.Sprintf("order api returned status %d", e.status)
}

// serviceMessage pulls the human-readable message out of an error body.
func serviceMessage(b []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

func (c *Client) do(ctx context.Context, method, path, token string, payload any) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		var rd io.Reader
		if payload != nil {
			b, err := json.Marshal(payload)
			if err != nil {
				return nil, err
			}
			rd = bytes.NewReader(b)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		res, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()
		b, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, err
		}
		if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
			return nil, &apiError{status: res.StatusCode, body: b}
		}
		return b, nil
	})
}

// CreateOrder persists a previously validated, non-empty order. The
// returned order carries the server-assigned human-readable order id.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error) {
	b, err := c.do(ctx, http.MethodPost, "/api/orders", "", req)
	if err != nil {
		c.log.Warn("create order failed", zap.Error(err))
		return Order{}, &SubmissionError{Message: failureReason(err)}
	}

	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Order   Order  `json:"order"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return Order{}, &SubmissionError{Message: "invalid response from order service"}
	}
	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = "order was not accepted"
		}
		return Order{}, &SubmissionError{Message: msg}
	}
	return out.Order, nil
}

// ListOrders returns all orders, newest first, as the API guarantees.
func (c *Client) ListOrders(ctx context.Context, token string) ([]Order, error) {
	b, err := c.do(ctx, http.MethodGet, "/api/orders", token, nil)
	if err != nil {
		return nil, err
	}
	var orders []Order
	if err := json.Unmarshal(b, &orders); err != nil {
		return nil, fmt.Errorf("decode order list: %w", err)
	}
	return orders, nil
}

// GetStats returns the authoritative order aggregates.
func (c *Client) GetStats(ctx context.Context, token string) (Stats, error) {
	b, err := c.do(ctx, http.MethodGet, "/api/orders/stats", token, nil)
	if err != nil {
		return Stats{}, err
	}
	var stats Stats
	if err := json.Unmarshal(b, &stats); err != nil {
		return Stats{}, fmt.Errorf("decode stats: %w", err)
	}
	return stats, nil
}

// UpdateOrderStatus moves an order to a new status. The API answers either
// the bare updated order or a {order: ...} wrapper; both are accepted.
func (c *Client) UpdateOrderStatus(ctx context.Context, token, orderID, status string) (Order, error) {
	payload := map[string]string{"status": status}
	b, err := c.do(ctx, http.MethodPatch, "/api/orders/"+orderID+"/status", token, payload)
	if err != nil {
		return Order{}, err
	}

	var direct Order
	if err := json.Unmarshal(b, &direct); err == nil && direct.ID != "" {
		return direct, nil
	}
	var wrapped struct {
		Order Order `json:"order"`
	}
	if err := json.Unmarshal(b, &wrapped); err == nil && wrapped.Order.ID != "" {
		return wrapped.Order, nil
	}
	// 2xx with an unrecognized body still means the update took
	return Order{}, nil
}

func failureReason(err error) string {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.Error()
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "order service unavailable"
	}
	return err.Error()
}
