package orderapi

import "time"

// Order status values the remote order API models. Transitions are one-way:
// pending -> completed.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Payment methods accepted by the remote order API.
const (
	PaymentCash     = "cash"
	PaymentEasyPasa = "easypasa"
)

// Customer is the delivery snapshot stored with an order.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Email   string `json:"email,omitempty"`
}

// Item is a line-item snapshot captured at order creation. It is not a live
// reference to the catalog; the price here never changes afterwards.
type Item struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ProductID string  `json:"productId,omitempty"`
}

// Order mirrors the remote order API's order document. The gateway treats
// it as read-only view state; the API owns it.
type Order struct {
	ID            string    `json:"_id"`
	OrderID       string    `json:"orderId"`
	Customer      Customer  `json:"customer"`
	Items         []Item    `json:"items"`
	TotalAmount   float64   `json:"totalAmount"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Stats are authoritative aggregates returned by the order API. They are
// never recomputed locally from the polled list, which may be paginated.
type Stats struct {
	TotalOrders     int     `json:"totalOrders"`
	PendingOrders   int     `json:"pendingOrders"`
	CompletedOrders int     `json:"completedOrders"`
	TodaysOrders    int     `json:"todaysOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
}

// CreateOrderRequest is the create-order payload. TotalAmount must equal
// the sum over Items of price times quantity; the caller computes it from
// the same snapshot.
type CreateOrderRequest struct {
	Customer      Customer `json:"customer"`
	Items         []Item   `json:"items"`
	TotalAmount   float64  `json:"totalAmount"`
	PaymentMethod string   `json:"paymentMethod"`
	TransactionID string   `json:"transactionId,omitempty"`
}

// SubmissionError reports a failed create-order call with whatever message
// the service gave. Network failure, non-success status and service-side
// validation all collapse into this one outcome.
type SubmissionError struct {
	Message string
}

func (e *SubmissionError) Error() string {
	return "order submission failed: " + e.Message
}
