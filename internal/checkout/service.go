package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dabeez/storefront-gateway/internal/cart"
	"github.com/dabeez/storefront-gateway/internal/orderapi"
)

// Carts is the slice of the cart store checkout needs.
type Carts interface {
	Items(sessionID string) []cart.Line
	Clear(sessionID string)
}

// OrderCreator is the slice of the order API client checkout needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req orderapi.CreateOrderRequest) (orderapi.Order, error)
}

type sessionState struct {
	form  Form
	state State
}

// Service turns a session's cart and delivery form into exactly one order,
// or fails leaving both untouched for a retry.
type Service struct {
	carts  Carts
	orders OrderCreator
	delay  time.Duration
	log    *zap.Logger

	now       func() time.Time
	newSuffix func() string

	mu       sync.Mutex
	sessions map[string]*sessionState
}

func NewService(carts Carts, orders OrderCreator, settlementDelay time.Duration, log *zap.Logger) *Service {
	return &Service{
		carts:     carts,
		orders:    orders,
		delay:     settlementDelay,
		log:       log,
		now:       time.Now,
		newSuffix: randomSuffix,
		sessions:  make(map[string]*sessionState),
	}
}

func (s *Service) sessionLocked(sessionID string) *sessionState {
	st, ok := s.sessions[sessionID]
	if !ok {
		st = &sessionState{state: StateIdle}
		s.sessions[sessionID] = st
	}
	return st
}

// State reports the session's current payment attempt state.
func (s *Service) State(sessionID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionLocked(sessionID).state
}

// FormDraft returns the session's saved delivery details.
func (s *Service) FormDraft(sessionID string) Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionLocked(sessionID).form
}

// SaveForm stores the delivery draft. Rejected while an attempt is
// processing, mirroring the disabled inputs of the storefront.
func (s *Service) SaveForm(sessionID string, form Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.sessionLocked(sessionID)
	if st.state == StateProcessing {
		return ErrAttemptInFlight
	}
	st.form = form
	return nil
}

// Submit runs one checkout attempt.
//
// Validation happens before anything touches the network. The cart is
// snapshotted at submit time; prices are not re-read afterwards. On success
// the cart clear and form reset happen under one lock so no reader ever
// observes one without the other. On any failure the cart and draft are
// left exactly as they were.
//
// The ctx is honored during the settlement wait, so callers that want to
// abandon a deferred-payment attempt can cancel it.
func (s *Service) Submit(ctx context.Context, sessionID string, form Form, method string) (orderapi.Order, error) {
	if err := form.Validate(); err != nil {
		return orderapi.Order{}, err
	}
	if method != orderapi.PaymentCash && method != orderapi.PaymentEasyPasa {
		return orderapi.Order{}, &ValidationError{Message: "unknown payment method: " + method}
	}

	s.mu.Lock()
	st := s.sessionLocked(sessionID)
	if st.state == StateProcessing {
		s.mu.Unlock()
		return orderapi.Order{}, ErrAttemptInFlight
	}
	lines := s.carts.Items(sessionID)
	if len(lines) == 0 {
		s.mu.Unlock()
		return orderapi.Order{}, &ValidationError{Message: "cart is empty"}
	}
	st.state = StateProcessing
	st.form = form
	s.mu.Unlock()

	req := buildRequest(form, lines, method)

	if method == orderapi.PaymentEasyPasa {
		if err := s.settle(ctx); err != nil {
			s.fail(sessionID)
			return orderapi.Order{}, fmt.Errorf("settlement interrupted: %w", err)
		}
		req.TransactionID = s.transactionID()
	}

	order, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		s.fail(sessionID)
		return orderapi.Order{}, err
	}

	s.mu.Lock()
	s.carts.Clear(sessionID)
	st.form = Form{}
	st.state = StateIdle
	s.mu.Unlock()

	s.log.Info("order placed",
		zap.String("orderId", order.OrderID),
		zap.String("paymentMethod", method),
		zap.Float64("totalAmount", req.TotalAmount),
	)
	return order, nil
}

func (s *Service) fail(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionLocked(sessionID).state = StateFailed
}

// settle waits out the simulated digital-payment confirmation.
func (s *Service) settle(ctx context.Context) error {
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// transactionID is unique per attempt: current time plus a random suffix.
func (s *Service) transactionID() string {
	return fmt.Sprintf("TXN_%d_%s", s.now().UnixMilli(), s.newSuffix())
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// buildRequest snapshots the cart lines into an order payload. The total is
// computed from the same snapshot so it always equals the literal sum.
func buildRequest(form Form, lines []cart.Line, method string) orderapi.CreateOrderRequest {
	items := make([]orderapi.Item, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		items = append(items, orderapi.Item{
			Name:      l.Name,
			Price:     l.Price.InexactFloat64(),
			Quantity:  l.Quantity,
			ProductID: l.ProductID,
		})
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return orderapi.CreateOrderRequest{
		Customer: orderapi.Customer{
			Name:    form.Name,
			Phone:   form.Phone,
			Address: form.Address,
			Email:   form.Email,
		},
		Items:         items,
		TotalAmount:   total.InexactFloat64(),
		PaymentMethod: method,
	}
}
