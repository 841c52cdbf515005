package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Line is one product-quantity pairing in a session's cart.
type Line struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

// Store holds every session's cart lines in memory. Lines are keyed by
// product id and kept in insertion order. A stored line never has a
// quantity below one; decrementing past one removes the line.
//
// Nothing here is durable. The cart lives only as long as the process and
// the session, which is all the storefront promises.
type Store struct {
	mu    sync.RWMutex
	carts map[string][]Line
}

func NewStore() *Store {
	return &Store{carts: make(map[string][]Line)}
}

// Add merges the line into the session's cart: an existing product id has
// its quantity incremented, anything else is appended. A missing quantity
// counts as one.
func (s *Store) Add(sessionID string, line Line) {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[sessionID]
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i].Quantity += line.Quantity
			return
		}
	}
	s.carts[sessionID] = append(lines, line)
}

// UpdateQuantity applies delta to the matching line. A resulting quantity
// of zero or below removes the line. Unknown product ids are a no-op.
func (s *Store) UpdateQuantity(sessionID, productID string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[sessionID]
	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}
		if lines[i].Quantity+delta <= 0 {
			s.carts[sessionID] = append(lines[:i], lines[i+1:]...)
			return
		}
		lines[i].Quantity += delta
		return
	}
}

// Remove deletes the line unconditionally; absent ids are a no-op.
func (s *Store) Remove(sessionID, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[sessionID]
	for i := range lines {
		if lines[i].ProductID == productID {
			s.carts[sessionID] = append(lines[:i], lines[i+1:]...)
			return
		}
	}
}

// Clear empties the session's cart. Used after a confirmed order.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}

// Items returns a copy of the session's lines in insertion order.
func (s *Store) Items(sessionID string) []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := s.carts[sessionID]
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

// Total is recomputed from the lines on every call so it can never drift
// from the literal sum.
func (s *Store) Total(sessionID string) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, l := range s.carts[sessionID] {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
