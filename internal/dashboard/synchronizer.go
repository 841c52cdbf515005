package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dabeez/storefront-gateway/internal/orderapi"
)

// OrderAPI is the slice of the order client the synchronizer needs.
type OrderAPI interface {
	ListOrders(ctx context.Context, token string) ([]orderapi.Order, error)
	GetStats(ctx context.Context, token string) (orderapi.Stats, error)
	UpdateOrderStatus(ctx context.Context, token, orderID, status string) (orderapi.Order, error)
}

// Notification points at one freshly created pending order. It disappears
// from the view once ExpiresAt passes, with or without another poll.
type Notification struct {
	Order     orderapi.Order `json:"order"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// View is the reconciled dashboard state: the most recent polled order
// list, its pending/completed partition, the authoritative stats and an
// optional notification. Rebuilt on every poll, retained verbatim when a
// poll fails.
type View struct {
	Orders       []orderapi.Order `json:"orders"`
	Pending      []orderapi.Order `json:"pending"`
	Completed    []orderapi.Order `json:"completed"`
	Stats        orderapi.Stats   `json:"stats"`
	Notification *Notification    `json:"notification,omitempty"`
	LastPolledAt time.Time        `json:"lastPolledAt"`
}

// Config carries the synchronizer's timing windows.
type Config struct {
	PollInterval    time.Duration
	FreshnessWindow time.Duration
	NotificationTTL time.Duration
}

// Synchronizer owns the dashboard view. Two sources write into it: the
// periodic poll and admin-triggered optimistic status updates. Both
// orderings of the two converge on the same state because the poll is
// authoritative and the optimistic update matches what the API accepted.
type Synchronizer struct {
	api OrderAPI
	cfg Config
	log *zap.Logger
	now func() time.Time

	mu        sync.RWMutex
	token     string
	view      View
	lastFetch time.Time
	notif     *Notification
}

func NewSynchronizer(api OrderAPI, cfg Config, log *zap.Logger) *Synchronizer {
	return &Synchronizer{api: api, cfg: cfg, log: log, now: time.Now}
}

// SetToken installs the credential used for background polls.
func (s *Synchronizer) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Synchronizer) currentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Run fetches immediately, then keeps both fetches on the poll interval
// until ctx is cancelled. Order list and stats are fetched independently;
// they may be momentarily inconsistent with each other and that is fine.
func (s *Synchronizer) Run(ctx context.Context) {
	s.Refresh(ctx)
	t := time.NewTicker(s.cfg.PollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh performs one poll cycle. Also called for the manual refresh
// button on the dashboard.
func (s *Synchronizer) Refresh(ctx context.Context) {
	s.fetchOrders(ctx)
	s.fetchStats(ctx)
}

func (s *Synchronizer) fetchOrders(ctx context.Context) {
	orders, err := s.api.ListOrders(ctx, s.currentToken())
	if err != nil {
		// stale-but-available beats flash-to-empty
		s.log.Warn("order poll failed, keeping previous view", zap.Error(err))
		return
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	prevFetch := s.lastFetch
	s.lastFetch = now
	s.view.Orders = orders
	s.view.LastPolledAt = now
	s.partitionLocked()
	s.maybeNotifyLocked(orders, prevFetch, now)
}

func (s *Synchronizer) fetchStats(ctx context.Context) {
	stats, err := s.api.GetStats(ctx, s.currentToken())
	if err != nil {
		s.log.Warn("stats poll failed, keeping previous stats", zap.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Stats = stats
}

func (s *Synchronizer) partitionLocked() {
	pending := make([]orderapi.Order, 0, len(s.view.Orders))
	completed := make([]orderapi.Order, 0, len(s.view.Orders))
	for _, o := range s.view.Orders {
		if o.Status == orderapi.StatusCompleted {
			completed = append(completed, o)
		} else {
			pending = append(pending, o)
		}
	}
	s.view.Pending = pending
	s.view.Completed = completed
}

// maybeNotifyLocked raises a notification for the newest order that is
// still pending, was created after the previous successful fetch, and is
// inside the freshness window. Comparing against the previous fetch rather
// than only trusting list position keeps one order from re-notifying on
// every poll and skips orders another admin already completed.
func (s *Synchronizer) maybeNotifyLocked(orders []orderapi.Order, prevFetch, now time.Time) {
	for _, o := range orders {
		if o.Status != orderapi.StatusPending {
			continue
		}
		if !o.CreatedAt.After(prevFetch) {
			break // newest-first: everything after this is older still
		}
		if now.Sub(o.CreatedAt) >= s.cfg.FreshnessWindow {
			continue
		}
		s.notif = &Notification{Order: o, ExpiresAt: now.Add(s.cfg.NotificationTTL)}
		return
	}
}

// MarkCompleted transitions an order pending -> completed via the order
// API and applies the change to the local view immediately rather than
// waiting for the next poll. A rejected update changes nothing locally.
func (s *Synchronizer) MarkCompleted(ctx context.Context, orderID string) error {
	if _, err := s.api.UpdateOrderStatus(ctx, s.currentToken(), orderID, orderapi.StatusCompleted); err != nil {
		return fmt.Errorf("status update rejected: %w", err)
	}
	now := s.now()

	s.mu.Lock()
	for i := range s.view.Orders {
		if s.view.Orders[i].ID == orderID {
			s.view.Orders[i].Status = orderapi.StatusCompleted
			s.view.Orders[i].UpdatedAt = now
		}
	}
	if s.notif != nil && s.notif.Order.ID == orderID {
		s.notif = nil
	}
	s.partitionLocked()
	s.mu.Unlock()

	// the stats are authoritative, so refetch instead of adjusting counts
	s.fetchStats(ctx)
	return nil
}

// CurrentView returns a copy of the view. An expired notification is
// already absent from it.
func (s *Synchronizer) CurrentView() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.view
	v.Notification = nil
	if s.notif != nil && s.now().Before(s.notif.ExpiresAt) {
		n := *s.notif
		v.Notification = &n
	}
	return v
}
