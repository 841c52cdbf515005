package dashboard

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Controller starts the synchronizer when the first verified admin session
// shows up and cancels it when the last one goes away, so polling never
// outlives the admin view it feeds.
type Controller struct {
	log *zap.Logger

	mu       sync.Mutex
	sync     *Synchronizer
	sessions map[string]string
	cancel   context.CancelFunc
}

func NewController(s *Synchronizer, log *zap.Logger) *Controller {
	return &Controller{sync: s, log: log, sessions: make(map[string]string)}
}

func (c *Controller) SessionVerified(sessionID, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[sessionID] = token
	c.sync.SetToken(token)
	if c.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		go c.sync.Run(ctx)
		c.log.Info("dashboard polling started", zap.String("session", sessionID))
	}
}

func (c *Controller) SessionRevoked(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, sessionID)
	if len(c.sessions) == 0 {
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
			c.log.Info("dashboard polling stopped")
		}
		return
	}
	// keep polling with any remaining admin's credential
	for _, token := range c.sessions {
		c.sync.SetToken(token)
		break
	}
}

// Running reports whether the poll loop is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}
