package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrNoToken = errors.New("no credential stored for session")

// TokenStore keeps each session's opaque bearer token in memory. Tokens are
// never parsed here; the remote verify endpoint is the only authority on
// what they mean.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]string)}
}

func (s *TokenStore) Login(sessionID, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[sessionID] = token
}

func (s *TokenStore) Token(sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[sessionID]
	if !ok || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (s *TokenStore) Logout(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, sessionID)
}

// AdminChecker answers whether a credential belongs to an admin.
type AdminChecker interface {
	IsAdmin(ctx context.Context, token string) bool
}

// Verifier performs the admin check against the remote auth endpoint.
type Verifier struct {
	base string
	http *http.Client
	log  *zap.Logger
}

func NewVerifier(base string, timeout time.Duration, log *zap.Logger) *Verifier {
	return &Verifier{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// IsAdmin defers entirely to the remote verify endpoint; any transport
// failure reads as "not an admin".
func (v *Verifier) IsAdmin(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.base+"/auth/verify", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := v.http.Do(req)
	if err != nil {
		v.log.Warn("admin verify failed", zap.Error(err))
		return false
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	return res.StatusCode == http.StatusOK
}
