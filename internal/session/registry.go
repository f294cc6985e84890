package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/feedshop/internal/cart"
	"github.com/jafarshop/feedshop/internal/confirm"
	"github.com/jafarshop/feedshop/pkg/errors"
)

// Session owns the per-browser state: one cart store and one confirm bridge
type Session struct {
	ID        uuid.UUID
	Cart      *cart.Store
	Confirm   *confirm.Bridge
	CreatedAt time.Time

	tokenHash []byte
	lastSeen  time.Time
}

// Registry creates, authenticates and expires sessions
type Registry struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*Session
	ttl       time.Duration
	tokenCost int
	now       func() time.Time
	logger    *zap.Logger
}

// NewRegistry creates an empty registry. tokenCost is the bcrypt cost used to
// hash session tokens.
func NewRegistry(ttl time.Duration, tokenCost int, logger *zap.Logger) *Registry {
	if tokenCost < bcrypt.MinCost {
		tokenCost = bcrypt.DefaultCost
	}
	return &Registry{
		sessions:  make(map[uuid.UUID]*Session),
		ttl:       ttl,
		tokenCost: tokenCost,
		now:       time.Now,
		logger:    logger,
	}
}

// Create starts a session and returns it with its plaintext token. Only the
// bcrypt hash of the token is kept.
func (r *Registry) Create() (*Session, string, error) {
	token := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(token), r.tokenCost)
	if err != nil {
		return nil, "", err
	}

	now := r.now()
	s := &Session{
		ID:        uuid.New(),
		Cart:      cart.NewStore(r.logger),
		Confirm:   confirm.NewBridge(r.logger),
		CreatedAt: now,
		tokenHash: hash,
		lastSeen:  now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Info("Session created", zap.String("session_id", s.ID.String()))
	return s, token, nil
}

// Authenticate returns the session when token matches and it has not expired
func (r *Registry) Authenticate(id uuid.UUID, token string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NewUnauthorized("unknown session")
	}

	if err := bcrypt.CompareHashAndPassword(s.tokenHash, []byte(token)); err != nil {
		return nil, errors.NewUnauthorized("invalid session token")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.expired(s, now) {
		delete(r.sessions, id)
		return nil, errors.NewUnauthorized("session expired")
	}
	s.lastSeen = now
	return s, nil
}

// Delete ends a session
func (r *Registry) Delete(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()

	r.logger.Info("Session deleted", zap.String("session_id", id.String()))
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if r.expired(s, now) {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Info("Expired sessions swept", zap.Int("removed", removed))
	}
	return removed
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) expired(s *Session, now time.Time) bool {
	return r.ttl > 0 && now.Sub(s.lastSeen) > r.ttl
}
