package services

import (
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

var (
	// ErrSessionNotFound indicates the session id is unknown or expired.
	ErrSessionNotFound = errors.New("session store: session not found")
	// ErrSessionLimit indicates the store is at capacity.
	ErrSessionLimit = errors.New("session store: session limit reached")
	// ErrSessionFactoryMissing indicates the controller factory is absent.
	ErrSessionFactoryMissing = errors.New("session store: controller factory is required")
)

// BrowseSession pairs a session id with its controller.
type BrowseSession struct {
	ID         string
	Controller BrowseController
	CreatedAt  time.Time
}

// SessionStoreDeps bundles constructor inputs for the session store.
type SessionStoreDeps struct {
	// Factory builds a fresh controller per session.
	Factory func() (BrowseController, error)
	// TTL is the idle lifetime. Zero disables expiry.
	TTL time.Duration
	// Limit caps live sessions. Zero disables the cap.
	Limit  int
	Logger *zap.Logger
	Clock  func() time.Time
}

type sessionEntry struct {
	session  BrowseSession
	lastSeen time.Time
}

// SessionStore tracks live browse sessions with idle expiry.
type SessionStore struct {
	factory func() (BrowseController, error)
	ttl     time.Duration
	limit   int
	logger  *zap.Logger
	clock   func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

// NewSessionStore builds the store.
func NewSessionStore(deps SessionStoreDeps) (*SessionStore, error) {
	if deps.Factory == nil {
		return nil, ErrSessionFactoryMissing
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &SessionStore{
		factory: deps.Factory,
		ttl:     deps.TTL,
		limit:   deps.Limit,
		logger:  logger,
		clock:   clock,
		entries: make(map[string]*sessionEntry),
	}, nil
}

// Create opens a new session. Expired sessions are swept first so an idle
// store never refuses work.
func (s *SessionStore) Create() (BrowseSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	if s.limit > 0 && len(s.entries) >= s.limit {
		return BrowseSession{}, ErrSessionLimit
	}

	controller, err := s.factory()
	if err != nil {
		return BrowseSession{}, err
	}

	now := s.clock()
	session := BrowseSession{
		ID:         ulid.Make().String(),
		Controller: controller,
		CreatedAt:  now,
	}
	s.entries[session.ID] = &sessionEntry{session: session, lastSeen: now}
	s.logger.Debug("session store: created", zap.String("session_id", session.ID))
	return session, nil
}

// Get returns the session and refreshes its idle clock.
func (s *SessionStore) Get(id string) (BrowseSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	entry, ok := s.entries[id]
	if !ok {
		return BrowseSession{}, ErrSessionNotFound
	}
	entry.lastSeen = s.clock()
	return entry.session, nil
}

// Delete closes and removes the session.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	entry.session.Controller.Close()
	return nil
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.entries)
}

// Close shuts down every live session.
func (s *SessionStore) Close() {
	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[string]*sessionEntry)
	s.mu.Unlock()

	for _, entry := range entries {
		entry.session.Controller.Close()
	}
}

// sweepLocked drops sessions idle past the TTL. The caller holds s.mu.
func (s *SessionStore) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.clock().Add(-s.ttl)
	for id, entry := range s.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			entry.session.Controller.Close()
			s.logger.Debug("session store: expired", zap.String("session_id", id))
		}
	}
}
