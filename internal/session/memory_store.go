package session

import (
	"context"
	"sync"
	"time"

	"github.com/miniuni/miniuni-web/internal/model"
)

type timedFlash struct {
	flash   Flash
	expires time.Time
}

// MemoryStore is a process-local Backend for development and tests.
// Sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]model.Session
	flashes  map[string]timedFlash
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]model.Session),
		flashes:  make(map[string]timedFlash),
		now:      time.Now,
	}
}

// SetClock replaces the time source used for banner expiry.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *MemoryStore) Get(_ context.Context, tabID string) (*model.Session, error) {
	if tabID == "" {
		return nil, ErrNoTab
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[tabID]
	if !ok || sess.Token == "" {
		return nil, nil
	}
	return &sess, nil
}

func (s *MemoryStore) Set(_ context.Context, tabID string, sess *model.Session) error {
	if tabID == "" {
		return ErrNoTab
	}
	s.mu.Lock()
	s.sessions[tabID] = *sess
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, tabID string) error {
	if tabID == "" {
		return ErrNoTab
	}
	s.mu.Lock()
	delete(s.sessions, tabID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) PutFlash(_ context.Context, tabID string, f Flash, ttl time.Duration) error {
	if tabID == "" {
		return ErrNoTab
	}
	s.mu.Lock()
	s.flashes[tabID] = timedFlash{flash: f, expires: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Flash(_ context.Context, tabID string) (*Flash, error) {
	if tabID == "" {
		return nil, ErrNoTab
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tf, ok := s.flashes[tabID]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(tf.expires) {
		delete(s.flashes, tabID)
		return nil, nil
	}
	f := tf.flash
	return &f, nil
}
