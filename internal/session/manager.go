package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/miniuni/miniuni-web/internal/metrics"
	"github.com/miniuni/miniuni-web/internal/model"
	"github.com/rs/zerolog"
)

// ErrEmptyToken rejects sessions that would not count as authenticated.
var ErrEmptyToken = errors.New("session: empty token")

// Manager is the only writer of tab sessions. Login and Logout are the sole
// entry points that change what a tab sees; everything else reads.
type Manager struct {
	backend  Backend
	flashTTL time.Duration
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewManager creates a Manager. flashTTL is how long banners stay visible.
func NewManager(backend Backend, flashTTL time.Duration, m *metrics.Metrics, log zerolog.Logger) *Manager {
	return &Manager{
		backend:  backend,
		flashTTL: flashTTL,
		metrics:  m,
		log:      log.With().Str("component", "session_manager").Logger(),
	}
}

// Current returns the tab's session or nil.
func (m *Manager) Current(ctx context.Context, tabID string) (*model.Session, error) {
	return m.backend.Get(ctx, tabID)
}

// Login stores s for the tab verbatim.
func (m *Manager) Login(ctx context.Context, tabID string, s *model.Session) error {
	if !s.Authenticated() {
		return ErrEmptyToken
	}
	if err := m.backend.Set(ctx, tabID, s); err != nil {
		return err
	}
	m.log.Info().
		Str("tab", tabID).
		Str("role", string(s.Role)).
		Str("user_id", s.UserID).
		Bool("demo", IsDemo(s)).
		Msg("Session started")
	return nil
}

// Logout clears the tab's session regardless of role.
func (m *Manager) Logout(ctx context.Context, tabID string) error {
	if err := m.backend.Clear(ctx, tabID); err != nil {
		return err
	}
	m.metrics.ObserveLogout()
	m.log.Info().Str("tab", tabID).Msg("Session cleared")
	return nil
}

// StillCurrent reports whether the tab is still logged in with token.
// Store errors count as "no": a result that cannot be attributed is dropped.
func (m *Manager) StillCurrent(ctx context.Context, tabID, token string) bool {
	s, err := m.backend.Get(ctx, tabID)
	if err != nil {
		m.log.Warn().Err(err).Str("tab", tabID).Msg("Session lookup failed")
		return false
	}
	return s.Authenticated() && s.Token == token
}

// Notify shows f to the tab until the flash TTL elapses.
func (m *Manager) Notify(ctx context.Context, tabID string, f Flash) error {
	if err := m.backend.PutFlash(ctx, tabID, f, m.flashTTL); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// Flash returns the tab's live banner, if any.
func (m *Manager) Flash(ctx context.Context, tabID string) (*Flash, error) {
	return m.backend.Flash(ctx, tabID)
}

// FlashTTL is the banner lifetime.
func (m *Manager) FlashTTL() time.Duration {
	return m.flashTTL
}
