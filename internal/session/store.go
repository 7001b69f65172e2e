// Package session holds per-tab login state: the {token, role, userId}
// triple a browser client keeps in local storage, plus transient
// banners shown after an action.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/miniuni/miniuni-web/internal/model"
)

// ErrNoTab is returned when an operation is attempted without a tab id.
var ErrNoTab = errors.New("session: empty tab id")

// Store persists one Session per tab. Get returns (nil, nil) when the tab
// has no session or its token is empty.
type Store interface {
	Get(ctx context.Context, tabID string) (*model.Session, error)
	Set(ctx context.Context, tabID string, s *model.Session) error
	Clear(ctx context.Context, tabID string) error
}

// FlashKind styles a banner.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a banner that disappears once its TTL elapses.
type Flash struct {
	Kind FlashKind `json:"kind"`
	Text string    `json:"text"`
}

// FlashStore keeps at most one banner per tab.
type FlashStore interface {
	PutFlash(ctx context.Context, tabID string, f Flash, ttl time.Duration) error
	Flash(ctx context.Context, tabID string) (*Flash, error)
}

// Backend is a store that also keeps banners; both implementations do.
type Backend interface {
	Store
	FlashStore
}
