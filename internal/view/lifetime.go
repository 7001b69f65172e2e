// Package view holds the state and actions behind the three screens: login,
// student dashboard and admin dashboard. Views are built per request, fetch
// their data on Mount and report the outcome of actions; rendering and
// persistence of banners belong to the handlers.
package view

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// sharedCallTimeout bounds an action call once it no longer follows the
// request that started it.
const sharedCallTimeout = 30 * time.Second

// Guard collapses concurrent identical actions into one upstream call, so a
// double-clicked button cannot submit twice.
type Guard struct {
	group singleflight.Group
}

// NewGuard creates a Guard shared by all requests of a process.
func NewGuard() *Guard {
	return &Guard{}
}

// Lifetime ties a view's results to the request that created it. Once the
// request context ends, or the alive check fails (the tab logged out or
// switched sessions meanwhile), late results are discarded.
type Lifetime struct {
	ctx   context.Context
	tabID string
	alive func(context.Context) bool
	guard *Guard
}

// NewLifetime creates a Lifetime. alive and guard may be nil.
func NewLifetime(ctx context.Context, tabID string, alive func(context.Context) bool, guard *Guard) *Lifetime {
	if guard == nil {
		guard = NewGuard()
	}
	return &Lifetime{ctx: ctx, tabID: tabID, alive: alive, guard: guard}
}

// Context is the context upstream calls run under.
func (l *Lifetime) Context() context.Context {
	return l.ctx
}

// Alive reports whether results may still be applied.
func (l *Lifetime) Alive() bool {
	if l.ctx.Err() != nil {
		return false
	}
	return l.alive == nil || l.alive(l.ctx)
}

// once runs fn unless the same tab already has action in flight, in which case
// it waits for and shares that call's result. The shared call outlives the
// request that started it so that a cancelled first click does not fail the
// second; each caller stops waiting when its own context ends.
func (l *Lifetime) once(action string, fn func(ctx context.Context) (any, error)) (any, error) {
	ch := l.guard.group.DoChan(l.tabID+":"+action, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(l.ctx), sharedCallTimeout)
		defer cancel()
		return fn(ctx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-l.ctx.Done():
		return nil, l.ctx.Err()
	}
}
