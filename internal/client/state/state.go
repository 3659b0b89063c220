// Package state holds the client's single source of truth for authentication:
// the current user, the token pair, and the initial-restoration flag. All
// mutation goes through SetAuth/ClearAuth; ambient writes are not possible.
package state

import (
	"context"
	"errors"
	"sync"

	"github.com/ficomdev/ficomtest/internal/client/models"
	"github.com/ficomdev/ficomtest/internal/client/repositories/credentials"
)

// ErrNoStore is returned when a Context is constructed without a credential
// store. This is a programming-error guard, not a runtime auth failure.
var ErrNoStore = errors.New("auth state requires a credential store")

// Invalidator purges per-identity cached data. ClearAuth calls it so stale
// responses are never served to a different or anonymous user.
type Invalidator interface {
	Invalidate()
}

// Snapshot is an immutable copy of the auth state handed to observers.
type Snapshot struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	Loading      bool
}

// Authenticated reports whether the snapshot carries a full session.
func (s Snapshot) Authenticated() bool {
	return s.User != nil && s.AccessToken != "" && s.RefreshToken != ""
}

// Context is the process-wide auth state container.
//
// Invariant: user is non-nil iff both tokens are present. Loading is true
// only until the single restoration read finishes, and never again.
type Context struct {
	mu        sync.Mutex
	user      *models.User
	access    string
	refresh   string
	loading   bool
	restored  bool
	store     credentials.Repository
	cache     Invalidator
	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn func(Snapshot)
}

// New constructs a Context backed by the given store. The cache may be nil.
func New(store credentials.Repository, cache Invalidator) (*Context, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	return &Context{
		loading: true,
		store:   store,
		cache:   cache,
	}, nil
}

// Restore performs the one-time restoration read from the credential store.
// Loading becomes false afterwards regardless of outcome; repeated calls
// are no-ops.
func (c *Context) Restore(ctx context.Context) error {
	c.mu.Lock()
	if c.restored {
		c.mu.Unlock()
		return nil
	}
	c.restored = true
	c.mu.Unlock()

	creds, err := c.store.Restore(ctx)

	c.mu.Lock()
	c.loading = false
	if creds != nil {
		c.user = creds.User
		c.access = creds.AccessToken
		c.refresh = creds.RefreshToken
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return err
}

// SetAuth replaces the whole triple and persists it in the same operation.
// Observers never see a state with one field updated and another stale.
func (c *Context) SetAuth(ctx context.Context, user *models.User, accessToken, refreshToken string) error {
	if err := c.store.Save(ctx, user, accessToken, refreshToken); err != nil {
		return err
	}

	c.mu.Lock()
	previousID := ""
	if c.user != nil {
		previousID = c.user.ID
	}
	c.user = user
	c.access = accessToken
	c.refresh = refreshToken
	snap := c.snapshotLocked()
	c.mu.Unlock()

	// A change of identity invalidates responses cached for the old one.
	if c.cache != nil && previousID != "" && previousID != user.ID {
		c.cache.Invalidate()
	}

	c.notify(snap)
	return nil
}

// ClearAuth nils the triple, purges durable credentials, and invalidates the
// per-identity response cache. Clearing an already-clear state is a no-op.
func (c *Context) ClearAuth(ctx context.Context) error {
	c.mu.Lock()
	c.user = nil
	c.access = ""
	c.refresh = ""
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.cache != nil {
		c.cache.Invalidate()
	}
	err := c.store.Clear(ctx)

	c.notify(snap)
	return err
}

// AccessToken returns the current access token, or "" when anonymous.
func (c *Context) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.access
}

// RefreshToken returns the current refresh token, or "" when anonymous.
func (c *Context) RefreshToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refresh
}

// Snapshot returns an immutable copy of the current state.
func (c *Context) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the subscription.
func (c *Context) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners = append(c.listeners, listener{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
	}
}

func (c *Context) snapshotLocked() Snapshot {
	var user *models.User
	if c.user != nil {
		u := *c.user
		user = &u
	}
	return Snapshot{
		User:         user,
		AccessToken:  c.access,
		RefreshToken: c.refresh,
		Loading:      c.loading,
	}
}

// notify runs listeners outside the lock so they may read state freely.
func (c *Context) notify(snap Snapshot) {
	c.mu.Lock()
	fns := make([]func(Snapshot), 0, len(c.listeners))
	for _, l := range c.listeners {
		fns = append(fns, l.fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
