// Package session manages the client's token pair: it attaches the access
// token to outbound requests, transparently rotates the pair when the server
// rejects it, and keeps the stored copy in sync.
package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/isaidso/auth/internal/client/storage"
	"github.com/isaidso/auth/internal/common"
)

// ErrLoggedOut is returned when the session cannot be renewed; the stored
// pair has been cleared and the user must log in again.
var ErrLoggedOut = errors.New("session expired, please log in again")

// RenewFunc exchanges a refresh token for a fresh pair.
type RenewFunc func(ctx context.Context, refreshToken string) (*storage.Pair, error)

// Manager is an http.RoundTripper that holds the current token pair. A 401
// response triggers one renewal and one retry of the request; concurrent
// renewals are collapsed into a single refresh call, and a caller that lost
// the race reuses the already-rotated pair instead of burning it.
type Manager struct {
	store storage.Store
	base  http.RoundTripper
	renew RenewFunc

	mu    sync.RWMutex
	pair  *storage.Pair
	group singleflight.Group
}

func NewManager(store storage.Store, base http.RoundTripper, renew RenewFunc) *Manager {
	if base == nil {
		base = http.DefaultTransport
	}
	m := &Manager{store: store, base: base, renew: renew}
	if pair, err := store.Load(); err == nil {
		m.pair = pair
	}
	return m
}

// Current returns the pair in memory, or nil when logged out.
func (m *Manager) Current() *storage.Pair {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pair
}

// SetPair installs a freshly issued pair and persists it.
func (m *Manager) SetPair(pair *storage.Pair) error {
	m.mu.Lock()
	m.pair = pair
	m.mu.Unlock()
	return m.store.Save(pair)
}

// Clear forgets the pair in memory and on disk.
func (m *Manager) Clear() error {
	m.mu.Lock()
	m.pair = nil
	m.mu.Unlock()
	return m.store.Clear()
}

// LoggedIn reports whether a pair is available.
func (m *Manager) LoggedIn() bool {
	return m.Current() != nil
}

// RoundTrip sends the request with the current access token. On 401 it
// renews the pair once and retries the request once with the new token; a
// second 401 clears the stored session before the response is returned.
func (m *Manager) RoundTrip(req *http.Request) (*http.Response, error) {
	pair := m.Current()
	access := ""
	if pair != nil {
		access = pair.AccessToken
	}

	resp, err := m.send(req, access)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || access == "" {
		return resp, err
	}

	// Token rejected: drop this response and try to rotate.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	fresh, err := m.renewPair(req.Context(), access)
	if err != nil {
		return nil, err
	}
	resp, err = m.send(req, fresh.AccessToken)
	if err == nil && resp.StatusCode == http.StatusUnauthorized {
		// The server rejected a pair we just rotated; keeping it would loop
		// forever. Drop the session so callers see a logged-out client.
		_ = m.Clear()
	}
	return resp, err
}

// send issues a clone of req with the bearer header set. The body is
// restored from GetBody so the request stays replayable.
func (m *Manager) send(req *http.Request, access string) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	if access != "" {
		clone.Header.Set("Authorization", "Bearer "+access)
	}
	return m.base.RoundTrip(clone)
}

// renewPair rotates the refresh token, collapsing concurrent renewals.
// staleAccess identifies the pair the caller tried: if the stored pair has
// already moved on, the stored one is returned without another rotation.
// Renewal failure clears the session.
func (m *Manager) renewPair(ctx context.Context, staleAccess string) (*storage.Pair, error) {
	v, err, _ := m.group.Do("renew", func() (any, error) {
		current := m.Current()
		if current == nil {
			return nil, ErrLoggedOut
		}
		if current.AccessToken != staleAccess {
			return current, nil
		}

		fresh, err := m.renew(ctx, current.RefreshToken)
		if err != nil {
			_ = m.Clear()
			if errors.Is(err, common.ErrorUnauthorized) {
				return nil, ErrLoggedOut
			}
			return nil, err
		}
		if err := m.SetPair(fresh); err != nil {
			return nil, err
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*storage.Pair), nil
}
