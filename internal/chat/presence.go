package chat

import (
	"context"
	"sync"
	"time"
)

// DefaultPresenceTTL is how long a connection stays alive without a
// heartbeat before the registry considers it gone.
const DefaultPresenceTTL = 75 * time.Second

// Presence tracks which users currently hold live connections. It supports
// multiple simultaneous connections per user (multi-device) and is purely
// ephemeral: entries expire unless refreshed, and a restart forgets
// everything. Offline is broadcast by the caller only when Disconnect
// reports the last connection closed.
type Presence struct {
	mu    sync.RWMutex
	conns map[string]map[string]time.Time // userID -> connectionID -> expiry
	ttl   time.Duration

	now func() time.Time // test hook
}

func NewPresence(ttl time.Duration) *Presence {
	if ttl <= 0 {
		ttl = DefaultPresenceTTL
	}
	return &Presence{
		conns: make(map[string]map[string]time.Time),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Connect registers a connection and reports whether the user was offline
// before it (i.e. this is the first live connection, so the caller should
// broadcast "online").
func (p *Presence) Connect(userID, connectionID string) (wasOffline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set := p.liveSetLocked(userID)
	wasOffline = len(set) == 0
	if set == nil {
		set = make(map[string]time.Time)
		p.conns[userID] = set
	}
	set[connectionID] = p.now().Add(p.ttl)
	return wasOffline
}

// Disconnect removes a connection and reports whether the user's device set
// became empty, which is the only point an "offline" broadcast is correct
// for multi-device users.
func (p *Presence) Disconnect(userID, connectionID string) (nowOffline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, ok := p.conns[userID]
	if !ok {
		return false
	}
	delete(set, connectionID)
	if len(p.liveSetLocked(userID)) == 0 {
		delete(p.conns, userID)
		return true
	}
	return false
}

// Heartbeat refreshes the TTL of every connection the user holds.
func (p *Presence) Heartbeat(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set := p.liveSetLocked(userID)
	if set == nil {
		return
	}
	expiry := p.now().Add(p.ttl)
	for connID := range set {
		set[connID] = expiry
	}
}

// IsOnline reports whether the user holds at least one unexpired connection.
func (p *Presence) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.liveSet(userID)) > 0
}

// ConnectionsOf returns the user's live connection ids, for fan-out to all
// of their devices.
func (p *Presence) ConnectionsOf(userID string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	set := p.liveSet(userID)
	ids := make([]string, 0, len(set))
	for connID := range set {
		ids = append(ids, connID)
	}
	return ids
}

// OnlineUsers returns every user id with at least one live connection.
func (p *Presence) OnlineUsers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	users := make([]string, 0, len(p.conns))
	for userID := range p.conns {
		if len(p.liveSet(userID)) > 0 {
			users = append(users, userID)
		}
	}
	return users
}

// Sweep drops expired connections and returns the users that went offline
// because their last connection expired.
func (p *Presence) Sweep() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	var wentOffline []string
	for userID, set := range p.conns {
		for connID, expiry := range set {
			if !expiry.After(now) {
				delete(set, connID)
			}
		}
		if len(set) == 0 {
			delete(p.conns, userID)
			wentOffline = append(wentOffline, userID)
		}
	}
	return wentOffline
}

// StartSweeper runs Sweep on an interval until ctx is done; each sweep's
// newly-offline users are handed to onOffline (may be nil).
func (p *Presence) StartSweeper(ctx context.Context, interval time.Duration, onOffline func(userID string)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, userID := range p.Sweep() {
					if onOffline != nil {
						onOffline(userID)
					}
				}
			}
		}
	}()
}

// liveSet returns the unexpired connections for a user without mutating
// state (safe under RLock). Expired entries are skipped, not removed; the
// sweeper reclaims them.
func (p *Presence) liveSet(userID string) map[string]time.Time {
	set, ok := p.conns[userID]
	if !ok {
		return nil
	}
	now := p.now()
	live := make(map[string]time.Time, len(set))
	for connID, expiry := range set {
		if expiry.After(now) {
			live[connID] = expiry
		}
	}
	return live
}

// liveSetLocked additionally prunes expired entries; callers hold the write
// lock.
func (p *Presence) liveSetLocked(userID string) map[string]time.Time {
	set, ok := p.conns[userID]
	if !ok {
		return nil
	}
	now := p.now()
	for connID, expiry := range set {
		if !expiry.After(now) {
			delete(set, connID)
		}
	}
	return set
}
