package chat

import (
	"context"
	"sync"
	"time"
)

// DefaultTypingTTL is how long a typing signal stays visible without being
// re-sent. Clients re-signal periodically while the user keeps typing.
const DefaultTypingTTL = 5 * time.Second

// Typing is the short-lived per-conversation set of currently-typing users.
// Entries expire on their own; an explicit "stopped typing" removes them
// immediately.
type Typing struct {
	mu      sync.RWMutex
	entries map[string]map[string]time.Time // conversationID -> userID -> expiry
	ttl     time.Duration

	now func() time.Time // test hook
}

func NewTyping(ttl time.Duration) *Typing {
	if ttl <= 0 {
		ttl = DefaultTypingTTL
	}
	return &Typing{
		entries: make(map[string]map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Set records or clears a typing signal. Repeated calls with isTyping=true
// refresh the TTL.
func (t *Typing) Set(conversationID, userID string, isTyping bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.entries[conversationID]
	if !isTyping {
		if ok {
			delete(set, userID)
			if len(set) == 0 {
				delete(t.entries, conversationID)
			}
		}
		return
	}
	if !ok {
		set = make(map[string]time.Time)
		t.entries[conversationID] = set
	}
	set[userID] = t.now().Add(t.ttl)
}

// Users returns who is currently typing in a conversation.
func (t *Typing) Users(conversationID string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	set, ok := t.entries[conversationID]
	if !ok {
		return nil
	}
	now := t.now()
	users := make([]string, 0, len(set))
	for userID, expiry := range set {
		if expiry.After(now) {
			users = append(users, userID)
		}
	}
	return users
}

// Sweep removes expired entries.
func (t *Typing) Sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for convID, set := range t.entries {
		for userID, expiry := range set {
			if !expiry.After(now) {
				delete(set, userID)
			}
		}
		if len(set) == 0 {
			delete(t.entries, convID)
		}
	}
}

// StartSweeper runs Sweep on an interval until ctx is done.
func (t *Typing) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.Sweep()
			}
		}
	}()
}
