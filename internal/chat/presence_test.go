package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPresenceFirstConnectionOnly(t *testing.T) {
	p := NewPresence(time.Minute)

	assert.True(t, p.Connect("u1", "c1"), "first connection flips the user online")
	assert.False(t, p.Connect("u1", "c2"), "second device must not re-broadcast online")
	assert.True(t, p.IsOnline("u1"))
	assert.Len(t, p.ConnectionsOf("u1"), 2)
}

func TestPresenceLastConnectionOffline(t *testing.T) {
	p := NewPresence(time.Minute)
	p.Connect("u1", "c1")
	p.Connect("u1", "c2")

	assert.False(t, p.Disconnect("u1", "c1"), "one open device keeps the user online")
	assert.True(t, p.IsOnline("u1"))
	assert.True(t, p.Disconnect("u1", "c2"), "offline only when the last device drops")
	assert.False(t, p.IsOnline("u1"))
}

func TestPresenceDisconnectUnknown(t *testing.T) {
	p := NewPresence(time.Minute)
	assert.False(t, p.Disconnect("ghost", "c1"))
}

func TestPresenceExpiry(t *testing.T) {
	now := time.Now()
	p := NewPresence(time.Minute)
	p.now = func() time.Time { return now }

	p.Connect("u1", "c1")
	assert.True(t, p.IsOnline("u1"))

	now = now.Add(61 * time.Second)
	assert.False(t, p.IsOnline("u1"), "expired connections do not count")
}

func TestPresenceHeartbeatRefreshes(t *testing.T) {
	now := time.Now()
	p := NewPresence(time.Minute)
	p.now = func() time.Time { return now }

	p.Connect("u1", "c1")
	now = now.Add(50 * time.Second)
	p.Heartbeat("u1")
	now = now.Add(50 * time.Second)
	assert.True(t, p.IsOnline("u1"), "heartbeat extends every device's TTL")
}

func TestPresenceSweepReportsOffline(t *testing.T) {
	now := time.Now()
	p := NewPresence(time.Minute)
	p.now = func() time.Time { return now }

	p.Connect("u1", "c1")
	p.Connect("u2", "c2")
	p.Connect("u2", "c3")

	now = now.Add(30 * time.Second)
	p.Heartbeat("u2")
	now = now.Add(45 * time.Second)

	wentOffline := p.Sweep()
	assert.Equal(t, []string{"u1"}, wentOffline)
	assert.False(t, p.IsOnline("u1"))
	assert.True(t, p.IsOnline("u2"))
}

func TestPresenceOnlineUsers(t *testing.T) {
	p := NewPresence(time.Minute)
	p.Connect("u1", "c1")
	p.Connect("u2", "c2")

	users := p.OnlineUsers()
	assert.ElementsMatch(t, []string{"u1", "u2"}, users)
}
