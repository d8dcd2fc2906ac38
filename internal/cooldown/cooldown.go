package cooldown

import (
	"sync"
	"time"
)

// DefaultWindow applies when a command declares no cooldown of its own.
const DefaultWindow = 3 * time.Second

type key struct {
	command string
	userID  string
}

// Gate rate-limits command invocations per (command, user). Entries expire
// on their own; denied attempts never extend the window.
type Gate struct {
	mu      sync.Mutex
	started map[key]time.Time

	now   func() time.Time
	after func(d time.Duration, f func()) // time.AfterFunc, injectable for tests
}

func NewGate() *Gate {
	return &Gate{
		started: map[key]time.Time{},
		now:     time.Now,
		after:   func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// CheckAndRecord reports whether the command may run now. On allow it
// records the invocation atomically and schedules the entry's removal; on
// deny it returns the remaining wait and leaves the entry untouched.
func (g *Gate) CheckAndRecord(command, userID string, window time.Duration) (bool, time.Duration) {
	if window <= 0 {
		window = DefaultWindow
	}
	entry := key{command: command, userID: userID}
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()
	if started, ok := g.started[entry]; ok {
		expiry := started.Add(window)
		if now.Before(expiry) {
			return false, expiry.Sub(now)
		}
	}
	g.started[entry] = now
	g.after(window, func() {
		g.mu.Lock()
		if started, ok := g.started[entry]; ok && started.Equal(now) {
			delete(g.started, entry)
		}
		g.mu.Unlock()
	})
	return true, 0
}
