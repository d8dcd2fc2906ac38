package cooldown

import (
	"testing"
	"time"
)

type fakeClock struct {
	current time.Time
	timers  []fakeTimer
}

type fakeTimer struct {
	fireAt time.Time
	fn     func()
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) after(d time.Duration, f func()) {
	c.timers = append(c.timers, fakeTimer{fireAt: c.current.Add(d), fn: f})
}

func (c *fakeClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
	remaining := c.timers[:0]
	for _, timer := range c.timers {
		if !timer.fireAt.After(c.current) {
			timer.fn()
		} else {
			remaining = append(remaining, timer)
		}
	}
	c.timers = remaining
}

func newTestGate(clock *fakeClock) *Gate {
	gate := NewGate()
	gate.now = clock.now
	gate.after = clock.after
	return gate
}

func TestSecondInvocationWithinWindowIsDenied(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	gate := newTestGate(clock)

	allowed, _ := gate.CheckAndRecord("gdrive", "u1", 3*time.Second)
	if !allowed {
		t.Fatal("first invocation must be allowed")
	}

	clock.advance(1 * time.Second)
	allowed, remaining := gate.CheckAndRecord("gdrive", "u1", 3*time.Second)
	if allowed {
		t.Fatal("second invocation at t+1s must be denied")
	}
	if remaining != 2*time.Second {
		t.Fatalf("expected 2s remaining, got %s", remaining)
	}
}

func TestInvocationAfterWindowIsAllowed(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	gate := newTestGate(clock)

	gate.CheckAndRecord("gdrive", "u1", 3*time.Second)
	clock.advance(3*time.Second + time.Millisecond)

	allowed, _ := gate.CheckAndRecord("gdrive", "u1", 3*time.Second)
	if !allowed {
		t.Fatal("invocation at t+3001ms must be allowed")
	}
}

func TestDeniedAttemptDoesNotExtendWindow(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	gate := newTestGate(clock)

	gate.CheckAndRecord("gdrive", "u1", 3*time.Second)
	clock.advance(2 * time.Second)
	if allowed, _ := gate.CheckAndRecord("gdrive", "u1", 3*time.Second); allowed {
		t.Fatal("expected denial at t+2s")
	}
	clock.advance(1*time.Second + time.Millisecond)
	if allowed, _ := gate.CheckAndRecord("gdrive", "u1", 3*time.Second); !allowed {
		t.Fatal("denied attempts must not push the expiry out")
	}
}

func TestCommandsAndUsersAreIndependent(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	gate := newTestGate(clock)

	gate.CheckAndRecord("gdrive", "u1", 3*time.Second)
	if allowed, _ := gate.CheckAndRecord("search", "u1", 3*time.Second); !allowed {
		t.Fatal("different command must not share the window")
	}
	if allowed, _ := gate.CheckAndRecord("gdrive", "u2", 3*time.Second); !allowed {
		t.Fatal("different user must not share the window")
	}
}

func TestZeroWindowFallsBackToDefault(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	gate := newTestGate(clock)

	gate.CheckAndRecord("ping", "u1", 0)
	clock.advance(DefaultWindow - time.Second)
	if allowed, _ := gate.CheckAndRecord("ping", "u1", 0); allowed {
		t.Fatal("expected default window to apply")
	}
}

func TestExpiredEntriesAreRemoved(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	gate := newTestGate(clock)

	gate.CheckAndRecord("gdrive", "u1", time.Second)
	clock.advance(2 * time.Second)

	gate.mu.Lock()
	size := len(gate.started)
	gate.mu.Unlock()
	if size != 0 {
		t.Fatalf("expected expired entry removal, %d entries left", size)
	}
}
