package auth

import (
	"fmt"
	"sync"
	"time"
)

// LockedOutError is returned by Login while a key is locked out.
type LockedOutError struct {
	RetryAfter time.Duration
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("too many login attempts, retry in %s", e.RetryAfter.Round(time.Minute))
}

type attempt struct {
	count int
	last  time.Time
}

// attempts counts failed logins per key and locks a key out after max
// failures until window has passed since the last one.
type attempts struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	byKey  map[string]*attempt
}

func newAttempts(max int, window time.Duration) *attempts {
	return &attempts{max: max, window: window, byKey: map[string]*attempt{}}
}

func (a *attempts) check(key string, now time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	at, ok := a.byKey[key]
	if !ok {
		return nil
	}
	since := now.Sub(at.last)
	if since >= a.window {
		delete(a.byKey, key)
		return nil
	}
	if at.count >= a.max {
		return &LockedOutError{RetryAfter: a.window - since}
	}
	return nil
}

func (a *attempts) fail(key string, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	at, ok := a.byKey[key]
	if !ok {
		at = &attempt{}
		a.byKey[key] = at
	}
	at.count++
	at.last = now
}

func (a *attempts) reset(key string) {
	a.mu.Lock()
	delete(a.byKey, key)
	a.mu.Unlock()
}
