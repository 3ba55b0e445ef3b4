package anim

import (
	"sync"
	"time"
)

// Timers tracks pending one-shot callbacks for transient effects so they
// can all be cancelled on teardown.
type Timers struct {
	mu      sync.Mutex
	next    int
	pending map[int]*time.Timer
}

// After runs fn once after d on its own goroutine and returns an id for
// Cancel.
func (t *Timers) After(d time.Duration, fn func()) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		t.pending = make(map[int]*time.Timer)
	}
	t.next++
	id := t.next
	t.pending[id] = time.AfterFunc(d, func() {
		t.mu.Lock()
		_, live := t.pending[id]
		delete(t.pending, id)
		t.mu.Unlock()
		if live {
			fn()
		}
	})
	return id
}

// Cancel stops one timer. It reports whether the timer was still pending.
func (t *Timers) Cancel(id int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	timer, ok := t.pending[id]
	if !ok {
		return false
	}
	timer.Stop()
	delete(t.pending, id)
	return true
}

// CancelAll stops every pending timer and returns how many there were.
func (t *Timers) CancelAll() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.pending)
	for id, timer := range t.pending {
		timer.Stop()
		delete(t.pending, id)
	}
	return n
}

// Pending returns the number of timers that have not fired or been
// cancelled.
func (t *Timers) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
