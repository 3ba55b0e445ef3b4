// Package anim owns the time-driven parts of the canvas: the frame loop
// that drives parallax smoothing, and the timers behind transient effects.
// Both are explicit resources. Whoever starts them stops them when the view
// is torn down.
package anim

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vanderheijden86/conceptmap/pkg/debug"
)

// DefaultInterval is one frame at 30 fps.
const DefaultInterval = time.Second / 30

// ErrAlreadyStarted is returned by Start on a running loop.
var ErrAlreadyStarted = errors.New("animation loop already started")

// Loop calls a frame callback on a fixed interval until stopped. At most
// one instance runs per Loop.
type Loop struct {
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	frames  int64
}

// IntervalForFPS converts a frame rate to a tick interval.
func IntervalForFPS(fps int) time.Duration {
	if fps <= 0 {
		return DefaultInterval
	}
	return time.Second / time.Duration(fps)
}

// Start runs onFrame every interval on a new goroutine until ctx is
// cancelled or Stop is called. onFrame receives the time since the
// previous frame. A loop whose ctx was cancelled still needs Stop before
// it can be started again.
func (l *Loop) Start(ctx context.Context, interval time.Duration, onFrame func(dt time.Duration)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started {
		return ErrAlreadyStarted
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	l.started = true
	l.frames = 0

	go l.run(ctx, interval, onFrame, l.done)
	debug.Log("anim: loop started at %v", interval)
	return nil
}

func (l *Loop) run(ctx context.Context, interval time.Duration, onFrame func(time.Duration), done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			l.mu.Lock()
			l.frames++
			l.mu.Unlock()
			onFrame(dt)
		}
	}
}

// Stop cancels the loop and waits for its goroutine to exit. No frame
// callback runs after Stop returns. Stopping a stopped loop is a no-op.
// Stop must not be called from inside onFrame.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return
	}
	cancel, done := l.cancel, l.done
	l.started = false
	l.mu.Unlock()

	cancel()
	<-done
	debug.Log("anim: loop stopped")
}

// Running reports whether the loop is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started
}

// Frames returns the number of frames delivered since the last Start.
func (l *Loop) Frames() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}
