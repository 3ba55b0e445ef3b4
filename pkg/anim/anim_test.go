package anim

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vanderheijden86/conceptmap/pkg/model"
)

func TestLoopStartStop(t *testing.T) {
	var l Loop
	var frames atomic.Int64
	if err := l.Start(context.Background(), time.Millisecond, func(time.Duration) { frames.Add(1) }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := l.Start(context.Background(), time.Millisecond, func(time.Duration) {}); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start: expected ErrAlreadyStarted, got %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for frames.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if frames.Load() < 3 {
		t.Fatalf("expected frames, got %d", frames.Load())
	}

	l.Stop()
	if l.Running() {
		t.Error("Running after Stop")
	}
	after := frames.Load()
	time.Sleep(20 * time.Millisecond)
	if frames.Load() != after {
		t.Errorf("frames delivered after Stop: %d -> %d", after, frames.Load())
	}

	l.Stop() // no-op
	if err := l.Start(context.Background(), time.Millisecond, func(time.Duration) {}); err != nil {
		t.Errorf("restart after Stop: %v", err)
	}
	l.Stop()
}

func TestLoopContextCancel(t *testing.T) {
	var l Loop
	ctx, cancel := context.WithCancel(context.Background())
	var frames atomic.Int64
	if err := l.Start(ctx, time.Millisecond, func(time.Duration) { frames.Add(1) }); err != nil {
		t.Fatal(err)
	}
	cancel()
	time.Sleep(10 * time.Millisecond)
	n := frames.Load()
	time.Sleep(20 * time.Millisecond)
	if frames.Load() != n {
		t.Error("loop kept running after its context was cancelled")
	}
	l.Stop() // must not hang
}

func TestIntervalForFPS(t *testing.T) {
	if IntervalForFPS(0) != DefaultInterval {
		t.Error("zero fps should use the default")
	}
	if IntervalForFPS(50) != 20*time.Millisecond {
		t.Errorf("50 fps = %v", IntervalForFPS(50))
	}
}

func TestSmootherConverges(t *testing.T) {
	s := NewSmoother(0.2)
	s.SetTarget(model.Point{X: 100, Y: -50})
	prev := math.Inf(1)
	for i := 0; i < 200 && !s.Settled(); i++ {
		v := s.Step(referenceFrame)
		d := math.Hypot(100-v.X, -50-v.Y)
		if d > prev {
			t.Fatalf("distance grew at step %d: %v > %v", i, d, prev)
		}
		prev = d
	}
	if !s.Settled() {
		t.Fatalf("did not settle: %v", s.Value())
	}
}

func TestSmootherFrameRateIndependent(t *testing.T) {
	a := NewSmoother(0.3)
	b := NewSmoother(0.3)
	a.SetTarget(model.Point{X: 10})
	b.SetTarget(model.Point{X: 10})
	a.Step(2 * referenceFrame)
	b.Step(referenceFrame)
	b.Step(referenceFrame)
	if math.Abs(a.Value().X-b.Value().X) > 1e-9 {
		t.Errorf("one double step %v != two single steps %v", a.Value().X, b.Value().X)
	}
}

func TestSmootherJumpAndZeroStep(t *testing.T) {
	s := NewSmoother(0)
	s.Jump(model.Point{X: 3, Y: 4})
	if !s.Settled() || s.Value() != (model.Point{X: 3, Y: 4}) {
		t.Error("Jump should settle immediately")
	}
	s.SetTarget(model.Point{})
	if v := s.Step(0); v != (model.Point{X: 3, Y: 4}) {
		t.Errorf("zero dt moved the value to %v", v)
	}
}

func TestTimersFireAndCancel(t *testing.T) {
	var tm Timers
	fired := make(chan int, 3)

	tm.After(time.Millisecond, func() { fired <- 1 })
	id := tm.After(time.Hour, func() { fired <- 2 })
	tm.After(time.Hour, func() { fired <- 3 })

	select {
	case v := <-fired:
		if v != 1 {
			t.Fatalf("unexpected timer %d", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("short timer did not fire")
	}

	if !tm.Cancel(id) {
		t.Error("Cancel should report the pending timer")
	}
	if tm.Cancel(id) {
		t.Error("second Cancel should report false")
	}
	if n := tm.CancelAll(); n != 1 {
		t.Errorf("CancelAll = %d, want 1", n)
	}
	if tm.Pending() != 0 {
		t.Errorf("Pending = %d after CancelAll", tm.Pending())
	}
}

func TestTimersCancelAllBeforeFire(t *testing.T) {
	var tm Timers
	var fired atomic.Bool
	tm.After(5*time.Millisecond, func() { fired.Store(true) })
	tm.CancelAll()
	time.Sleep(20 * time.Millisecond)
	if fired.Load() {
		t.Error("cancelled timer fired")
	}
}
