package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestInterval_StartFiresCallback(t *testing.T) {
	t.Parallel()

	var ticks int32
	iv := NewInterval()
	iv.Start(5*time.Millisecond, func() {
		atomic.AddInt32(&ticks, 1)
	})
	defer iv.Stop()

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&ticks) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("callback never fired")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestInterval_StartReplacesPriorSchedule(t *testing.T) {
	t.Parallel()

	var first, second int32
	iv := NewInterval()
	iv.Start(5*time.Millisecond, func() {
		atomic.AddInt32(&first, 1)
	})
	iv.Start(5*time.Millisecond, func() {
		atomic.AddInt32(&second, 1)
	})
	defer iv.Stop()

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&second) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("replacement callback never fired")
		}
		time.Sleep(time.Millisecond)
	}

	// The first schedule is cancelled, so its count settles.
	settled := atomic.LoadInt32(&first)
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&first); got != settled {
		t.Errorf("cancelled schedule kept firing: %d -> %d", settled, got)
	}
}

func TestInterval_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	iv := NewInterval()
	iv.Start(5*time.Millisecond, func() {})
	if !iv.Running() {
		t.Error("expected running after start")
	}

	iv.Stop()
	iv.Stop()
	if iv.Running() {
		t.Error("expected stopped after stop")
	}

	// Stopping a never-started interval must not panic either.
	fresh := NewInterval()
	fresh.Stop()
}
