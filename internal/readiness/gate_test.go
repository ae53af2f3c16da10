package readiness

import (
	"testing"
	"time"
)

func TestObserveFirstArrivalIsCold(t *testing.T) {
	gate := New(time.Minute)
	if !gate.Observe() {
		t.Fatal("first arrival should be cold")
	}
	if gate.Observe() {
		t.Fatal("immediate second arrival should be warm")
	}
}

func TestObserveColdAfterIdleThreshold(t *testing.T) {
	gate := New(time.Minute)
	current := time.Unix(1_700_000_000, 0)
	gate.now = func() time.Time { return current }

	gate.Observe()

	current = current.Add(30 * time.Second)
	if gate.Observe() {
		t.Fatal("arrival inside the idle threshold should be warm")
	}

	current = current.Add(2 * time.Minute)
	if !gate.Observe() {
		t.Fatal("arrival after the idle threshold should be cold")
	}
}

func TestDisabledGateNeverCold(t *testing.T) {
	gate := New(0)
	if gate.Observe() {
		t.Fatal("disabled gate must never report cold")
	}
}

func TestTouchKeepsGateWarm(t *testing.T) {
	gate := New(time.Minute)
	current := time.Unix(1_700_000_000, 0)
	gate.now = func() time.Time { return current }

	gate.Observe()

	current = current.Add(50 * time.Second)
	gate.Touch()

	current = current.Add(50 * time.Second)
	if gate.Observe() {
		t.Fatal("touch should have reset the idle clock")
	}
}
