package scheduler

import "testing"

func TestLimiter_TryAcquireIsBounded(t *testing.T) {
	l := NewLimiter(2)

	if !l.TryAcquire() || !l.TryAcquire() {
		t.Fatal("expected two acquisitions to succeed")
	}
	if l.TryAcquire() {
		t.Fatal("third acquisition must fail, not block")
	}
	if l.Active() != 2 {
		t.Errorf("active = %d, want 2", l.Active())
	}

	l.Release()
	if !l.TryAcquire() {
		t.Fatal("acquisition after release must succeed")
	}
}

func TestLimiter_DefaultBound(t *testing.T) {
	l := NewLimiter(0)
	if l.Max() != 10 {
		t.Errorf("default bound = %d, want 10", l.Max())
	}
}
