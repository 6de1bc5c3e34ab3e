package meeting

import "testing"

func TestTimer_ToggleAndTick(t *testing.T) {
	var tm Timer
	if tm.State() != Stopped {
		t.Fatal("timer should start stopped")
	}

	state, gen := tm.Toggle()
	if state != Running {
		t.Fatalf("state = %v, want running", state)
	}
	for i := 0; i < 5; i++ {
		if !tm.Tick(gen) {
			t.Fatalf("tick %d not applied", i)
		}
	}
	if tm.Elapsed() != 5 {
		t.Fatalf("elapsed = %d, want 5", tm.Elapsed())
	}

	tm.Toggle()
	if tm.Tick(gen) {
		t.Fatal("tick applied while stopped")
	}
	if tm.Elapsed() != 5 {
		t.Fatalf("elapsed changed while stopped: %d", tm.Elapsed())
	}
}

func TestTimer_StaleTickDropped(t *testing.T) {
	var tm Timer
	_, oldGen := tm.Toggle()
	tm.Toggle()
	_, newGen := tm.Toggle()

	if tm.Tick(oldGen) {
		t.Fatal("stale tick from a previous run was applied")
	}
	if !tm.Tick(newGen) {
		t.Fatal("current tick was dropped")
	}
	if tm.Elapsed() != 1 {
		t.Fatalf("elapsed = %d, want 1", tm.Elapsed())
	}
}

func TestTimer_ResetFromAnyState(t *testing.T) {
	var tm Timer
	tm.Reset()
	if tm.Elapsed() != 0 || tm.Running() {
		t.Fatal("reset from initial state")
	}

	_, gen := tm.Toggle()
	tm.Tick(gen)
	tm.Tick(gen)
	tm.Reset()
	if tm.Elapsed() != 0 || tm.Running() {
		t.Fatalf("reset while running: elapsed=%d running=%v", tm.Elapsed(), tm.Running())
	}
	if tm.Tick(gen) {
		t.Fatal("tick after reset was applied")
	}

	_, gen = tm.Toggle()
	tm.Tick(gen)
	tm.Toggle()
	tm.Reset()
	if tm.Elapsed() != 0 || tm.Running() {
		t.Fatal("reset while paused")
	}
}
