package meeting

// TimerState is the run state of a meeting timer.
type TimerState int

// Timer states.
const (
	Stopped TimerState = iota
	Running
)

func (s TimerState) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Timer counts elapsed meeting seconds. Every start, stop, or reset bumps the
// generation, so a tick scheduled under an older generation is ignored.
type Timer struct {
	elapsed int64
	state   TimerState
	gen     uint64
}

// Toggle flips between stopped and running and returns the new state along
// with the generation that ticks must carry.
func (t *Timer) Toggle() (TimerState, uint64) {
	t.gen++
	if t.state == Running {
		t.state = Stopped
	} else {
		t.state = Running
	}
	return t.state, t.gen
}

// Tick advances elapsed by one second if the timer is running and gen is
// current. It reports whether the tick was applied.
func (t *Timer) Tick(gen uint64) bool {
	if t.state != Running || gen != t.gen {
		return false
	}
	t.elapsed++
	return true
}

// Reset stops the timer and zeroes elapsed, from any state.
func (t *Timer) Reset() {
	t.gen++
	t.state = Stopped
	t.elapsed = 0
}

// Elapsed returns the elapsed seconds.
func (t *Timer) Elapsed() int64 { return t.elapsed }

// State returns the current run state.
func (t *Timer) State() TimerState { return t.state }

// Running reports whether the timer is running.
func (t *Timer) Running() bool { return t.state == Running }

// Generation returns the current tick generation.
func (t *Timer) Generation() uint64 { return t.gen }
