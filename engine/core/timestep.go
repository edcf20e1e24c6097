package core

import "time"

// DefaultFixedRate is the simulation rate of the fixed-step loop.
const DefaultFixedRate float64 = 1.0 / 90.0

// maxCatchUpTicks bounds how many fixed ticks a single frame may emit when
// real time has fallen behind. Anything beyond this is dropped on the floor
// rather than spiraling the frame.
const maxCatchUpTicks = 8

// Timestep tracks the wall-clock delta of the current frame and accumulates
// the fixed-step remainder. It is owned by the frame thread; Update must be
// called exactly once per frame before any of the accessors.
type Timestep struct {
	now         func() float64
	lastTime    float64
	delta       float64
	accumulator float64
	fixedRate   float64
	timeScale   float64
	frameTicks  int
	started     bool
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

func NewTimestep(fixedRate float64) *Timestep {
	if fixedRate <= 0 {
		fixedRate = DefaultFixedRate
	}
	return &Timestep{
		now:       nowSeconds,
		fixedRate: fixedRate,
		timeScale: 1.0,
	}
}

// Reset restarts the frame clock. Called when entering play mode so that the
// first frame does not see the entire edit-mode pause as one huge delta.
func (t *Timestep) Reset() {
	t.lastTime = t.now()
	t.delta = 0
	t.accumulator = 0
	t.frameTicks = 0
	t.started = true
}

// Update samples the clock and accumulates the unscaled delta into the
// fixed-step remainder. The accumulator keeps advancing even at time scale 0;
// only the emitted tick magnitudes are scaled.
func (t *Timestep) Update() {
	current := t.now()
	if !t.started {
		t.lastTime = current
		t.started = true
	}
	t.delta = current - t.lastTime
	t.lastTime = current

	t.accumulator += t.delta
	t.frameTicks = 0
}

// Delta returns the unscaled frame delta in seconds.
func (t *Timestep) Delta() float64 {
	return t.delta
}

// ScaledDelta returns the frame delta multiplied by the global time scale.
// This is what variable-rate consumers receive.
func (t *Timestep) ScaledDelta() float64 {
	return t.delta * t.timeScale
}

func (t *Timestep) TimeScale() float64 {
	return t.timeScale
}

func (t *Timestep) SetTimeScale(scale float64) {
	t.timeScale = scale
}

func (t *Timestep) FixedRate() float64 {
	return t.fixedRate
}

// ConsumeFixedTick drains one fixed interval from the accumulator and returns
// the scaled tick magnitude. ok is false once less than one interval remains
// or the per-frame catch-up bound is hit. Multiple ticks may drain in a
// single frame when real time has fallen behind; zero drain when it has not.
func (t *Timestep) ConsumeFixedTick() (dt float64, ok bool) {
	if t.accumulator < t.fixedRate {
		return 0, false
	}
	if t.frameTicks >= maxCatchUpTicks {
		// Drop the backlog instead of emitting an unbounded burst.
		t.accumulator = 0
		return 0, false
	}
	t.accumulator -= t.fixedRate
	t.frameTicks++
	return t.fixedRate * t.timeScale, true
}

// Accumulated returns the current fixed-step remainder.
func (t *Timestep) Accumulated() float64 {
	return t.accumulator
}
