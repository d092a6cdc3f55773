package gaze

import "time"

// BlinkState is the debounced blink gesture state.
type BlinkState int

const (
	BlinkNone BlinkState = iota
	SingleBlinkPending
	DoubleBlinkConfirmed
)

func (s BlinkState) String() string {
	switch s {
	case BlinkNone:
		return "none"
	case SingleBlinkPending:
		return "single-blink-pending"
	case DoubleBlinkConfirmed:
		return "double-blink-confirmed"
	default:
		return "unknown"
	}
}

const (
	// DefaultSingleBlinkWindow is how long a single blink waits for its second.
	DefaultSingleBlinkWindow = 750 * time.Millisecond
	// DefaultClickCooldown is how long a confirmed double blink stays "clicked".
	DefaultClickCooldown = 500 * time.Millisecond
)

// Transition describes what a single observation did to the debouncer.
type Transition struct {
	From, To BlinkState
}

// Changed reports whether the state moved.
func (t Transition) Changed() bool { return t.From != t.To }

// Click reports whether this transition confirmed a double blink.
func (t Transition) Click() bool {
	return t.From == SingleBlinkPending && t.To == DoubleBlinkConfirmed
}

// Debouncer converts a noisy per-frame closed-eyes signal into double-blink
// clicks. The look-back is measured in wall time so the result does not
// depend on the camera frame rate.
//
// A Debouncer is not safe for concurrent use; the controller owns it.
type Debouncer struct {
	Threshold    float64
	SingleWindow time.Duration
	Cooldown     time.Duration

	state BlinkState
	since time.Time
}

// NewDebouncer returns a debouncer with the stock threshold and windows.
func NewDebouncer() *Debouncer {
	return &Debouncer{
		Threshold:    ClosedEyesThreshold,
		SingleWindow: DefaultSingleBlinkWindow,
		Cooldown:     DefaultClickCooldown,
	}
}

// State returns the state as of now, applying any pending expiry.
func (d *Debouncer) State(now time.Time) BlinkState {
	d.Expire(now)
	return d.state
}

// Current returns the stored state without looking at the clock.
func (d *Debouncer) Current() BlinkState { return d.state }

// NextDeadline returns when the current state times out, if it does.
func (d *Debouncer) NextDeadline() (time.Time, bool) {
	switch d.state {
	case SingleBlinkPending:
		return d.since.Add(d.SingleWindow), true
	case DoubleBlinkConfirmed:
		return d.since.Add(d.Cooldown), true
	}
	return time.Time{}, false
}

// Expire drops back to BlinkNone once the current state's window has elapsed.
// It reports whether anything changed.
func (d *Debouncer) Expire(now time.Time) bool {
	deadline, ok := d.NextDeadline()
	if !ok || now.Before(deadline) {
		return false
	}
	d.state = BlinkNone
	d.since = time.Time{}
	return true
}

// Observe feeds one frame's blink probability into the state machine.
func (d *Debouncer) Observe(blinkProbability float64, now time.Time) Transition {
	d.Expire(now)
	t := Transition{From: d.state, To: d.state}
	if blinkProbability < d.Threshold {
		return t
	}

	switch d.state {
	case BlinkNone:
		d.state = SingleBlinkPending
		d.since = now
	case SingleBlinkPending:
		d.state = DoubleBlinkConfirmed
		d.since = now
	case DoubleBlinkConfirmed:
		// no triple blink; only the cooldown leaves this state
	}
	t.To = d.state
	return t
}
