// Package gesture interprets a vertical drag that begins at the top of a
// scrollable region into a pull-to-refresh trigger with rubber-band damping.
// The controller is a pure state machine driven by UI event callbacks; only
// one drag can be active at a time by pointer semantics, so no locking.
package gesture

const (
	// DefaultThreshold is the damped offset that fires a refresh on release.
	DefaultThreshold = 80.0

	// DefaultDamping is the multiplier applied to raw pull-down distance.
	DefaultDamping = 0.4

	// settleRate controls the spring-like decay of the visual offset back to
	// zero, as a fraction removed per Settle step.
	settleRate = 0.25

	// settleEpsilon is the offset below which the settle animation snaps to
	// zero and the controller re-arms.
	settleEpsilon = 0.5
)

// Phase is the controller's current lifecycle stage.
type Phase int

const (
	// PhaseIdle means no drag is active.
	PhaseIdle Phase = iota
	// PhasePulling means a drag started at scroll-top and is being tracked.
	PhasePulling
	// PhaseSettling means the offset is animating back to zero; a new drag
	// may not begin until it lands.
	PhaseSettling
)

// PullController translates drag coordinates into a refresh trigger.
// The zero value is not usable; construct with NewPullController.
type PullController struct {
	threshold float64
	damping   float64
	onRefresh func()

	phase  Phase
	atTop  bool
	startY float64
	offset float64
}

// NewPullController builds a controller that invokes onRefresh when a released
// pull meets the threshold. Threshold and damping fall back to the defaults
// when non-positive.
func NewPullController(threshold, damping float64, onRefresh func()) *PullController {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if damping <= 0 {
		damping = DefaultDamping
	}
	return &PullController{
		threshold: threshold,
		damping:   damping,
		onRefresh: onRefresh,
		atTop:     true,
	}
}

// SetAtTop records whether the scrollable container sits at its top-most
// position. The gesture only arms while it does.
func (c *PullController) SetAtTop(atTop bool) {
	c.atTop = atTop
}

// Begin starts tracking a drag at the given vertical coordinate. Ignored when
// the container is scrolled down or a previous pull is still settling.
func (c *PullController) Begin(y float64) {
	if !c.atTop || c.phase != PhaseIdle {
		return
	}
	c.phase = PhasePulling
	c.startY = y
	c.offset = 0
}

// Move updates the tracked drag with a new vertical coordinate. Pull-down
// distance is damped into the visual offset; any reversal past the start
// point cancels the gesture outright so a reversed pull cannot still fire.
func (c *PullController) Move(y float64) {
	if c.phase != PhasePulling {
		return
	}
	delta := y - c.startY
	if delta < 0 {
		c.cancel()
		return
	}
	c.offset = delta * c.damping
}

// End releases the drag. If the damped offset reached the threshold the
// refresh callback fires; either way the offset settles back to zero.
// Returns whether a refresh was triggered.
func (c *PullController) End() bool {
	if c.phase != PhasePulling {
		return false
	}
	triggered := c.offset >= c.threshold
	if c.offset > 0 {
		c.phase = PhaseSettling
	} else {
		c.phase = PhaseIdle
	}
	if triggered && c.onRefresh != nil {
		c.onRefresh()
	}
	return triggered
}

// Settle advances the spring-back animation by one step. Call it from the
// animation tick until the controller reports PhaseIdle again.
func (c *PullController) Settle() {
	if c.phase != PhaseSettling {
		return
	}
	c.offset -= c.offset * settleRate
	if c.offset < settleEpsilon {
		c.offset = 0
		c.phase = PhaseIdle
	}
}

func (c *PullController) cancel() {
	c.offset = 0
	c.phase = PhaseIdle
}

// Offset is the current damped visual offset in display units.
func (c *PullController) Offset() float64 {
	return c.offset
}

// CurrentPhase reports the controller's lifecycle stage.
func (c *PullController) CurrentPhase() Phase {
	return c.phase
}

// IndicatorAngle is the arrow rotation in degrees, proportional to how much
// of the threshold the pull has covered (capped at a half turn).
func (c *PullController) IndicatorAngle() float64 {
	angle := c.offset / c.threshold * 180
	if angle > 180 {
		angle = 180
	}
	return angle
}
