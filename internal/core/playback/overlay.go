package playback

import (
	"sync"
	"time"
)

// OverlayDismissDelay is how long the center-screen play/pause glyph stays up
// after a tap before fading on its own.
const OverlayDismissDelay = 600 * time.Millisecond

// Glyph is the icon shown by the tap overlay.
type Glyph string

const (
	GlyphPlay  Glyph = "play"
	GlyphPause Glyph = "pause"
)

// Overlay is the transient center-screen indicator shown when the viewer taps
// a video. It is presentation state local to one post's card and is not shared
// with the Coordinator.
type Overlay struct {
	mu      sync.Mutex
	delay   time.Duration
	glyph   Glyph
	visible bool
	timer   *time.Timer
}

// NewOverlay creates an overlay with the standard dismiss delay.
func NewOverlay() *Overlay {
	return &Overlay{delay: OverlayDismissDelay}
}

// newOverlayWithDelay exists so tests can run with a short timer.
func newOverlayWithDelay(delay time.Duration) *Overlay {
	return &Overlay{delay: delay}
}

// Flash shows the glyph and re-arms the auto-dismiss timer. A second tap
// before dismissal restarts the countdown with the new glyph.
func (o *Overlay) Flash(g Glyph) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.glyph = g
	o.visible = true
	if o.timer != nil {
		o.timer.Stop()
	}
	o.timer = time.AfterFunc(o.delay, o.dismiss)
}

func (o *Overlay) dismiss() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = false
}

// State returns the current glyph and whether it is visible.
func (o *Overlay) State() (Glyph, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.glyph, o.visible
}

// Stop cancels the pending dismiss timer. Call on card unmount so the timer
// does not outlive the view.
func (o *Overlay) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.visible = false
}
