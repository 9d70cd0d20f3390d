package playback

// ProgressPercent converts a playback position into the scrubber fill
// percentage. A zero or unknown duration reports 0.
func ProgressPercent(current, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	pct := current / duration * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// SeekTarget maps a tap at x on a scrub track of the given width to the
// playback position it selects. Positions are clamped into [0, duration].
func SeekTarget(x, width, duration float64) float64 {
	if width <= 0 || duration <= 0 {
		return 0
	}
	frac := x / width
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return frac * duration
}
