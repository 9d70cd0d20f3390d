// Package playback keeps at most one feed video playing at a time. The
// coordinator tracks registered players and reacts to viewport-visibility
// ratios reported by the app shell, so it needs no rendering surface and is
// testable with fake players.
package playback

import (
	"log/slog"
	"sync"
)

// VisibilityThreshold is the fraction of a player's area that must be inside
// the viewport before it takes over playback.
const VisibilityThreshold = 0.70

// Player is the control surface of one mounted video element. Play may be
// rejected by the host platform's autoplay policy; that is non-fatal and the
// next visibility-enter attempts again.
type Player interface {
	Play() error
	Pause()
}

type playerState struct {
	player  Player
	visible bool
	playing bool
	muted   bool
}

// Coordinator enforces the single-active-video rule across all registered
// players.
type Coordinator struct {
	mu        sync.Mutex
	logger    *slog.Logger
	threshold float64
	players   map[string]*playerState
}

// NewCoordinator creates a coordinator using the standard visibility
// threshold.
func NewCoordinator(logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		logger:    logger,
		threshold: VisibilityThreshold,
		players:   make(map[string]*playerState),
	}
}

// Register starts tracking a player. Players begin paused and muted; muted is
// required for unattended autoplay on mobile platforms.
func (c *Coordinator) Register(id string, p Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.players[id] = &playerState{player: p, muted: true}
}

// Unregister stops tracking a player, pausing it first. Skipping this on
// unmount leaks the entry, so the websocket bridge calls it for every
// registered id when the connection drops.
func (c *Coordinator) Unregister(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if state, ok := c.players[id]; ok {
		state.player.Pause()
		delete(c.players, id)
	}
}

// ReportVisibility feeds one visibility-ratio sample for a player. Crossing
// the threshold pauses every other player and starts this one; dropping below
// it pauses this one.
func (c *Coordinator) ReportVisibility(id string, ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, ok := c.players[id]
	if !ok {
		return
	}

	if ratio < c.threshold {
		if state.visible {
			state.visible = false
			c.pause(state)
		}
		return
	}

	if state.visible {
		return // still inside, no transition
	}
	state.visible = true

	for otherID, other := range c.players {
		if otherID != id {
			c.pause(other)
		}
	}
	c.play(id, state)
}

// Toggle flips play/pause for one player in response to a direct tap,
// independent of visibility. Returns whether the player is now playing.
func (c *Coordinator) Toggle(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, ok := c.players[id]
	if !ok {
		return false, ErrUnknownPlayer
	}

	if state.playing {
		c.pause(state)
		return false, nil
	}
	c.play(id, state)
	return state.playing, nil
}

// SetMuted updates a player's local mute flag.
func (c *Coordinator) SetMuted(id string, muted bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	state.muted = muted
	return nil
}

// IsPlaying reports whether the player with the given id is playing.
func (c *Coordinator) IsPlaying(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.players[id]
	return ok && state.playing
}

// IsMuted reports the player's local mute flag (true for unknown ids).
func (c *Coordinator) IsMuted(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.players[id]
	return !ok || state.muted
}

// play must be called with the lock held.
func (c *Coordinator) play(id string, state *playerState) {
	if state.playing {
		return
	}
	if err := state.player.Play(); err != nil {
		// Autoplay rejection is expected on first programmatic attempts.
		// No retry here; the next visibility-enter tries again.
		c.logger.Warn("playback start rejected", "player", id, "error", err)
		return
	}
	state.playing = true
}

// pause must be called with the lock held.
func (c *Coordinator) pause(state *playerState) {
	if !state.playing {
		return
	}
	state.player.Pause()
	state.playing = false
}
