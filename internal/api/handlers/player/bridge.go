// Package player bridges the app shell's feed view to the server-side engines
// over a websocket. The shell streams video visibility ratios, taps, and pull
// gesture coordinates up; play/pause commands, overlay glyphs, and pull
// indicator state flow back down. Keeping the coordinator and the pull
// controller behind this bridge means neither ever touches a real rendering
// surface.
package player

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"Vigora/internal/core/gesture"
	"Vigora/internal/core/playback"
)

// Event is an inbound message from the app shell.
type Event struct {
	Type     string  `json:"type"` // register | unregister | visibility | tap | seek | mute | scroll | pullStart | pullMove | pullEnd | pullTick
	ID       string  `json:"id,omitempty"`
	Ratio    float64 `json:"ratio,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Muted    bool    `json:"muted,omitempty"`
	AtTop    bool    `json:"atTop,omitempty"`
}

// Command is an outbound message to the app shell.
type Command struct {
	Type     string  `json:"type"` // command | overlay | seek | pull | refresh
	ID       string  `json:"id,omitempty"`
	Action   string  `json:"action,omitempty"` // play | pause | start | done
	Glyph    string  `json:"glyph,omitempty"`
	Position float64 `json:"position,omitempty"`
	Offset   float64 `json:"offset,omitempty"`
	Angle    float64 `json:"angle,omitempty"`
}

// Handler upgrades bridge connections and pumps events through the playback
// coordinator and the pull controller.
type Handler struct {
	coordinator *playback.Coordinator
	refresh     func(context.Context) error
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewHandler creates a bridge handler. refresh runs when a released pull
// crosses the trigger threshold; it may be nil in views without a feed.
func NewHandler(coordinator *playback.Coordinator, refresh func(context.Context) error, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		coordinator: coordinator,
		refresh:     refresh,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The gateway fronts only its own app shell.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS handles GET /api/playback/ws
func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("playback websocket upgrade failed", "error", err)
		return
	}

	session := &bridgeSession{
		handler: h,
		conn:    conn,
		send:    make(chan Command, 32),
		ids:     make(map[string]struct{}),
	}
	session.pull = gesture.NewPullController(0, 0, session.onPullTriggered)

	go session.writeLoop()
	session.readLoop()
}

// bridgeSession is one connected shell. Registered player ids are tracked so
// a dropped connection releases everything it registered; skipping that would
// leak entries in the coordinator.
type bridgeSession struct {
	handler *Handler
	conn    *websocket.Conn
	send    chan Command

	// pull is touched only from the read loop, matching the single-pointer
	// semantics the controller assumes.
	pull *gesture.PullController

	mu     sync.Mutex
	ids    map[string]struct{}
	closed bool
}

// wsPlayer adapts one registered video element to the playback.Player
// interface by emitting commands onto the session's send channel. Commands
// are fire-and-forget; autoplay rejection surfaces client-side.
type wsPlayer struct {
	id      string
	session *bridgeSession
}

func (p *wsPlayer) Play() error {
	p.session.push(Command{Type: "command", ID: p.id, Action: "play"})
	return nil
}

func (p *wsPlayer) Pause() {
	p.session.push(Command{Type: "command", ID: p.id, Action: "pause"})
}

func (s *bridgeSession) readLoop() {
	defer s.teardown()

	for {
		var event Event
		if err := s.conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.handler.logger.Warn("playback websocket read failed", "error", err)
			}
			return
		}
		s.dispatch(event)
	}
}

func (s *bridgeSession) dispatch(event Event) {
	c := s.handler.coordinator

	switch event.Type {
	case "register":
		s.mu.Lock()
		s.ids[event.ID] = struct{}{}
		s.mu.Unlock()
		c.Register(event.ID, &wsPlayer{id: event.ID, session: s})

	case "unregister":
		s.mu.Lock()
		delete(s.ids, event.ID)
		s.mu.Unlock()
		c.Unregister(event.ID)

	case "visibility":
		c.ReportVisibility(event.ID, event.Ratio)

	case "tap":
		playing, err := c.Toggle(event.ID)
		if err != nil {
			s.handler.logger.Warn("tap on unknown player", "player", event.ID)
			return
		}
		glyph := playback.GlyphPause
		if !playing {
			glyph = playback.GlyphPlay
		}
		s.push(Command{Type: "overlay", ID: event.ID, Glyph: string(glyph)})

	case "seek":
		position := playback.SeekTarget(event.X, event.Width, event.Duration)
		s.push(Command{Type: "seek", ID: event.ID, Position: position})

	case "mute":
		if err := c.SetMuted(event.ID, event.Muted); err != nil {
			s.handler.logger.Warn("mute on unknown player", "player", event.ID)
		}

	case "scroll":
		s.pull.SetAtTop(event.AtTop)

	case "pullStart":
		s.pull.Begin(event.Y)

	case "pullMove":
		s.pull.Move(event.Y)
		s.pushPullState()

	case "pullEnd":
		s.pull.End()
		s.pushPullState()

	case "pullTick":
		s.pull.Settle()
		s.pushPullState()

	default:
		s.handler.logger.Warn("unknown playback event", "type", event.Type)
	}
}

func (s *bridgeSession) writeLoop() {
	for cmd := range s.send {
		if err := s.conn.WriteJSON(cmd); err != nil {
			s.handler.logger.Warn("playback websocket write failed", "error", err)
			return
		}
	}
}

// pushPullState mirrors the controller's offset and indicator angle down to
// the shell so it can render the rubber-band and the arrow.
func (s *bridgeSession) pushPullState() {
	s.push(Command{Type: "pull", Offset: s.pull.Offset(), Angle: s.pull.IndicatorAngle()})
}

// onPullTriggered runs the feed refresh off the read loop so a slow origin
// never blocks event processing, and reports start/done around it.
func (s *bridgeSession) onPullTriggered() {
	if s.handler.refresh == nil {
		return
	}
	s.push(Command{Type: "refresh", Action: "start"})
	go func() {
		if err := s.handler.refresh(context.Background()); err != nil {
			s.handler.logger.Warn("pull refresh failed", "error", err)
		}
		s.push(Command{Type: "refresh", Action: "done"})
	}()
}

// push enqueues a command, dropping it if the shell has stopped draining or
// the session is already torn down.
func (s *bridgeSession) push(cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- cmd:
	default:
		s.handler.logger.Warn("bridge command dropped, slow consumer", "player", cmd.ID)
	}
}

func (s *bridgeSession) teardown() {
	s.mu.Lock()
	s.closed = true
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	s.ids = make(map[string]struct{})
	s.mu.Unlock()

	for _, id := range ids {
		s.handler.coordinator.Unregister(id)
	}

	close(s.send)
	s.conn.Close()
}
