package display

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vtabsquare/attendance-agent/internal/pkg/sse"
)

// Button labels, matching the portal's timer button surface.
const (
	LabelCheckIn  = "CHECK IN"
	LabelCheckOut = "CHECK OUT"
)

// Renderer is the paint surface of the display loop. It stands in for the
// portal's #timer-display and #timer-btn DOM nodes: PaintTimer receives the
// "HH:MM:SS" text, PaintButton the label, session state and the disabled
// flag used while a command is in flight.
type Renderer interface {
	PaintTimer(hms string)
	PaintButton(label string, active bool, busy bool)
}

// MultiRenderer fans a paint out to several surfaces.
type MultiRenderer []Renderer

func (m MultiRenderer) PaintTimer(hms string) {
	for _, r := range m {
		r.PaintTimer(hms)
	}
}

func (m MultiRenderer) PaintButton(label string, active, busy bool) {
	for _, r := range m {
		r.PaintButton(label, active, busy)
	}
}

// TermRenderer paints the timer as a single rewritten terminal line.
type TermRenderer struct {
	mu    sync.Mutex
	out   io.Writer
	hms   string
	label string
	busy  bool
}

func NewTermRenderer(out io.Writer) *TermRenderer {
	return &TermRenderer{out: out}
}

func (t *TermRenderer) PaintTimer(hms string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hms = hms
	t.paint()
}

func (t *TermRenderer) PaintButton(label string, active, busy bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.label = label
	t.busy = busy
	t.paint()
}

func (t *TermRenderer) paint() {
	state := t.label
	if t.busy {
		state = state + "…"
	}
	fmt.Fprintf(t.out, "\r[%s] %s   ", state, t.hms)
}

// FrameRenderer publishes each paint as an SSE frame for portal tabs.
type FrameRenderer struct {
	mu     sync.Mutex
	hub    *sse.Hub
	now    func() time.Time
	hms    string
	label  string
	active bool
	busy   bool
}

func NewFrameRenderer(hub *sse.Hub) *FrameRenderer {
	return &FrameRenderer{hub: hub, now: time.Now}
}

func (f *FrameRenderer) PaintTimer(hms string) {
	f.mu.Lock()
	f.hms = hms
	frame := f.frame()
	f.mu.Unlock()
	f.hub.Publish(frame)
}

func (f *FrameRenderer) PaintButton(label string, active, busy bool) {
	f.mu.Lock()
	f.label = label
	f.active = active
	f.busy = busy
	frame := f.frame()
	f.mu.Unlock()
	f.hub.Publish(frame)
}

func (f *FrameRenderer) frame() sse.Frame {
	return sse.Frame{
		Display:   f.hms,
		Active:    f.active,
		Busy:      f.busy,
		Button:    f.label,
		PaintedAt: f.now(),
	}
}
