package display

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtabsquare/attendance-agent/internal/pkg/sse"
)

func TestTermRenderer_RewritesSingleLine(t *testing.T) {
	var buf strings.Builder
	r := NewTermRenderer(&buf)

	r.PaintButton(LabelCheckOut, true, false)
	r.PaintTimer("01:02:03")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\r"), "paints rewrite the line in place")
	assert.Contains(t, out, "[CHECK OUT] 01:02:03")
}

func TestTermRenderer_BusyMarker(t *testing.T) {
	var buf strings.Builder
	r := NewTermRenderer(&buf)

	r.PaintButton(LabelCheckIn, false, true)
	assert.Contains(t, buf.String(), "CHECK IN…")
}

func TestFrameRenderer_PublishesFrames(t *testing.T) {
	hub := sse.NewHub()
	ch, cleanup := hub.Subscribe()
	defer cleanup()

	paintedAt := time.Date(2026, 3, 9, 9, 15, 0, 0, time.UTC)
	r := NewFrameRenderer(hub)
	r.now = func() time.Time { return paintedAt }

	r.PaintTimer("01:02:03")
	frame := <-ch
	assert.Equal(t, "01:02:03", frame.Display)
	assert.Equal(t, paintedAt, frame.PaintedAt)

	r.PaintButton(LabelCheckOut, true, true)
	frame = <-ch
	assert.Equal(t, "01:02:03", frame.Display, "frames carry the last painted timer text")
	assert.Equal(t, LabelCheckOut, frame.Button)
	assert.True(t, frame.Active)
	assert.True(t, frame.Busy)
}

func TestMultiRenderer_FansOut(t *testing.T) {
	a := newRecordingRenderer()
	b := newRecordingRenderer()
	m := MultiRenderer{a, b}

	m.PaintTimer("00:00:10")
	m.PaintButton(LabelCheckIn, false, false)

	require.Equal(t, []string{"00:00:10"}, a.timerTexts())
	require.Equal(t, []string{"00:00:10"}, b.timerTexts())
	assert.Equal(t, LabelCheckIn, a.lastLabelPainted())
	assert.Equal(t, LabelCheckIn, b.lastLabelPainted())
}
