package graph

import (
	"github.com/mattn/go-runewidth"

	"github.com/Dicklesworthstone/gpuscope/internal/config"
	"github.com/Dicklesworthstone/gpuscope/internal/trace"
)

// Interaction is the per-frame interaction context produced by the
// navigation state machine and the proximity resolver, passed into the
// render pass instead of scattering hover/selection state across it.
type Interaction struct {
	CursorX, CursorY float64
	CursorIn         bool
	MouseTS          int64

	// Selection/zoom preview band, active when SelEnd > SelStart.
	SelStart, SelEnd int64

	// Named time markers; valid when the flag is set.
	MarkerA, MarkerB           int64
	MarkerAValid, MarkerBValid bool

	// ZoomRow renders only the named row (plus its " hw" pair) at full
	// height when non-empty.
	ZoomRow string
}

// Frame is the per-frame engine state: the visible window, its event-id
// bounds, the shared hover list and the accumulated draw commands.
// Rebuilt every frame; the store is read-only throughout.
type Frame struct {
	Store  *trace.Store
	Layout *Layout
	Opts   *config.Options
	Map    TimeMap

	TS0, TS1   int64
	EventStart trace.EventID
	EventEnd   trace.EventID

	W, H float64 // visible viewport size in pixels

	Inter Interaction
	Hover *HoverList

	// HoveredComplete is the completion event of the timeline bar under
	// the cursor, if any.
	HoveredComplete trace.EventID

	// Filtered restricts row scans when only-filtered mode is active.
	Filtered map[trace.EventID]bool

	// MeasureText returns a label's width in pixels. The default measures
	// terminal cells.
	MeasureText func(string) float64

	Cmds []DrawCmd
}

// NewFrame builds the engine state for one render pass.
func NewFrame(store *trace.Store, layout *Layout, opts *config.Options, vp Viewport, w, h float64, inter Interaction) *Frame {
	ts0 := vp.StartTS
	ts1 := ts0 + vp.LengthTS
	f := &Frame{
		Store:           store,
		Layout:          layout,
		Opts:            opts,
		Map:             NewTimeMap(w, ts0, vp.LengthTS),
		TS0:             ts0,
		TS1:             ts1,
		EventStart:      store.IDAtOrAfter(ts0),
		EventEnd:        store.IDAtOrAfter(ts1),
		W:               w,
		H:               h,
		Inter:           inter,
		Hover:           NewHoverList(DefaultHoverMax, DefaultHoverRadius),
		HoveredComplete: trace.InvalidID,
		MeasureText: func(s string) float64 {
			return float64(runewidth.StringWidth(s))
		},
	}
	return f
}

// SetFiltered installs the only-filtered event set for this frame.
func (f *Frame) SetFiltered(locs []trace.EventID) {
	if len(locs) == 0 {
		f.Filtered = nil
		return
	}
	f.Filtered = make(map[trace.EventID]bool, len(locs))
	for _, id := range locs {
		f.Filtered[id] = true
	}
}

// filteredOut reports whether only-filtered mode excludes an event.
func (f *Frame) filteredOut(id trace.EventID) bool {
	return f.Filtered != nil && !f.Filtered[id]
}

// cursorInRect reports whether the cursor sits inside a rect.
func (f *Frame) cursorInRect(x, w, y, h float64) bool {
	return f.Inter.CursorIn &&
		f.Inter.CursorX >= x && f.Inter.CursorX <= x+w &&
		f.Inter.CursorY >= y && f.Inter.CursorY <= y+h
}

// cursorInBand reports whether the cursor is inside a horizontal band.
func (f *Frame) cursorInBand(y, h float64) bool {
	return f.Inter.CursorIn && f.Inter.CursorY >= y && f.Inter.CursorY <= y+h
}

// offerHover feeds an event into the shared hover list.
func (f *Frame) offerHover(x float64, id trace.EventID) bool {
	if !f.Inter.CursorIn {
		return false
	}
	return f.Hover.Add(f.Map, f.Inter.CursorX, x, id)
}

func (f *Frame) rect(x, w, y, h float64, color ColorID) {
	f.Cmds = append(f.Cmds, DrawCmd{Op: OpRect, X: x, Y: y, W: w, H: h, Color: color})
}

func (f *Frame) tick(x, y, h float64, color ColorID) {
	f.Cmds = append(f.Cmds, DrawCmd{Op: OpTick, X: x, Y: y, H: h, Color: color})
}

func (f *Frame) line(x0, y0, x1, y1 float64, color ColorID) {
	f.Cmds = append(f.Cmds, DrawCmd{Op: OpLine, X: x0, Y: y0, W: x1 - x0, H: y1 - y0, Color: color})
}

func (f *Frame) label(x, y float64, text string, color ColorID) {
	f.Cmds = append(f.Cmds, DrawCmd{Op: OpLabel, X: x, Y: y, Text: text, Color: color})
}
