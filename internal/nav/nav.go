// Package nav is the view navigation state machine: pan, zoom (wheel,
// area-select, drag), keyboard scrolling, markers and saved locations.
// It is the sole mutator of the viewport, runs between frames, and never
// fails: navigation past the data bounds is clamped, not reported.
package nav

import (
	"math"
	"strings"

	"github.com/Dicklesworthstone/gpuscope/internal/graph"
)

// State is the pointer-interaction state.
type State uint8

const (
	Idle State = iota
	Panning
	SelectingArea
	ZoomDragging
	PopupOpen
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	case SelectingArea:
		return "selecting-area"
	case ZoomDragging:
		return "zoom-dragging"
	case PopupOpen:
		return "popup-open"
	}
	return "unknown"
}

// Loc is one saved view location.
type Loc struct {
	StartTS  int64
	LengthTS int64
}

// Valid reports whether the slot holds a view. A zero-length slot is
// empty; no real view has length 0 after clamping.
func (l Loc) Valid() bool { return l.LengthTS != 0 }

// savedSlots is the number of hotkey-addressed saved locations.
const savedSlots = 9

// zoomToggleLen is the window jumped to by the zoom toggle, centered at
// the cursor.
const zoomToggleLen = 3 * graph.NsecPerMsec

// keyboard scroll tuning
const (
	scrollRows     = 4.0    // up/down arrow, in text rows
	scrollFraction = 9.0    // left/right shift by scrollFraction/10 of the window
	endSlack       = 1 * graph.NsecPerMsec
)

// Pointer is one frame's pointer sample. Transitions are edge-triggered:
// the machine compares against the previous sample's button state.
type Pointer struct {
	X, Y    float64
	In      bool // cursor inside the viewport
	Primary bool
	Ctrl    bool
	Shift   bool
	Wheel   int // positive = zoom in
}

// Key is a navigation key, already translated from the input collaborator.
type Key uint8

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyEscape
	KeyZoomToggle // z
	KeyRowZoom    // ctrl+shift+z
	KeyMarkerA    // ctrl+a (goto), ctrl+shift+a (set)
	KeyMarkerB
	KeySlot1
	KeySlot2
	KeySlot3
	KeySlot4
	KeySlot5
	KeySlot6
	KeySlot7
	KeySlot8
	KeySlot9
)

// Mods carries the modifier state alongside a key press.
type Mods struct {
	Ctrl  bool
	Shift bool
}

// Machine owns the viewport and the navigation history. All methods are
// pure state mutation; the only "error" — moving past data bounds — is
// silently clamped.
type Machine struct {
	vp    graph.Viewport
	state State

	// Data bounds for clamping, refreshed per frame from the store.
	firstTS, lastTS int64

	// Press-position capture for drag states.
	capX, capY float64

	// Live selection band while SelectingArea/ZoomDragging; exported via
	// Interaction.
	selStart, selEnd int64

	prevPrimary bool

	saved   [savedSlots]Loc
	zoomLoc Loc // one-slot undo for zoom operations

	markers     [2]int64
	markerValid [2]bool

	// zoomRow is the focus-mode row name, "" when off. Orthogonal to the
	// viewport: toggling never moves the window.
	zoomRow string

	// TextH converts row-scroll keys to pixels; set by the frontend.
	TextH float64
}

// New creates a machine showing the window around the data bounds.
func New(firstTS, lastTS int64) *Machine {
	m := &Machine{
		firstTS: firstTS,
		lastTS:  lastTS,
		TextH:   1,
	}
	m.vp = graph.Viewport{
		StartTS:  firstTS - graph.NsecPerMsec,
		LengthTS: lastTS - firstTS + 2*graph.NsecPerMsec,
	}
	m.vp.ClampLength()
	return m
}

// Viewport returns the current view state.
func (m *Machine) Viewport() graph.Viewport { return m.vp }

// State returns the current interaction state.
func (m *Machine) State() State { return m.state }

// SetBounds refreshes the data bounds used for clamping.
func (m *Machine) SetBounds(firstTS, lastTS int64) {
	m.firstTS, m.lastTS = firstTS, lastTS
	m.clamp()
}

// SetPopupOpen parks the machine while a popup owns the input; closing it
// returns to Idle.
func (m *Machine) SetPopupOpen(open bool) {
	if open {
		m.state = PopupOpen
	} else if m.state == PopupOpen {
		m.state = Idle
	}
}

// ZoomRow returns the focus-mode row name, "" when off.
func (m *Machine) ZoomRow() string { return m.zoomRow }

// ToggleZoomRow enters focus mode on a row, or leaves it when already
// focused. Hardware rows focus their parent pair: the " hw" suffix is
// trimmed so "gfx hw" zooms "gfx".
func (m *Machine) ToggleZoomRow(rowName string) {
	if m.zoomRow != "" {
		m.zoomRow = ""
		return
	}
	if after, ok := strings.CutSuffix(rowName, " hw"); ok {
		rowName = after
	}
	m.zoomRow = rowName
}

// Interaction assembles the per-frame interaction context for the render
// pass.
func (m *Machine) Interaction(tm graph.TimeMap, p Pointer) graph.Interaction {
	inter := graph.Interaction{
		CursorX:      p.X,
		CursorY:      p.Y,
		CursorIn:     p.In && m.state == Idle,
		MouseTS:      tm.XToTime(p.X),
		MarkerA:      m.markers[0],
		MarkerB:      m.markers[1],
		MarkerAValid: m.markerValid[0],
		MarkerBValid: m.markerValid[1],
		ZoomRow:      m.zoomRow,
	}
	if m.state == SelectingArea || m.state == ZoomDragging {
		inter.SelStart, inter.SelEnd = m.selStart, m.selEnd
	}
	return inter
}

// HandlePointer advances the state machine with one pointer sample.
// tm must be the time map the pointer coordinates were produced under.
func (m *Machine) HandlePointer(tm graph.TimeMap, p Pointer) {
	pressed := p.Primary && !m.prevPrimary
	released := !p.Primary && m.prevPrimary
	m.prevPrimary = p.Primary

	switch m.state {
	case PopupOpen:
		return

	case Idle:
		if pressed && p.In {
			m.capX, m.capY = p.X, p.Y
			switch {
			case p.Ctrl:
				m.state = SelectingArea
			case p.Shift:
				m.state = ZoomDragging
			default:
				m.state = Panning
			}
			m.updateSelection(tm, p)
			return
		}
		if p.Wheel != 0 && p.In {
			m.wheelZoom(tm, p)
		}

	case Panning:
		if p.Primary {
			dx := p.X - m.capX
			m.vp.StartTS -= tm.DxToDuration(dx)
			m.vp.ScrollY += p.Y - m.capY
			m.capX, m.capY = p.X, p.Y
			m.clamp()
		}
		if released {
			m.state = Idle
		}

	case SelectingArea:
		m.updateSelection(tm, p)
		if released {
			// Selection is informational only; no viewport change.
			m.state = Idle
		}

	case ZoomDragging:
		m.updateSelection(tm, p)
		if released {
			if m.selEnd > m.selStart {
				m.zoomLoc = Loc{m.vp.StartTS, m.vp.LengthTS}
				m.vp.StartTS = m.selStart
				m.vp.LengthTS = m.selEnd - m.selStart
				m.clamp()
			}
			m.state = Idle
		}
	}
}

// updateSelection tracks the ordered [ts0, ts1] band between the press
// position and the current position.
func (m *Machine) updateSelection(tm graph.TimeMap, p Pointer) {
	ts0 := tm.XToTime(m.capX)
	ts1 := tm.XToTime(p.X)
	if ts0 > ts1 {
		ts0, ts1 = ts1, ts0
	}
	m.selStart, m.selEnd = ts0, ts1
}

// Cancel aborts any active drag without a viewport change.
func (m *Machine) Cancel() {
	if m.state != PopupOpen {
		m.state = Idle
	}
}

// wheelZoom zooms symmetrically around the cursor's time position: the
// time under the cursor stays put.
func (m *Machine) wheelZoom(tm graph.TimeMap, p Pointer) {
	centerTS := tm.XToTime(p.X)
	m.zoomAround(centerTS, p.Wheel > 0, 0)
}

// zoomAround resizes the window, keeping centerTS at the same pixel.
// newLen == 0 means halve or grow-by-half per zoomIn.
func (m *Machine) zoomAround(centerTS int64, zoomIn bool, newLen int64) {
	origLen := m.vp.LengthTS
	if newLen == 0 {
		amt := origLen / 2
		if zoomIn {
			amt = -amt
		}
		newLen = origLen + amt
	}
	if newLen < graph.MinWindowLen {
		newLen = graph.MinWindowLen
	} else if newLen > graph.MaxWindowLen {
		newLen = graph.MaxWindowLen
	}
	if newLen == origLen {
		return
	}

	scale := float64(newLen) / float64(origLen)
	m.vp.StartTS = centerTS - int64(math.Trunc(float64(centerTS-m.vp.StartTS)*scale))
	m.vp.LengthTS = newLen
	m.clamp()
}

// HandleKey processes one navigation key press. visibleH is the viewport
// pixel height, used to clamp vertical scrolling against the content.
func (m *Machine) HandleKey(key Key, mods Mods, cursorTS int64, visibleH, contentH float64) {
	switch key {
	case KeyEscape:
		m.Cancel()
		return
	case KeyUp:
		m.vp.ScrollY += m.TextH * scrollRows
	case KeyDown:
		m.vp.ScrollY -= m.TextH * scrollRows
	case KeyLeft:
		start := m.vp.StartTS - int64(scrollFraction)*m.vp.LengthTS/10
		m.vp.StartTS = max(start, m.firstTS-endSlack)
	case KeyRight:
		start := m.vp.StartTS + int64(scrollFraction)*m.vp.LengthTS/10
		m.vp.StartTS = min(start, m.lastTS-m.vp.LengthTS+endSlack)
	case KeyHome:
		m.vp.StartTS = m.firstTS - endSlack
	case KeyEnd:
		m.vp.StartTS = m.lastTS - m.vp.LengthTS + endSlack
	case KeyZoomToggle:
		m.zoomToggle(cursorTS)
	case KeyMarkerA, KeyMarkerB:
		m.handleMarker(key, mods, cursorTS)
	default:
		if key >= KeySlot1 && key <= KeySlot9 {
			m.handleSlot(int(key-KeySlot1), mods)
		}
	}

	m.clamp()
	m.clampScroll(visibleH, contentH)
}

// zoomToggle restores the stored pre-zoom view if there is one, otherwise
// captures the current view and jumps to a short window at the cursor.
func (m *Machine) zoomToggle(cursorTS int64) {
	if m.zoomLoc.Valid() {
		m.vp.StartTS = m.zoomLoc.StartTS
		m.vp.LengthTS = m.zoomLoc.LengthTS
		m.zoomLoc = Loc{}
		return
	}
	m.zoomLoc = Loc{m.vp.StartTS, m.vp.LengthTS}
	m.zoomAround(cursorTS, false, zoomToggleLen)
}

func (m *Machine) handleMarker(key Key, mods Mods, cursorTS int64) {
	idx := 0
	if key == KeyMarkerB {
		idx = 1
	}
	if mods.Shift {
		m.markers[idx] = cursorTS
		m.markerValid[idx] = true
	} else if m.markerValid[idx] {
		m.vp.StartTS = m.markers[idx] - m.vp.LengthTS/2
	}
}

// handleSlot saves (shift) or restores a numbered location. Save and
// restore are explicit; slots are never evicted automatically.
func (m *Machine) handleSlot(idx int, mods Mods) {
	if mods.Shift {
		m.saved[idx] = Loc{m.vp.StartTS, m.vp.LengthTS}
		return
	}
	if m.saved[idx].Valid() {
		m.vp.StartTS = m.saved[idx].StartTS
		m.vp.LengthTS = m.saved[idx].LengthTS
	}
}

// SavedLoc returns a numbered slot (0-based).
func (m *Machine) SavedLoc(idx int) Loc {
	if idx < 0 || idx >= savedSlots {
		return Loc{}
	}
	return m.saved[idx]
}

// Marker returns marker idx (0 = A, 1 = B) and whether it is set.
func (m *Machine) Marker(idx int) (int64, bool) {
	if idx < 0 || idx > 1 {
		return 0, false
	}
	return m.markers[idx], m.markerValid[idx]
}

func (m *Machine) clamp() {
	m.vp.ClampLength()
	m.vp.ClampStart(m.firstTS, m.lastTS)
}

// clampScroll keeps row content from scrolling past its top or beyond the
// visible height.
func (m *Machine) clampScroll(visibleH, contentH float64) {
	low := visibleH - contentH
	if low > 0 {
		low = 0
	}
	if m.vp.ScrollY < low {
		m.vp.ScrollY = low
	}
	if m.vp.ScrollY > 0 {
		m.vp.ScrollY = 0
	}
}
