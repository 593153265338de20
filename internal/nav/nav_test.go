package nav

import (
	"math"
	"testing"

	"github.com/Dicklesworthstone/gpuscope/internal/graph"
)

const (
	firstTS = int64(10_000_000)
	lastTS  = int64(910_000_000)
)

func testMachine() *Machine {
	m := New(firstTS, lastTS)
	m.TextH = 10
	return m
}

func tmFor(m *Machine) graph.TimeMap {
	vp := m.Viewport()
	return graph.NewTimeMap(800, vp.StartTS, vp.LengthTS)
}

func TestNewClampsToBounds(t *testing.T) {
	m := testMachine()
	vp := m.Viewport()
	if vp.LengthTS < graph.MinWindowLen || vp.LengthTS > graph.MaxWindowLen {
		t.Errorf("initial length %d outside bounds", vp.LengthTS)
	}
}

func TestPanDragsWindow(t *testing.T) {
	m := testMachine()
	start := m.Viewport().StartTS

	tm := tmFor(m)
	m.HandlePointer(tm, Pointer{X: 400, Y: 100, In: true, Primary: true})
	if m.State() != Panning {
		t.Fatalf("state = %v, want Panning", m.State())
	}

	// Drag 100px to the left: the window moves right.
	m.HandlePointer(tm, Pointer{X: 300, Y: 100, In: true, Primary: true})
	moved := m.Viewport().StartTS
	if moved <= start {
		t.Errorf("start = %d after left drag, want > %d", moved, start)
	}

	m.HandlePointer(tm, Pointer{X: 300, Y: 100, In: true})
	if m.State() != Idle {
		t.Errorf("state = %v after release, want Idle", m.State())
	}
}

func TestEscapeCancelsDragWithoutViewportChange(t *testing.T) {
	m := testMachine()
	before := m.Viewport()

	tm := tmFor(m)
	m.HandlePointer(tm, Pointer{X: 100, In: true, Primary: true, Shift: true})
	if m.State() != ZoomDragging {
		t.Fatalf("state = %v, want ZoomDragging", m.State())
	}
	m.HandlePointer(tm, Pointer{X: 600, In: true, Primary: true, Shift: true})

	m.HandleKey(KeyEscape, Mods{}, 0, 600, 1000)
	if m.State() != Idle {
		t.Errorf("state = %v after escape, want Idle", m.State())
	}
	if got := m.Viewport(); got.StartTS != before.StartTS || got.LengthTS != before.LengthTS {
		t.Errorf("viewport changed by cancelled drag: %+v -> %+v", before, got)
	}
}

func TestZoomDragSetsWindowAndUndo(t *testing.T) {
	m := testMachine()
	before := m.Viewport()
	tm := tmFor(m)

	m.HandlePointer(tm, Pointer{X: 200, In: true, Primary: true, Shift: true})
	m.HandlePointer(tm, Pointer{X: 600, In: true, Primary: true, Shift: true})
	m.HandlePointer(tm, Pointer{X: 600, In: true}) // release

	wantStart := tm.XToTime(200)
	wantLen := tm.XToTime(600) - tm.XToTime(200)
	got := m.Viewport()
	if got.StartTS != wantStart || got.LengthTS != wantLen {
		t.Errorf("zoom drag window = (%d, %d), want (%d, %d)",
			got.StartTS, got.LengthTS, wantStart, wantLen)
	}

	// The zoom toggle restores the pre-drag view.
	m.HandleKey(KeyZoomToggle, Mods{}, 0, 600, 1000)
	got = m.Viewport()
	if got.StartTS != before.StartTS || got.LengthTS != before.LengthTS {
		t.Errorf("zoom undo = %+v, want %+v", got, before)
	}
}

func TestZoomDragReversedEndpoints(t *testing.T) {
	m := testMachine()
	tm := tmFor(m)

	// Drag right-to-left still yields ts0 <= ts1.
	m.HandlePointer(tm, Pointer{X: 600, In: true, Primary: true, Shift: true})
	m.HandlePointer(tm, Pointer{X: 200, In: true, Primary: true, Shift: true})
	m.HandlePointer(tm, Pointer{X: 200, In: true})

	if got := m.Viewport().LengthTS; got <= 0 {
		t.Errorf("reversed drag produced length %d", got)
	}
}

func TestSelectAreaLeavesViewportUnchanged(t *testing.T) {
	m := testMachine()
	before := m.Viewport()
	tm := tmFor(m)

	m.HandlePointer(tm, Pointer{X: 200, In: true, Primary: true, Ctrl: true})
	if m.State() != SelectingArea {
		t.Fatalf("state = %v, want SelectingArea", m.State())
	}
	m.HandlePointer(tm, Pointer{X: 600, In: true, Primary: true, Ctrl: true})

	inter := m.Interaction(tm, Pointer{X: 600, In: true, Primary: true})
	if inter.SelEnd <= inter.SelStart {
		t.Error("selection preview band not active during drag")
	}

	m.HandlePointer(tm, Pointer{X: 600, In: true})
	if got := m.Viewport(); got != before {
		t.Errorf("select-area changed viewport: %+v -> %+v", before, got)
	}
}

func TestWheelZoomKeepsCursorTimeFixed(t *testing.T) {
	m := testMachine()

	for _, wheel := range []int{1, -1, 1, 1, -1} {
		tm := tmFor(m)
		cursorX := 321.0
		cursorTS := tm.XToTime(cursorX)

		m.HandlePointer(tm, Pointer{X: cursorX, In: true, Wheel: wheel})

		vp := m.Viewport()
		after := graph.NewTimeMap(800, vp.StartTS, vp.LengthTS)
		if got := after.TimeToX(cursorTS); math.Abs(got-cursorX) > 1 {
			t.Fatalf("wheel %d moved cursor time from x=%f to x=%f", wheel, cursorX, got)
		}
	}
}

func TestWheelZoomClampsLength(t *testing.T) {
	m := testMachine()
	for i := 0; i < 60; i++ {
		tm := tmFor(m)
		m.HandlePointer(tm, Pointer{X: 400, In: true, Wheel: 1})
	}
	if got := m.Viewport().LengthTS; got != graph.MinWindowLen {
		t.Errorf("length after max zoom-in = %d, want %d", got, graph.MinWindowLen)
	}
}

func TestKeyboardScroll(t *testing.T) {
	m := testMachine()

	m.HandleKey(KeyHome, Mods{}, 0, 600, 1000)
	if got, want := m.Viewport().StartTS, firstTS-graph.NsecPerMsec; got != want {
		t.Errorf("home start = %d, want %d", got, want)
	}

	vp := m.Viewport()
	m.HandleKey(KeyRight, Mods{}, 0, 600, 1000)
	wantStart := min(vp.StartTS+9*vp.LengthTS/10, lastTS-vp.LengthTS+graph.NsecPerMsec)
	if got := m.Viewport().StartTS; got != wantStart {
		t.Errorf("right-arrow start = %d, want %d", got, wantStart)
	}

	m.HandleKey(KeyEnd, Mods{}, 0, 600, 1000)
	end := m.Viewport()
	if got, want := end.StartTS, lastTS-end.LengthTS+graph.NsecPerMsec; got != want {
		t.Errorf("end start = %d, want %d", got, want)
	}

	// Left past the data start clamps, never errors.
	for i := 0; i < 100; i++ {
		m.HandleKey(KeyLeft, Mods{}, 0, 600, 1000)
	}
	if got, want := m.Viewport().StartTS, firstTS-graph.NsecPerMsec; got != want {
		t.Errorf("left-arrow clamp = %d, want %d", got, want)
	}
}

func TestVerticalScrollClamps(t *testing.T) {
	m := testMachine()

	m.HandleKey(KeyDown, Mods{}, 0, 600, 1000)
	if got, want := m.Viewport().ScrollY, -40.0; got != want {
		t.Errorf("ScrollY after down = %f, want %f", got, want)
	}
	for i := 0; i < 100; i++ {
		m.HandleKey(KeyDown, Mods{}, 0, 600, 1000)
	}
	if got, want := m.Viewport().ScrollY, 600.0-1000.0; got != want {
		t.Errorf("ScrollY clamped to %f, want %f", got, want)
	}
	for i := 0; i < 100; i++ {
		m.HandleKey(KeyUp, Mods{}, 0, 600, 1000)
	}
	if got := m.Viewport().ScrollY; got != 0 {
		t.Errorf("ScrollY clamped to %f, want 0", got)
	}
}

func TestSavedLocations(t *testing.T) {
	m := testMachine()
	vp := m.Viewport()

	m.HandleKey(KeySlot3, Mods{Ctrl: true, Shift: true}, 0, 600, 1000)
	if got := m.SavedLoc(2); got.StartTS != vp.StartTS || got.LengthTS != vp.LengthTS {
		t.Fatalf("slot 3 = %+v, want current view", got)
	}

	m.HandleKey(KeyHome, Mods{}, 0, 600, 1000)
	m.HandleKey(KeySlot3, Mods{Ctrl: true}, 0, 600, 1000)
	if got := m.Viewport(); got.StartTS != vp.StartTS || got.LengthTS != vp.LengthTS {
		t.Errorf("slot 3 restore = %+v, want %+v", got, vp)
	}

	// Restoring an empty slot is a no-op.
	before := m.Viewport()
	m.HandleKey(KeySlot7, Mods{Ctrl: true}, 0, 600, 1000)
	if got := m.Viewport(); got != before {
		t.Errorf("empty slot restore changed view: %+v", got)
	}
}

func TestZoomToggle(t *testing.T) {
	m := testMachine()
	before := m.Viewport()
	cursorTS := before.StartTS + before.LengthTS/2

	// Nothing stored: captures the view and jumps to a 3ms window.
	m.HandleKey(KeyZoomToggle, Mods{}, cursorTS, 600, 1000)
	zoomed := m.Viewport()
	if zoomed.LengthTS != 3*graph.NsecPerMsec {
		t.Errorf("toggle window length = %d, want 3ms", zoomed.LengthTS)
	}

	// Toggling again restores and clears the slot.
	m.HandleKey(KeyZoomToggle, Mods{}, cursorTS, 600, 1000)
	if got := m.Viewport(); got.StartTS != before.StartTS || got.LengthTS != before.LengthTS {
		t.Errorf("toggle restore = %+v, want %+v", got, before)
	}

	// A third press captures again rather than restoring stale state.
	m.HandleKey(KeyZoomToggle, Mods{}, cursorTS, 600, 1000)
	if got := m.Viewport().LengthTS; got != 3*graph.NsecPerMsec {
		t.Errorf("third toggle length = %d, want 3ms", got)
	}
}

func TestMarkers(t *testing.T) {
	m := testMachine()
	cursorTS := firstTS + 490_000_000

	m.HandleKey(KeyMarkerA, Mods{Ctrl: true, Shift: true}, cursorTS, 600, 1000)
	if ts, ok := m.Marker(0); !ok || ts != cursorTS {
		t.Fatalf("marker A = (%d, %v), want (%d, true)", ts, ok, cursorTS)
	}
	if _, ok := m.Marker(1); ok {
		t.Error("marker B set unexpectedly")
	}

	// Goto centers the window on the marker.
	m.HandleKey(KeyEnd, Mods{}, 0, 600, 1000)
	m.HandleKey(KeyMarkerA, Mods{Ctrl: true}, 0, 600, 1000)
	vp := m.Viewport()
	if want := cursorTS - vp.LengthTS/2; vp.StartTS != want {
		t.Errorf("goto marker start = %d, want %d", vp.StartTS, want)
	}
}

func TestRowZoomToggle(t *testing.T) {
	m := testMachine()
	vp := m.Viewport()

	m.ToggleZoomRow("gfx hw")
	if got := m.ZoomRow(); got != "gfx" {
		t.Errorf("zoom row = %q, want gfx (hw suffix trimmed)", got)
	}
	if m.Viewport() != vp {
		t.Error("row zoom moved the viewport")
	}
	m.ToggleZoomRow("gfx")
	if got := m.ZoomRow(); got != "" {
		t.Errorf("zoom row after toggle-off = %q, want empty", got)
	}
}

func TestPopupBlocksPointer(t *testing.T) {
	m := testMachine()
	before := m.Viewport()

	m.SetPopupOpen(true)
	tm := tmFor(m)
	m.HandlePointer(tm, Pointer{X: 100, In: true, Primary: true})
	m.HandlePointer(tm, Pointer{X: 500, In: true, Primary: true})
	if m.State() != PopupOpen {
		t.Errorf("state = %v, want PopupOpen", m.State())
	}
	if m.Viewport() != before {
		t.Error("pointer moved viewport while popup open")
	}
	m.SetPopupOpen(false)
	if m.State() != Idle {
		t.Errorf("state = %v after popup close, want Idle", m.State())
	}
}
