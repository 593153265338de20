// Package graph is the timeline graph engine: it lays out named rows,
// maps trace time onto viewport pixels, reconstructs multi-stage job
// lifespans from back-references, resolves cursor proximity against the
// visible events, and emits draw commands for a renderer to rasterize.
// It computes geometry only; it never draws.
package graph

// Nanosecond multiples used throughout the engine.
const (
	NsecPerUsec int64 = 1000
	NsecPerMsec int64 = 1000 * 1000
	NsecPerSec  int64 = 1000 * 1000 * 1000
)

// Visible window length clamp bounds.
const (
	MinWindowLen = 50 * NsecPerUsec
	MaxWindowLen = 175 * NsecPerSec
)

// Viewport is the persistent view state: the visible time window and the
// vertical row scroll. The navigation state machine is its only mutator.
type Viewport struct {
	StartTS  int64 // trace time at the left edge
	LengthTS int64 // visible window length, clamped to [MinWindowLen, MaxWindowLen]
	ScrollY  float64
}

// EndTS returns the trace time at the right edge.
func (v Viewport) EndTS() int64 { return v.StartTS + v.LengthTS }

// ClampLength forces LengthTS into its configured bounds.
func (v *Viewport) ClampLength() {
	if v.LengthTS < MinWindowLen {
		v.LengthTS = MinWindowLen
	} else if v.LengthTS > MaxWindowLen {
		v.LengthTS = MaxWindowLen
	}
}

// ClampStart keeps StartTS inside [first-1ms, last] so the per-frame
// event-index bounds derived from it stay sane. Out-of-range values are
// clamped, never reported.
func (v *Viewport) ClampStart(firstTS, lastTS int64) {
	if v.StartTS < firstTS-NsecPerMsec {
		v.StartTS = firstTS - NsecPerMsec
	} else if v.StartTS > lastTS {
		v.StartTS = lastTS
	}
}

// TimeMap converts between trace time and horizontal pixels for one frame.
// The denominator is length+1: it guards the degenerate zero-length window
// and keeps the last in-window timestamp off the W boundary so the final
// pixel column stays inclusive.
type TimeMap struct {
	W     float64
	TS0   int64
	tsdx  int64
	rcpdx float64
}

// NewTimeMap builds a mapping for a pixel width and visible window.
func NewTimeMap(w float64, startTS, lengthTS int64) TimeMap {
	tsdx := lengthTS + 1
	return TimeMap{W: w, TS0: startTS, tsdx: tsdx, rcpdx: 1.0 / float64(tsdx)}
}

// TimeToX maps a trace time to a viewport-local x coordinate.
func (m TimeMap) TimeToX(ts int64) float64 {
	return m.W * float64(ts-m.TS0) * m.rcpdx
}

// XToTime maps a viewport-local x coordinate back to trace time,
// truncated to whole nanoseconds. Each call recomputes from the canonical
// window, so repeated conversions do not compound rounding error.
func (m TimeMap) XToTime(x float64) int64 {
	return m.TS0 + int64(x/m.W*float64(m.tsdx))
}

// DxToDuration converts a pixel distance to a trace-time delta without an
// absolute position. Used for hover radii and pan deltas.
func (m TimeMap) DxToDuration(dx float64) int64 {
	return int64(dx / m.W * float64(m.tsdx))
}
