package graph

import "math"

// ColorID is a semantic color category. The engine never picks pixels;
// the rendering collaborator translates categories into a palette.
type ColorID uint8

const (
	ColorBackground ColorID = iota
	// Graph1Event..Graph6Event encode how many coalesced marks a rect
	// covers; six-or-more saturates.
	ColorGraph1Event
	ColorGraph2Event
	ColorGraph3Event
	ColorGraph4Event
	ColorGraph5Event
	ColorGraph6Event
	ColorBarUserspace
	ColorBarHwQueue
	ColorBarHwRunning
	ColorBarSelRect
	ColorBarText
	ColorPrintTick
	ColorPlotLine
	ColorPlotPoint
	ColorTimeTick
	ColorMarkerA
	ColorMarkerB
	ColorMouseCursor
	ColorSelPreview
	ColorRowLabel
)

// Op is the draw primitive kind.
type Op uint8

const (
	// OpRect fills the rectangle (X, Y, W, H).
	OpRect Op = iota
	// OpTick draws a 1px vertical line at X covering (Y, H).
	OpTick
	// OpLine draws a segment from (X, Y) to (X+W, Y+H).
	OpLine
	// OpLabel places Text at (X, Y).
	OpLabel
)

// DrawCmd is one geometry instruction handed to the renderer.
type DrawCmd struct {
	Op    Op
	X, Y  float64
	W, H  float64
	Color ColorID
	Text  string
}

// markRun coalesces adjacent event marks into one rect whose color
// encodes the run length, so dense bursts stay legible at any zoom.
type markRun struct {
	y, h  float64
	x0    float64
	x1    float64
	count int
}

func newMarkRun(y, h float64) *markRun {
	return &markRun{y: y, h: h, x0: -1}
}

// add feeds the next mark position; marks must arrive in ascending x.
// Marks within a pixel of the current run extend it, anything further
// flushes the run first.
func (r *markRun) add(cmds []DrawCmd, x float64) []DrawCmd {
	if r.x0 < 0 {
		r.start(x)
		return cmds
	}
	if x-r.x1 <= 1.0 {
		r.x1 = x
		r.count++
		return cmds
	}
	cmds = r.flush(cmds)
	r.start(x)
	return cmds
}

func (r *markRun) start(x float64) {
	r.x0 = x
	r.x1 = x + 0.0001
	r.count = 0
}

func (r *markRun) done(cmds []DrawCmd) []DrawCmd {
	if r.x0 >= 0 {
		cmds = r.flush(cmds)
		r.x0 = -1
	}
	return cmds
}

func (r *markRun) flush(cmds []DrawCmd) []DrawCmd {
	color := ColorGraph1Event + ColorID(min(r.count, 5))
	minWidth := math.Min(float64(r.count)+1.0, 4.0)
	width := math.Max(r.x1-r.x0, minWidth)
	return append(cmds, DrawCmd{Op: OpRect, X: r.x0, Y: r.y, W: width, H: r.h, Color: color})
}
