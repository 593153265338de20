package graph

import (
	"fmt"
	"math"
	"strings"

	"github.com/Dicklesworthstone/gpuscope/internal/trace"
)

// Render runs one full render pass: rows (event rows first, timeline rows
// on top of them), then the frame-level overlays. The result accumulates
// in f.Cmds; the caller rasterizes it.
func (f *Frame) Render(scrollY float64) {
	f.rect(0, f.W, 0, f.H, ColorBackground)

	if f.Inter.ZoomRow != "" {
		if row := f.Layout.FindRow(f.Inter.ZoomRow); row != nil {
			f.renderZoomedRow(row)
			f.renderOverlays()
			return
		}
	}

	// Two passes: timeline bars draw over the marks of overlapping rows.
	for pass := 0; pass < 2; pass++ {
		for i := range f.Layout.Rows {
			row := &f.Layout.Rows[i]
			if (row.Kind == RowTimeline) != (pass == 1) {
				continue
			}
			f.renderRow(row, row.Y+scrollY, row.H)
		}
	}

	f.renderOverlays()
}

// renderZoomedRow draws a single focused row at full height, with its
// paired hardware row pinned to the bottom when present.
func (f *Frame) renderZoomedRow(row *Row) {
	h := f.H
	if hw := f.Layout.FindRow(row.Name + " hw"); hw != nil {
		hwH := 2 * f.Layout.TextH
		f.renderRow(hw, f.H-hwH, hwH)
		h -= hwH + f.Layout.Pad
	}
	f.renderRow(row, 0, h)
}

// renderRow dispatches on the row kind. The kind set is closed, so one
// switch replaces per-row callbacks.
func (f *Frame) renderRow(row *Row, y, h float64) {
	if len(row.Locs) == 0 {
		return
	}
	switch row.Kind {
	case RowEventMarks, RowUnresolved:
		f.renderEventMarks(row, y, h)
	case RowTimeline:
		f.renderTimeline(row, y, h)
	case RowHardwareTimeline:
		f.renderHardwareTimeline(row, y, h)
	case RowPrint:
		f.renderPrint(row, y, h)
	case RowPlot:
		f.renderPlot(row, y, h)
	}
	f.label(0, y, row.Name, ColorRowLabel)
}

// renderEventMarks draws instantaneous events as coalesced tick marks.
func (f *Frame) renderEventMarks(row *Row, y, h float64) {
	run := newMarkRun(y+1, h-2)
	hovering := f.cursorInBand(y, h)

	for idx := f.Store.LocsAtOrAfter(row.Locs, f.TS0); idx < len(row.Locs); idx++ {
		id := row.Locs[idx]
		if id > f.EventEnd {
			break
		}
		if f.filteredOut(id) {
			continue
		}
		x := f.Map.TimeToX(f.Store.Event(id).TS)
		if hovering {
			f.offerHover(x, id)
		}
		f.Cmds = run.add(f.Cmds, x)
	}
	f.Cmds = run.done(f.Cmds)
}

// renderTimeline draws submit/queue/run bars for every job completing in
// the window, wrapped across lanes by the job's row slot.
func (f *Frame) renderTimeline(row *Row, y, h float64) {
	textH := f.Layout.TextH
	laneCount := int(h / textH)
	if laneCount < 1 {
		laneCount = 1
	}

	var hovRect *[4]float64
	for idx := f.Store.LocsAtOrAfter(row.Locs, f.TS0); idx < len(row.Locs); idx++ {
		complete := f.Store.Event(row.Locs[idx])
		chain, ok := Correlate(f.Store, complete.ID)
		if !ok {
			continue
		}
		if chain.SubmitTS >= f.TS1 {
			continue
		}

		laneY := y + float64(int(complete.RowID)%laneCount)*textH
		xSubmit := f.Map.TimeToX(chain.SubmitTS)
		xRunStart := f.Map.TimeToX(chain.RunStartTS)
		xRunEnd := f.Map.TimeToX(chain.RunEndTS)
		xEnd := f.Map.TimeToX(chain.EndTS)

		xLeft := xRunStart
		if f.Opts.RenderUserspaceSegment {
			xLeft = xSubmit
		}

		hovered := f.HoveredComplete == complete.ID ||
			f.cursorInRect(xLeft, xEnd-xLeft, laneY, textH)
		if hovered {
			hovRect = &[4]float64{xSubmit, laneY, xEnd, laneY + textH}
			if !trace.IsValidID(f.HoveredComplete) {
				f.HoveredComplete = complete.ID
			}
		}

		if hovered || f.Opts.RenderUserspaceSegment {
			f.rect(xSubmit, xRunStart-xSubmit, laneY, textH, ColorBarUserspace)
		}
		if xRunEnd != xRunStart {
			f.rect(xRunStart, xRunEnd-xRunStart, laneY, textH, ColorBarHwQueue)
		}
		f.rect(xRunEnd, xEnd-xRunEnd, laneY, textH, ColorBarHwRunning)

		if f.Opts.ShowTimelineTextLabels {
			actor := f.Store.Event(chain.Run).Actor
			xText := math.Max(xRunStart, 0) + 1
			if xEnd-xText >= f.MeasureText(actor) {
				f.label(xText, laneY, actor, ColorBarText)
			}
		}

		if f.Opts.ShowTimelineEventTicks {
			if chain.HasSubmit() {
				f.tick(xSubmit, laneY, textH, ColorGraph1Event)
				if f.cursorInBand(laneY, textH) {
					if f.offerHover(xSubmit, chain.Submit) && hovRect == nil {
						hovRect = &[4]float64{xSubmit, laneY, xEnd, laneY + textH}
					}
				}
			}
			f.tick(xRunStart, laneY, textH, ColorGraph1Event)
			f.tick(xEnd, laneY, textH, ColorGraph1Event)
		}
	}

	if hovRect != nil {
		f.rect(hovRect[0], hovRect[2]-hovRect[0], hovRect[1], hovRect[3]-hovRect[1], ColorBarSelRect)
	}
}

// renderHardwareTimeline draws only the hardware-running segment of each
// job, full row height, with a separator when two same-queue jobs abut.
func (f *Frame) renderHardwareTimeline(row *Row, y, h float64) {
	var lastEnd float64 = math.Inf(-1)
	var hovRect *[4]float64

	for idx := f.Store.LocsAtOrAfter(row.Locs, f.TS0); idx < len(row.Locs); idx++ {
		complete := f.Store.Event(row.Locs[idx])
		if complete.Class != trace.ClassTimelineComplete {
			continue
		}
		runStart := complete.TS - complete.Duration
		if runStart >= f.TS1 {
			continue
		}
		x0 := f.Map.TimeToX(runStart)
		x1 := f.Map.TimeToX(complete.TS)

		f.rect(x0, x1-x0, y, h, ColorBarHwRunning)

		label := complete.Actor
		if f.MeasureText(label)+1 >= x1-x0 {
			// No room for the full label; fall back to the pid suffix.
			if i := strings.LastIndexByte(label, '-'); i >= 0 {
				label = label[i+1:]
			}
		}
		if f.MeasureText(label)+1 < x1-x0 {
			f.label(x0+1, y, label, ColorBarText)
		}

		// Back-to-back jobs get a separator tick.
		if x0-lastEnd < 1 {
			f.tick(x0, y, h, ColorGraph1Event)
		}
		lastEnd = x1

		if f.HoveredComplete == complete.ID || f.cursorInRect(x0, x1-x0, y, h) {
			hovRect = &[4]float64{x0, y, x1, y + h}
			if !trace.IsValidID(f.HoveredComplete) {
				f.HoveredComplete = complete.ID
			}
		}
	}

	if hovRect != nil {
		f.rect(hovRect[0], hovRect[2]-hovRect[0], hovRect[1], hovRect[3]-hovRect[1], ColorBarSelRect)
	}
}

// renderPrint draws wrapped instantaneous print events: a tick per event
// and its text when the gap to the next event on the lane fits it.
func (f *Frame) renderPrint(row *Row, y, h float64) {
	textH := f.Layout.TextH
	laneCount := int(h/textH) - 1
	if laneCount < 1 {
		laneCount = 1
	}

	type laneState struct {
		x    float64
		text string
		used bool
	}
	lanes := make([]laneState, laneCount+1)

	for idx := f.Store.LocsAtOrAfter(row.Locs, f.TS0); idx < len(row.Locs); idx++ {
		id := row.Locs[idx]
		if id > f.EventEnd {
			break
		}
		if f.filteredOut(id) {
			continue
		}
		ev := f.Store.Event(id)
		lane := 0
		if ev.RowID != 0 {
			lane = int(ev.RowID)%laneCount + 1
		}
		x := f.Map.TimeToX(ev.TS)
		laneY := y + float64(lane)*textH

		// Flush the previous label on this lane if there is room for it.
		if prev := &lanes[lane]; prev.used {
			if x-prev.x-1 > f.MeasureText(prev.text) {
				f.label(prev.x+1, laneY, prev.text, ColorBarText)
			}
		}

		f.tick(x, laneY, textH, ColorPrintTick)
		if f.cursorInBand(laneY, textH) {
			f.offerHover(x, id)
		}
		lanes[lane] = laneState{x: x, text: ev.Field("buf"), used: true}
	}

	for lane := range lanes {
		if lanes[lane].used && lanes[lane].text != "" {
			f.label(lanes[lane].x+1, y+float64(lane)*textH, lanes[lane].text, ColorBarText)
		}
	}
}

// renderPlot draws the plot polyline and points, rescaled to the values
// visible in the window.
func (f *Frame) renderPlot(row *Row, y, h float64) {
	if row.plot == nil || len(row.plot.Points) == 0 {
		return
	}
	plot := row.plot

	type pt struct{ x, v float64 }
	var pts []pt
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)

	for idx := plot.IndexAtOrBefore(f.TS0); idx < len(plot.Points); idx++ {
		p := plot.Points[idx]
		x := f.Map.TimeToX(p.TS)

		if x <= 0 {
			// Entering point: it alone seeds the visible range.
			minVal, maxVal = p.Value, p.Value
		} else {
			minVal = math.Min(minVal, p.Value)
			maxVal = math.Max(maxVal, p.Value)
		}
		pts = append(pts, pt{x: x, v: p.Value})

		if f.cursorInBand(y, h) {
			f.offerHover(x, p.ID)
		}
		if x >= f.W {
			break
		}
	}
	if len(pts) == 0 {
		return
	}

	row.MinVal, row.MaxVal = minVal, maxVal
	row.Count = len(pts)

	pad := 0.15 * (maxVal - minVal)
	if pad == 0 {
		pad = 1.0
	}
	minVal -= pad
	maxVal += pad
	scale := h / (maxVal - minVal)

	toY := func(v float64) float64 { return y + (maxVal-v)*scale }
	for i := 1; i < len(pts); i++ {
		f.line(pts[i-1].x, toY(pts[i-1].v), pts[i].x, toY(pts[i].v), ColorPlotLine)
	}
	for _, p := range pts {
		f.rect(p.x-0.5, 1, toY(p.v)-0.5, 1, ColorPlotPoint)
	}
}

// renderOverlays draws the frame-level furniture: time ticks, markers,
// the cursor line and the selection preview.
func (f *Frame) renderOverlays() {
	f.renderTimeTicks()

	if f.Inter.MarkerAValid {
		f.tick(f.Map.TimeToX(f.Inter.MarkerA), 0, f.H, ColorMarkerA)
	}
	if f.Inter.MarkerBValid {
		f.tick(f.Map.TimeToX(f.Inter.MarkerB), 0, f.H, ColorMarkerB)
	}

	if f.Inter.CursorIn {
		f.tick(f.Inter.CursorX, 0, f.H, ColorMouseCursor)
	}

	if f.Inter.SelEnd > f.Inter.SelStart {
		x0 := f.Map.TimeToX(f.Inter.SelStart)
		x1 := f.Map.TimeToX(f.Inter.SelEnd)
		f.rect(x0, x1-x0, 0, f.H, ColorSelPreview)
		caption := fmt.Sprintf("%s (%.3f ms)",
			TimeString(f.Inter.SelStart),
			float64(f.Inter.SelEnd-f.Inter.SelStart)/float64(NsecPerMsec))
		f.label(x0, 0, caption, ColorRowLabel)
	}
}

// renderTimeTicks draws millisecond ticks, switching to second ticks when
// more than a second is visible. The first tick starts one unit before
// the window so partial units at the left edge still show.
func (f *Frame) renderTimeTicks() {
	unit := NsecPerMsec
	if f.TS1-f.TS0 > NsecPerSec {
		unit = NsecPerSec
	}

	start := f.TS0/unit - 1
	if start < 0 {
		start = 0
	}
	dx := f.W * float64(unit) / float64(f.TS1-f.TS0+1)
	if dx < 4 {
		return // too dense to be useful
	}
	for ts := start * unit; ts <= f.TS1; ts += unit {
		x := f.Map.TimeToX(ts)
		if x < 0 {
			continue
		}
		f.tick(x, f.H-f.Layout.TextH/2, f.Layout.TextH/2, ColorTimeTick)
	}
}

// TimeString formats a trace timestamp as seconds with microsecond
// precision, the format used in captions and tooltips.
func TimeString(ts int64) string {
	neg := ""
	if ts < 0 {
		neg, ts = "-", -ts
	}
	return fmt.Sprintf("%s%d.%06d", neg, ts/NsecPerSec, (ts%NsecPerSec)/NsecPerUsec)
}
