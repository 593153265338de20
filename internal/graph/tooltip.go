package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Dicklesworthstone/gpuscope/internal/trace"
)

// SetHoveredJob marks a job reported as hovered by a collaborator (for
// example a selected event-list row): it resolves through the event's
// context key to the job's completion so the timeline renderers draw its
// selection rect.
func (f *Frame) SetHoveredJob(id trace.EventID) {
	if !trace.IsValidID(id) || int(id) >= f.Store.Len() {
		return
	}
	ev := f.Store.Event(id)
	if !ev.IsTimeline() {
		return
	}
	locs := f.Store.ContextLocs(ev.ContextKey())
	if len(locs) > 0 {
		f.HoveredComplete = locs[len(locs)-1]
	}
}

// Tooltip assembles the nearest-event summary for the input collaborator
// to display: the cursor time, marker deltas, the hovered candidates
// sorted by id and, for a hovered timeline bar, its full stage chain.
func (f *Frame) Tooltip() string {
	if !f.Inter.CursorIn {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Time: %s", TimeString(f.Inter.MouseTS))

	if f.Inter.MarkerAValid {
		fmt.Fprintf(&b, "\nMarker A: %.3fms", float64(f.Inter.MarkerA-f.Inter.MouseTS)/float64(NsecPerMsec))
	}
	if f.Inter.MarkerBValid {
		fmt.Fprintf(&b, "\nMarker B: %.3fms", float64(f.Inter.MarkerB-f.Inter.MouseTS)/float64(NsecPerMsec))
	}

	if items := f.Hover.Items(); len(items) > 0 {
		sorted := make([]HoverCandidate, len(items))
		copy(sorted, items)
		sort.Slice(sorted, func(a, b int) bool { return sorted[a].ID < sorted[b].ID })

		b.WriteString("\n")
		for _, hov := range sorted {
			sign := " "
			if hov.Before {
				sign = "-"
			}
			ev := f.Store.Event(hov.ID)
			fmt.Fprintf(&b, "\n%d %s%.4fms", hov.ID, sign, float64(hov.DistTS)/float64(NsecPerMsec))
			if ev.Class != trace.ClassPrint {
				fmt.Fprintf(&b, " %s", ev.Name)
			}
			if buf := ev.Field("buf"); ev.Class == trace.ClassPrint && buf != "" {
				fmt.Fprintf(&b, " %s", buf)
			}
		}
	}

	if trace.IsValidID(f.HoveredComplete) {
		complete := f.Store.Event(f.HoveredComplete)
		fmt.Fprintf(&b, "\n\n%s", complete.Actor)
		for _, id := range f.Store.ContextLocs(complete.ContextKey()) {
			ev := f.Store.Event(id)
			fmt.Fprintf(&b, "\n  %d %s duration: %.4fms",
				ev.ID, ev.Name, float64(ev.Duration)/float64(NsecPerMsec))
		}
	}

	return b.String()
}
