package graph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/gpuscope/internal/trace"
)

// PlotPoint is one plot sample.
type PlotPoint struct {
	TS    int64
	ID    trace.EventID
	Value float64
}

// Plot is a synthetic value-over-time row built from a filter expression
// and a value capture. The capture is either "$duration" (event duration
// in milliseconds) or "field:prefix", which reads the first number after
// prefix in that field's value.
type Plot struct {
	Name    string
	Filter  string
	Capture string

	Points []PlotPoint
	Locs   []trace.EventID
	MinVal float64
	MaxVal float64
}

// NewPlot evaluates the filter and capture over the store. A filter
// syntax error propagates; a filter or capture matching nothing returns
// trace.ErrNoMatches so the caller can report "no plot data found".
func NewPlot(store *trace.Store, name, filter, capture string) (*Plot, error) {
	locs, err := store.FilterLocs(filter)
	if err != nil {
		return nil, err
	}

	p := &Plot{Name: name, Filter: filter, Capture: capture}
	for _, id := range locs {
		ev := store.Event(id)
		val, ok := captureValue(ev, capture)
		if !ok {
			continue
		}
		if len(p.Points) == 0 || val < p.MinVal {
			p.MinVal = val
		}
		if len(p.Points) == 0 || val > p.MaxVal {
			p.MaxVal = val
		}
		p.Points = append(p.Points, PlotPoint{TS: ev.TS, ID: id, Value: val})
		p.Locs = append(p.Locs, id)
	}
	if len(p.Points) == 0 {
		return nil, fmt.Errorf("plot %s: %w", name, trace.ErrNoMatches)
	}
	return p, nil
}

// captureValue extracts the plotted value from an event.
func captureValue(ev *trace.Event, capture string) (float64, bool) {
	if capture == "" || capture == "$duration" {
		return float64(ev.Duration) / float64(NsecPerMsec), true
	}

	field, prefix, ok := strings.Cut(capture, ":")
	if !ok {
		return 0, false
	}
	val := ev.Field(field)
	if prefix != "" {
		idx := strings.Index(val, prefix)
		if idx < 0 {
			return 0, false
		}
		val = val[idx+len(prefix):]
	}
	val = strings.TrimLeft(val, " =")
	end := 0
	for end < len(val) {
		c := val[end]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' {
			end++
			continue
		}
		break
	}
	f, err := strconv.ParseFloat(val[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IndexAtOrBefore returns the index of the last point at or before ts, so
// the polyline enters the window from the left. Returns 0 when every
// point is later.
func (p *Plot) IndexAtOrBefore(ts int64) int {
	idx := sort.Search(len(p.Points), func(i int) bool {
		return p.Points[i].TS >= ts
	})
	if idx > 0 {
		idx--
	}
	return idx
}
