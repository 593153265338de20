package graph

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Dicklesworthstone/gpuscope/internal/config"
	"github.com/Dicklesworthstone/gpuscope/internal/trace"
)

// RowKind selects the rendering behavior of a row. The set is closed;
// the row renderer dispatches on it with one switch.
type RowKind uint8

const (
	RowEventMarks RowKind = iota
	RowTimeline
	RowHardwareTimeline
	RowPrint
	RowPlot
	RowUnresolved
)

func (k RowKind) String() string {
	switch k {
	case RowEventMarks:
		return "events"
	case RowTimeline:
		return "timeline"
	case RowHardwareTimeline:
		return "timeline-hw"
	case RowPrint:
		return "print"
	case RowPlot:
		return "plot"
	}
	return "unresolved"
}

// RowSpec is one entry of the user-ordered row list: either a raw row name
// known to the store, a saved filter expression, or a synthetic plot.
type RowSpec struct {
	Name    string `yaml:"name"`
	Filter  string `yaml:"filter,omitempty"`
	Capture string `yaml:"capture,omitempty"` // plot value source, e.g. "$duration"
	Hidden  bool   `yaml:"hidden,omitempty"`
}

type rowListFile struct {
	Rows []RowSpec `yaml:"rows"`
}

// LoadRowList reads a YAML row-list file.
func LoadRowList(path string) ([]RowSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f rowListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse row list %s: %w", path, err)
	}
	return f.Rows, nil
}

// HideRow hides the named row from subsequent layouts. Unknown names are
// a no-op.
func HideRow(specs []RowSpec, name string) {
	for i := range specs {
		if specs[i].Name == name {
			specs[i].Hidden = true
			return
		}
	}
}

// HideRowAndBelow hides the named row and every row after it in list
// order.
func HideRowAndBelow(specs []RowSpec, name string) {
	for i := range specs {
		if specs[i].Name == name {
			for ; i < len(specs); i++ {
				specs[i].Hidden = true
			}
			return
		}
	}
}

// ShowAllRows clears every hidden flag.
func ShowAllRows(specs []RowSpec) {
	for i := range specs {
		specs[i].Hidden = false
	}
}

// DefaultRowList derives a row list straight from the store's discovered
// rows: timelines first, then the print row, then per-actor rows.
func DefaultRowList(store *trace.Store) []RowSpec {
	var timelines, others []RowSpec
	for _, name := range store.RowNames() {
		spec := RowSpec{Name: name}
		locs := store.RowLocs(name)
		if len(locs) > 0 && store.Event(locs[0]).IsTimeline() {
			timelines = append(timelines, spec)
		} else {
			others = append(others, spec)
		}
	}
	return append(timelines, others...)
}

// Row is one concrete vertical band of the frame, rebuilt every render
// pass from a RowSpec. Cheap to discard, never mutated during rendering.
type Row struct {
	Name  string
	Kind  RowKind
	Order int
	Y     float64
	H     float64
	Locs  []trace.EventID

	// Plot rows only: running value range and sample count.
	MinVal float64
	MaxVal float64
	Count  int

	// FilterErr carries a row-creating filter failure so the UI can show
	// it next to the (empty) row; other rows keep functioning.
	FilterErr error

	plot *Plot
}

// Layout is the per-frame row table with computed heights and offsets.
type Layout struct {
	Rows []Row

	TextH  float64 // one text line, the base height unit
	RowH   float64 // one base row: two text lines plus padding
	Pad    float64
	TotalH float64 // sum of row heights plus padding, floored at 4 base rows
}

// kindForSpec classifies a row spec against the store.
func kindForSpec(store *trace.Store, spec RowSpec) RowKind {
	switch {
	case strings.HasPrefix(spec.Name, "plot:"):
		return RowPlot
	case spec.Name == "print":
		return RowPrint
	case spec.Filter != "":
		return RowEventMarks
	}
	locs := store.RowLocs(spec.Name)
	if len(locs) == 0 {
		return RowUnresolved
	}
	if strings.HasSuffix(spec.Name, " hw") {
		return RowHardwareTimeline
	}
	if store.Event(locs[0]).IsTimeline() {
		return RowTimeline
	}
	return RowEventMarks
}

// BuildLayout turns the user-ordered row list into concrete rows with
// heights and vertical offsets. Hidden rows are skipped; rows with no
// matching events still get a descriptor and render nothing. It never
// mutates the store.
func BuildLayout(store *trace.Store, specs []RowSpec, opts *config.Options, textH float64) *Layout {
	pad := textH / 4
	l := &Layout{
		TextH: textH,
		RowH:  textH*2 + pad,
		Pad:   pad,
	}

	y := pad
	order := 0
	for _, spec := range specs {
		if spec.Hidden {
			continue
		}

		row := Row{
			Name:  spec.Name,
			Kind:  kindForSpec(store, spec),
			Order: order,
			Y:     y,
			H:     textH * 2,
		}

		switch row.Kind {
		case RowEventMarks:
			if spec.Filter != "" {
				locs, err := store.FilterLocs(spec.Filter)
				if err != nil {
					row.FilterErr = err
				}
				row.Locs = locs
			} else {
				row.Locs = store.RowLocs(spec.Name)
			}
		case RowPlot:
			plot, err := NewPlot(store, spec.Name, spec.Filter, spec.Capture)
			if err != nil {
				row.FilterErr = err
			} else {
				row.plot = plot
				row.Locs = plot.Locs
				row.MinVal, row.MaxVal = plot.MinVal, plot.MaxVal
				row.Count = len(plot.Points)
			}
			row.H = float64(opts.RowSize(spec.Name)) * textH
		case RowTimeline, RowPrint:
			row.Locs = store.RowLocs(spec.Name)
			row.H = float64(opts.RowSize(spec.Name)) * textH
		case RowHardwareTimeline:
			row.Locs = store.RowLocs(spec.Name)
		}

		order++
		y += row.H + pad
		l.Rows = append(l.Rows, row)
	}

	l.TotalH = y
	if floor := 4 * l.RowH; l.TotalH < floor {
		l.TotalH = floor
	}
	return l
}

// FindRow returns the row with the given name, or nil.
func (l *Layout) FindRow(name string) *Row {
	for i := range l.Rows {
		if l.Rows[i].Name == name {
			return &l.Rows[i]
		}
	}
	return nil
}
