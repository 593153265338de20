// Package trace holds the immutable event store built from a parsed GPU
// trace: the time-sorted event array, its secondary indices (per-row and
// per-context location lists), and the filter expression engine used to
// carve named event subsets out of it.
package trace

import (
	"fmt"
	"math"
)

// EventID is a dense 0-based index into the event array. An event's id is
// also its array position, so ids double as locations.
type EventID uint32

// InvalidID marks an absent event reference. 0 is a valid id, so the
// sentinel lives at the top of the range.
const InvalidID EventID = math.MaxUint32

// IsValidID reports whether id refers to a real event slot.
func IsValidID(id EventID) bool {
	return id != InvalidID
}

// Classification tags what lifecycle role an event plays. The set is
// closed; renderers dispatch on it with a single switch.
type Classification uint8

const (
	ClassGeneric Classification = iota
	ClassTimelineSubmit
	ClassTimelineRun
	ClassTimelineComplete
	ClassPrint
	ClassPlot
)

// String implements fmt.Stringer for log output.
func (c Classification) String() string {
	switch c {
	case ClassGeneric:
		return "generic"
	case ClassTimelineSubmit:
		return "submit"
	case ClassTimelineRun:
		return "run"
	case ClassTimelineComplete:
		return "complete"
	case ClassPrint:
		return "print"
	case ClassPlot:
		return "plot"
	}
	return fmt.Sprintf("classification(%d)", uint8(c))
}

// Field is one key/value pair of an event. Fields keep their trace order,
// which a map would lose.
type Field struct {
	Key   string
	Value string
}

// Event is one trace record. Events are immutable after load; everything
// downstream holds EventIDs, never pointers.
type Event struct {
	ID          EventID
	TS          int64 // nanoseconds, non-decreasing across the array
	Duration    int64 // nanoseconds, 0 if instantaneous
	Name        string
	Actor       string // owning process/thread label, e.g. "glxgears-1453"
	RowID       uint32 // lane slot for wrapped print/timeline rows, 0 otherwise
	Predecessor EventID
	Class       Classification
	Fields      []Field
}

// Field returns the value for key, or "" when the event has no such field.
func (e *Event) Field(key string) string {
	for i := range e.Fields {
		if e.Fields[i].Key == key {
			return e.Fields[i].Value
		}
	}
	return ""
}

// IsTimeline reports whether the event belongs to a hardware timeline
// lifecycle (submit, run or complete stage).
func (e *Event) IsTimeline() bool {
	switch e.Class {
	case ClassTimelineSubmit, ClassTimelineRun, ClassTimelineComplete:
		return true
	}
	return false
}

// ContextKey builds the composite job key (timeline name + numeric context
// + sequence number) used to regroup one job's events across rows. Events
// without timeline fields have no context and return "".
func (e *Event) ContextKey() string {
	timeline := e.Field("timeline")
	ctx := e.Field("context")
	seqno := e.Field("seqno")
	if timeline == "" || ctx == "" || seqno == "" {
		return ""
	}
	return timeline + "_" + ctx + "_" + seqno
}
