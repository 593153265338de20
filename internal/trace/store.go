package trace

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// Store is the immutable event store: a time-sorted event array plus the
// secondary indices derived from it once at load. It is read-only during
// rendering; there is never a writer concurrent with readers.
type Store struct {
	events []Event

	// rowLocs maps a row name to the ordered event ids belonging to it.
	rowLocs map[string][]EventID
	// ctxLocs maps a job context key to all events of that job, across
	// rows and stages.
	ctxLocs map[string][]EventID

	// rowNames lists every row name the events produced, in first-seen
	// order, so layout can enumerate rows without rescanning the store.
	rowNames []string
}

// NewStore builds a store from parsed events. Events must arrive
// time-sorted with ties broken by id; ids are reassigned to array
// positions so lookups stay O(1).
func NewStore(events []Event) (*Store, error) {
	for i := 1; i < len(events); i++ {
		if events[i].TS < events[i-1].TS {
			return nil, fmt.Errorf("event %d out of order: ts %d after %d", i, events[i].TS, events[i-1].TS)
		}
	}

	s := &Store{
		events:  events,
		rowLocs: make(map[string][]EventID),
		ctxLocs: make(map[string][]EventID),
	}

	for i := range s.events {
		ev := &s.events[i]
		ev.ID = EventID(i)

		if key := ev.ContextKey(); key != "" {
			s.ctxLocs[key] = append(s.ctxLocs[key], ev.ID)
		}

		for _, row := range rowNamesFor(ev) {
			if _, seen := s.rowLocs[row]; !seen {
				s.rowNames = append(s.rowNames, row)
			}
			s.rowLocs[row] = append(s.rowLocs[row], ev.ID)
		}
	}

	slog.Debug("trace store built",
		"events", len(s.events),
		"rows", len(s.rowLocs),
		"contexts", len(s.ctxLocs))
	return s, nil
}

// rowNamesFor decides which row location lists an event lands in. Timeline
// completions are indexed twice: once in the timeline row proper and once
// in its paired " hw" row, which renders only the hardware-running segment.
func rowNamesFor(ev *Event) []string {
	switch ev.Class {
	case ClassPrint:
		return []string{"print"}
	case ClassTimelineSubmit, ClassTimelineRun:
		if tl := ev.Field("timeline"); tl != "" {
			return []string{tl}
		}
	case ClassTimelineComplete:
		if tl := ev.Field("timeline"); tl != "" {
			return []string{tl, tl + " hw"}
		}
	}
	if ev.Actor != "" {
		return []string{ev.Actor}
	}
	return nil
}

// Len returns the number of events in the store.
func (s *Store) Len() int { return len(s.events) }

// Event returns the event for id. The pointer is valid for the store's
// lifetime; callers must not mutate through it.
func (s *Store) Event(id EventID) *Event {
	return &s.events[id]
}

// FirstTS returns the first event's timestamp, or 0 for an empty store.
func (s *Store) FirstTS() int64 {
	if len(s.events) == 0 {
		return 0
	}
	return s.events[0].TS
}

// LastTS returns the last event's timestamp, or 0 for an empty store.
func (s *Store) LastTS() int64 {
	if len(s.events) == 0 {
		return 0
	}
	return s.events[len(s.events)-1].TS
}

// IDAtOrAfter returns the id of the first event with timestamp >= ts, or
// Len() when every event is earlier. Binary search over the sorted array.
func (s *Store) IDAtOrAfter(ts int64) EventID {
	idx := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].TS >= ts
	})
	return EventID(idx)
}

// RowNames returns the row names discovered at load, in first-seen order.
func (s *Store) RowNames() []string {
	return s.rowNames
}

// RowLocs returns the ordered event ids for a named row, or nil when the
// row is unknown.
func (s *Store) RowLocs(name string) []EventID {
	return s.rowLocs[name]
}

// ContextLocs returns every event id sharing one job context key, in time
// order, or nil when the key is unknown.
func (s *Store) ContextLocs(key string) []EventID {
	return s.ctxLocs[key]
}

// ErrNoMatches reports a well-formed filter that selected nothing. It is
// distinct from a syntax error so callers can say "no events found" rather
// than point at the expression.
var ErrNoMatches = errors.New("no events matched filter")

// FilterLocs evaluates a filter expression over every event and returns
// the ordered matching ids. A malformed expression returns a *SyntaxError;
// a well-formed one with no matches returns ErrNoMatches.
func (s *Store) FilterLocs(expr string) ([]EventID, error) {
	pred, err := ParseFilter(expr)
	if err != nil {
		return nil, err
	}

	var locs []EventID
	for i := range s.events {
		if pred.Match(&s.events[i]) {
			locs = append(locs, EventID(i))
		}
	}
	if len(locs) == 0 {
		return nil, ErrNoMatches
	}
	return locs, nil
}

// LocsAtOrAfter returns the index of the first id in locs whose event
// timestamp is >= ts. locs must be ascending by id, which implies
// ascending by time.
func (s *Store) LocsAtOrAfter(locs []EventID, ts int64) int {
	return sort.Search(len(locs), func(i int) bool {
		return s.events[locs[i]].TS >= ts
	})
}
