package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"
)

// The on-disk trace format is JSON lines, one event per line:
//
//	{"ts":100,"dur":0,"name":"amdgpu_cs_ioctl","actor":"glxgears-1453",
//	 "class":"submit","pred":-1,"row_id":0,
//	 "fields":[["timeline","gfx"],["context","7"],["seqno","3145"]]}
//
// "pred" is the 0-based line index of the predecessor event, -1 or absent
// for none. Fields are an array of pairs so their order survives the trip
// through JSON.

type eventJSON struct {
	TS     int64       `json:"ts"`
	Dur    int64       `json:"dur"`
	Name   string      `json:"name"`
	Actor  string      `json:"actor"`
	Class  string      `json:"class"`
	Pred   *int64      `json:"pred"`
	RowID  uint32      `json:"row_id"`
	Fields [][2]string `json:"fields"`
}

func classFromString(s string) (Classification, error) {
	switch s {
	case "", "generic":
		return ClassGeneric, nil
	case "submit":
		return ClassTimelineSubmit, nil
	case "run":
		return ClassTimelineRun, nil
	case "complete":
		return ClassTimelineComplete, nil
	case "print":
		return ClassPrint, nil
	case "plot":
		return ClassPlot, nil
	}
	return ClassGeneric, fmt.Errorf("unknown event class %q", s)
}

// ReadEvents parses a JSON-lines trace stream into events. Events are
// stably sorted by timestamp (input order breaks ties) and predecessor
// line references are remapped to the sorted ids.
func ReadEvents(r io.Reader) ([]Event, error) {
	var events []Event
	var preds []int64 // predecessor line index per event, -1 for none

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ej eventJSON
		if err := json.Unmarshal(raw, &ej); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		class, err := classFromString(ej.Class)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ev := Event{
			TS:          ej.TS,
			Duration:    ej.Dur,
			Name:        ej.Name,
			Actor:       ej.Actor,
			RowID:       ej.RowID,
			Class:       class,
			Predecessor: InvalidID,
		}
		for _, f := range ej.Fields {
			ev.Fields = append(ev.Fields, Field{Key: f[0], Value: f[1]})
		}

		pred := int64(-1)
		if ej.Pred != nil {
			pred = *ej.Pred
		}
		preds = append(preds, pred)
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	// Stable sort keeps input order for equal timestamps, which becomes
	// the id tie-break.
	order := make([]int, len(events))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return events[order[a]].TS < events[order[b]].TS
	})

	newID := make([]EventID, len(events)) // original line -> sorted id
	sorted := make([]Event, len(events))
	for to, from := range order {
		sorted[to] = events[from]
		newID[from] = EventID(to)
	}
	for to, from := range order {
		if p := preds[from]; p >= 0 && p < int64(len(events)) {
			sorted[to].Predecessor = newID[p]
		}
	}
	return sorted, nil
}

// LoadFile reads and indexes a trace file into a Store.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	start := time.Now()
	events, err := ReadEvents(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	store, err := NewStore(events)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", path, err)
	}
	slog.Info("trace loaded", "path", path, "events", store.Len(), "elapsed", time.Since(start))
	return store, nil
}

// LoadResult carries the outcome of an async load.
type LoadResult struct {
	Store *Store
	Err   error
}

// Future is a one-shot async load handle. The UI polls it once per frame;
// Poll never blocks.
type Future struct {
	ch   chan LoadResult
	done *LoadResult
}

// LoadAsync starts loading a trace file on a background goroutine.
func LoadAsync(path string) *Future {
	f := &Future{ch: make(chan LoadResult, 1)}
	go func() {
		store, err := LoadFile(path)
		f.ch <- LoadResult{Store: store, Err: err}
	}()
	return f
}

// Poll returns the load result if it is ready. The second return is false
// while the load is still running.
func (f *Future) Poll() (LoadResult, bool) {
	if f.done != nil {
		return *f.done, true
	}
	select {
	case res := <-f.ch:
		f.done = &res
		return res, true
	default:
		return LoadResult{}, false
	}
}
