package graph

import (
	"testing"

	"github.com/Dicklesworthstone/gpuscope/internal/trace"
)

func chainEvent(ts, dur int64, class trace.Classification, pred trace.EventID) trace.Event {
	return trace.Event{
		TS:          ts,
		Duration:    dur,
		Class:       class,
		Predecessor: pred,
		Actor:       "glxgears-1453",
		Fields: []trace.Field{
			{Key: "timeline", Value: "gfx"},
			{Key: "context", Value: "7"},
			{Key: "seqno", Value: "3145"},
		},
	}
}

func TestCorrelateFullChain(t *testing.T) {
	store, err := trace.NewStore([]trace.Event{
		chainEvent(100, 0, trace.ClassTimelineSubmit, trace.InvalidID),
		chainEvent(110, 0, trace.ClassTimelineRun, 0),
		chainEvent(150, 30, trace.ClassTimelineComplete, 1),
	})
	if err != nil {
		t.Fatal(err)
	}

	chain, ok := Correlate(store, 2)
	if !ok {
		t.Fatal("Correlate returned not-ok for a valid chain")
	}
	if !chain.HasSubmit() {
		t.Error("full chain lost its submit stage")
	}
	if got, want := chain.Boundaries(), [4]int64{100, 110, 120, 150}; got != want {
		t.Errorf("boundaries = %v, want %v", got, want)
	}
}

func TestCorrelateMissingSubmit(t *testing.T) {
	store, err := trace.NewStore([]trace.Event{
		chainEvent(110, 0, trace.ClassTimelineRun, trace.InvalidID),
		chainEvent(150, 30, trace.ClassTimelineComplete, 0),
	})
	if err != nil {
		t.Fatal(err)
	}

	chain, ok := Correlate(store, 1)
	if !ok {
		t.Fatal("Correlate returned not-ok")
	}
	if chain.HasSubmit() {
		t.Error("chain without submit reports one")
	}
	// Left edge collapses to the run start.
	if got, want := chain.Boundaries(), [4]int64{110, 110, 120, 150}; got != want {
		t.Errorf("boundaries = %v, want %v", got, want)
	}
}

func TestCorrelateRequeuedRunStages(t *testing.T) {
	// A re-queued job chains two run stages; the walk continues through
	// consecutive run-classified predecessors and still finds the
	// submission. The bar anchors at the latest run stage.
	store, err := trace.NewStore([]trace.Event{
		chainEvent(100, 0, trace.ClassTimelineSubmit, trace.InvalidID),
		chainEvent(105, 0, trace.ClassTimelineRun, 0),
		chainEvent(120, 0, trace.ClassTimelineRun, 1),
		chainEvent(160, 30, trace.ClassTimelineComplete, 2),
	})
	if err != nil {
		t.Fatal(err)
	}

	chain, ok := Correlate(store, 3)
	if !ok {
		t.Fatal("Correlate returned not-ok")
	}
	if !chain.HasSubmit() {
		t.Fatal("submit stage not found through the re-queued run")
	}
	if chain.Submit != 0 || chain.Run != 2 {
		t.Errorf("chain stages = submit %d run %d, want submit 0 run 2", chain.Submit, chain.Run)
	}
	if got, want := chain.Boundaries(), [4]int64{100, 120, 130, 160}; got != want {
		t.Errorf("boundaries = %v, want %v", got, want)
	}
}

func TestCorrelateClassificationMismatch(t *testing.T) {
	// Run's predecessor is another run: no submit stage, not an error.
	store, err := trace.NewStore([]trace.Event{
		chainEvent(90, 0, trace.ClassGeneric, trace.InvalidID),
		chainEvent(110, 0, trace.ClassTimelineRun, 0),
		chainEvent(150, 30, trace.ClassTimelineComplete, 1),
	})
	if err != nil {
		t.Fatal(err)
	}
	chain, ok := Correlate(store, 2)
	if !ok || chain.HasSubmit() {
		t.Errorf("ok=%v submit=%v, want ok with no submit", ok, chain.HasSubmit())
	}
}

func TestCorrelateMalformedChains(t *testing.T) {
	tests := []struct {
		name   string
		events []trace.Event
		id     trace.EventID
		wantOK bool
	}{
		{
			name: "not a completion",
			events: []trace.Event{
				chainEvent(110, 0, trace.ClassTimelineRun, trace.InvalidID),
			},
			id: 0,
		},
		{
			name: "predecessor out of range",
			events: []trace.Event{
				chainEvent(150, 30, trace.ClassTimelineComplete, 999),
			},
			id: 0,
		},
		{
			name: "predecessor points forward in time",
			events: []trace.Event{
				chainEvent(150, 30, trace.ClassTimelineComplete, 1),
				chainEvent(200, 0, trace.ClassTimelineRun, trace.InvalidID),
			},
			id: 0,
		},
		{
			name: "self-referencing run terminates",
			events: []trace.Event{
				chainEvent(110, 0, trace.ClassTimelineRun, 0),
				chainEvent(150, 30, trace.ClassTimelineComplete, 0),
			},
			id:     1,
			wantOK: true, // chain truncates at the cycle, no submit
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := trace.NewStore(tt.events)
			if err != nil {
				t.Fatal(err)
			}
			chain, ok := Correlate(store, tt.id)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && chain.HasSubmit() {
				t.Error("malformed chain produced a submit stage")
			}
		})
	}
}
