package graph

import (
	"github.com/Dicklesworthstone/gpuscope/internal/trace"
)

// maxChainDepth bounds back-reference traversal so a malformed chain can
// never loop. Observed chains are at most two hops deep.
const maxChainDepth = 8

// StageChain is the reconstructed lifespan of one job: the optional
// userspace submission, the hardware-queue run stage and the completion.
type StageChain struct {
	Submit   trace.EventID // InvalidID when the job is kernel-internal
	Run      trace.EventID
	Complete trace.EventID

	// Stage boundary timestamps: submit start (= run start without a
	// submit stage), run start, run end, complete end.
	SubmitTS   int64
	RunStartTS int64
	RunEndTS   int64
	EndTS      int64
}

// HasSubmit reports whether the job has a userspace submission stage.
func (c StageChain) HasSubmit() bool { return trace.IsValidID(c.Submit) }

// Boundaries returns the four stage edges in order.
func (c StageChain) Boundaries() [4]int64 {
	return [4]int64{c.SubmitTS, c.RunStartTS, c.RunEndTS, c.EndTS}
}

// predecessor resolves an event's back-reference, treating out-of-range
// ids and forward-in-time references as absent. A malformed chain is
// truncated here, never surfaced as an error.
func predecessor(store *trace.Store, ev *trace.Event) *trace.Event {
	id := ev.Predecessor
	if !trace.IsValidID(id) || int(id) >= store.Len() {
		return nil
	}
	pred := store.Event(id)
	if pred.TS > ev.TS {
		return nil
	}
	return pred
}

// Correlate walks back-references from a completion event and rebuilds its
// stage chain. It is stateless and re-run per completion, so interleaved
// hardware queues never interfere. Returns false when the event is not a
// completion or has no run stage to anchor the bar.
func Correlate(store *trace.Store, completeID trace.EventID) (StageChain, bool) {
	if int(completeID) >= store.Len() {
		return StageChain{}, false
	}
	complete := store.Event(completeID)
	if complete.Class != trace.ClassTimelineComplete {
		return StageChain{}, false
	}

	run := complete
	if pred := predecessor(store, complete); pred != nil && pred.Class == trace.ClassTimelineRun {
		run = pred
	} else {
		return StageChain{}, false
	}

	chain := StageChain{
		Submit:     trace.InvalidID,
		Run:        run.ID,
		Complete:   complete.ID,
		RunStartTS: run.TS,
		RunEndTS:   complete.TS - complete.Duration,
		EndTS:      complete.TS,
	}

	// Some jobs are kernel-internal and have no userspace submission; a
	// predecessor with the wrong classification means the same thing.
	// Re-queued jobs may chain several run stages, so walk through those
	// under the depth cap.
	cur := run
	for depth := 0; depth < maxChainDepth; depth++ {
		pred := predecessor(store, cur)
		if pred == nil {
			break
		}
		if pred.Class == trace.ClassTimelineSubmit {
			chain.Submit = pred.ID
			break
		}
		if pred.Class != trace.ClassTimelineRun {
			break
		}
		cur = pred
	}

	if chain.HasSubmit() {
		chain.SubmitTS = store.Event(chain.Submit).TS
	} else {
		// Left edge collapses to the run start.
		chain.SubmitTS = chain.RunStartTS
	}
	return chain, true
}
