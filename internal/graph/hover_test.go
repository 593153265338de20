package graph

import (
	"testing"

	"github.com/Dicklesworthstone/gpuscope/internal/trace"
)

// wideMap maps 1px to 1ns so pixel distances read directly as time.
func wideMap() TimeMap {
	return NewTimeMap(1_000_000, 0, 1_000_000-1)
}

func TestHoverKNearest(t *testing.T) {
	m := wideMap()
	h := NewHoverList(3, 10)
	cursor := 500.0

	// Events at pixel distances 5, 3, 9, 1, 7, 2, 8 from the cursor.
	dists := []float64{5, 3, 9, 1, 7, 2, 8}
	for i, d := range dists {
		h.Add(m, cursor, cursor+d, trace.EventID(i))
	}

	if h.Len() != 3 {
		t.Fatalf("list holds %d, want 3", h.Len())
	}
	got := map[int64]bool{}
	for _, c := range h.Items() {
		got[c.DistTS] = true
	}
	for _, want := range []int64{1, 2, 3} {
		if !got[want] {
			t.Errorf("distance %d missing from candidates %v", want, h.Items())
		}
	}
}

func TestHoverOrderedByDistance(t *testing.T) {
	m := wideMap()
	h := NewHoverList(6, 100)
	for i, d := range []float64{50, 10, 30, 20, 40} {
		h.Add(m, 500, 500+d, trace.EventID(i))
	}
	items := h.Items()
	for i := 1; i < len(items); i++ {
		if items[i].DistTS < items[i-1].DistTS {
			t.Fatalf("candidates not ordered: %v", items)
		}
	}
	if nearest, ok := h.Nearest(); !ok || nearest.DistTS != 10 {
		t.Errorf("Nearest = %v, want distance 10", nearest)
	}
}

func TestHoverRadiusRejects(t *testing.T) {
	m := wideMap()
	h := NewHoverList(6, 8)
	if h.Add(m, 500, 508, 0) {
		t.Error("event at the radius boundary was accepted")
	}
	if !h.Add(m, 500, 507.5, 1) {
		t.Error("event inside the radius was rejected")
	}
}

func TestHoverSidedness(t *testing.T) {
	m := wideMap()
	h := NewHoverList(6, 8)
	h.Add(m, 500, 495, 0) // left of cursor
	h.Add(m, 500, 503, 1) // right of cursor

	for _, c := range h.Items() {
		wantBefore := c.ID == 0
		if c.Before != wantBefore {
			t.Errorf("event %d Before = %v, want %v", c.ID, c.Before, wantBefore)
		}
	}
}

func TestHoverNeverExceedsCapacity(t *testing.T) {
	m := wideMap()
	h := NewHoverList(2, 100)
	for i := 0; i < 50; i++ {
		h.Add(m, 500, 500+float64(i%9), trace.EventID(i))
		if h.Len() > 2 {
			t.Fatalf("list grew to %d after insert %d", h.Len(), i)
		}
	}
}

func TestHoverTieKeepsEarlierScan(t *testing.T) {
	m := wideMap()
	h := NewHoverList(6, 100)
	h.Add(m, 500, 505, 7) // scanned first
	h.Add(m, 500, 495, 9) // same distance, scanned later

	items := h.Items()
	if len(items) != 2 || items[0].ID != 7 {
		t.Errorf("tie order = %v, want id 7 first", items)
	}
}
