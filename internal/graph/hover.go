package graph

import (
	"github.com/Dicklesworthstone/gpuscope/internal/trace"
)

// DefaultHoverMax is the candidate list capacity K.
const DefaultHoverMax = 6

// DefaultHoverRadius is the pick radius in pixels around the cursor.
const DefaultHoverRadius = 8.0

// HoverCandidate is one event close to the cursor: its time distance, the
// side of the cursor it sits on and its id.
type HoverCandidate struct {
	DistTS int64
	Before bool // event is left of the cursor
	ID     trace.EventID
}

// HoverList holds the K nearest events to the cursor across the whole
// frame, insertion-sorted by ascending time distance. One list is shared
// by every row scan of a frame so the result is frame-global, not per row.
// The list never exceeds its capacity.
type HoverList struct {
	items  []HoverCandidate
	max    int
	radius float64
}

// NewHoverList creates a list with capacity max and a pixel pick radius.
func NewHoverList(max int, radius float64) *HoverList {
	if max <= 0 {
		max = DefaultHoverMax
	}
	return &HoverList{
		items:  make([]HoverCandidate, 0, max),
		max:    max,
		radius: radius,
	}
}

// Add offers an event at pixel position x against the cursor at cursorX.
// Events at or beyond the pick radius are rejected. Rows scan in
// ascending id order, so equal distances keep the earlier-scanned event
// first. Returns whether the event entered the list.
func (h *HoverList) Add(m TimeMap, cursorX, x float64, id trace.EventID) bool {
	dx := x - cursorX
	before := dx < 0
	if before {
		dx = -dx
	}
	if dx >= h.radius {
		return false
	}

	distTS := m.DxToDuration(dx)
	cand := HoverCandidate{DistTS: distTS, Before: before, ID: id}

	pos := len(h.items)
	for i := range h.items {
		if distTS < h.items[i].DistTS {
			pos = i
			break
		}
	}
	if pos >= h.max {
		return false
	}

	if len(h.items) < h.max {
		h.items = append(h.items, HoverCandidate{})
	}
	copy(h.items[pos+1:], h.items[pos:])
	h.items[pos] = cand
	return true
}

// Items returns the candidates ordered by ascending distance.
func (h *HoverList) Items() []HoverCandidate {
	return h.items
}

// Nearest returns the closest candidate, or false when the list is empty.
func (h *HoverList) Nearest() (HoverCandidate, bool) {
	if len(h.items) == 0 {
		return HoverCandidate{}, false
	}
	return h.items[0], true
}

// Len returns the number of candidates held.
func (h *HoverList) Len() int { return len(h.items) }
