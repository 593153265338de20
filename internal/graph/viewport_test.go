package graph

import "testing"

func TestTimeMapRoundTrip(t *testing.T) {
	m := NewTimeMap(1000, 5_000_000, 2_000_000)

	for ts := int64(5_000_000); ts <= 7_000_000; ts += 13_337 {
		x := m.TimeToX(ts)
		got := m.XToTime(x)
		if diff := got - ts; diff < -1 || diff > 1 {
			t.Fatalf("XToTime(TimeToX(%d)) = %d, off by %d", ts, got, diff)
		}
	}
}

func TestTimeMapMonotonic(t *testing.T) {
	m := NewTimeMap(640, 0, 1_000_000)

	prev := m.TimeToX(0)
	for ts := int64(1); ts <= 1_000_000; ts += 997 {
		x := m.TimeToX(ts)
		if x < prev {
			t.Fatalf("TimeToX(%d) = %f < previous %f", ts, x, prev)
		}
		prev = x
	}
}

func TestTimeMapRightEdgeInclusive(t *testing.T) {
	// The +1 denominator keeps the last in-window timestamp strictly
	// inside the pixel width.
	m := NewTimeMap(800, 0, 1_000_000)
	if x := m.TimeToX(1_000_000); x >= 800 {
		t.Errorf("right edge maps to %f, want < 800", x)
	}
}

func TestTimeMapZeroLengthWindow(t *testing.T) {
	m := NewTimeMap(800, 42, 0)
	// Must not divide by zero; the window start maps to x=0.
	if x := m.TimeToX(42); x != 0 {
		t.Errorf("TimeToX(start) = %f, want 0", x)
	}
	if got := m.XToTime(0); got != 42 {
		t.Errorf("XToTime(0) = %d, want 42", got)
	}
}

func TestDxToDuration(t *testing.T) {
	m := NewTimeMap(1000, 0, 1_000_000)
	if got := m.DxToDuration(500); got < 499_000 || got > 501_000 {
		t.Errorf("DxToDuration(500) = %d, want ~500000", got)
	}
	if got := m.DxToDuration(0); got != 0 {
		t.Errorf("DxToDuration(0) = %d, want 0", got)
	}
}

func TestViewportClamps(t *testing.T) {
	v := Viewport{StartTS: 0, LengthTS: 1}
	v.ClampLength()
	if v.LengthTS != MinWindowLen {
		t.Errorf("short window clamped to %d, want %d", v.LengthTS, MinWindowLen)
	}

	v.LengthTS = MaxWindowLen + 1
	v.ClampLength()
	if v.LengthTS != MaxWindowLen {
		t.Errorf("long window clamped to %d, want %d", v.LengthTS, MaxWindowLen)
	}

	first, last := int64(10_000_000), int64(90_000_000)
	v.StartTS = 0
	v.ClampStart(first, last)
	if want := first - NsecPerMsec; v.StartTS != want {
		t.Errorf("early start clamped to %d, want %d", v.StartTS, want)
	}
	v.StartTS = last + 1
	v.ClampStart(first, last)
	if v.StartTS != last {
		t.Errorf("late start clamped to %d, want %d", v.StartTS, last)
	}
}
