package config

import (
	"path/filepath"
	"testing"
)

func TestRowSizeClamp(t *testing.T) {
	opts := Default()
	opts.SetRowSize("print", 100)
	opts.SetRowSize("gfx", 1)
	opts.SetRowSize("sdma0", 8)

	tests := []struct {
		name string
		want int
	}{
		{"print", MaxRowSize},
		{"gfx", MinRowSize},
		{"sdma0", 8},
		{"unknown", DefaultRowSize},
	}
	for _, tt := range tests {
		if got := opts.RowSize(tt.name); got != tt.want {
			t.Errorf("RowSize(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	opts, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !opts.RenderUserspaceSegment || !opts.ShowTimelineEventTicks {
		t.Error("missing file did not yield defaults")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	opts := Default()
	opts.OnlyShowFilteredEvents = true
	opts.ShowTimelineTextLabels = false
	opts.SetRowSize("gfx", 6)

	if err := opts.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.OnlyShowFilteredEvents {
		t.Error("OnlyShowFilteredEvents not preserved")
	}
	if got.ShowTimelineTextLabels {
		t.Error("ShowTimelineTextLabels not preserved")
	}
	if got.RowSize("gfx") != 6 {
		t.Errorf("RowSize(gfx) = %d, want 6", got.RowSize("gfx"))
	}
}
