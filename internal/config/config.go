// Package config persists the viewer's options: global render toggles and
// per-row height multipliers, stored as TOML under the user config dir.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Options is the persisted configuration. The zero value is not useful;
// start from Default().
type Options struct {
	// OnlyShowFilteredEvents restricts row scans to events matched by the
	// active filter.
	OnlyShowFilteredEvents bool `toml:"only_show_filtered_events"`
	// RenderUserspaceSegment draws the submit→run segment of timeline bars.
	RenderUserspaceSegment bool `toml:"render_userspace_segment"`
	// ShowTimelineEventTicks draws 1px ticks at stage boundaries.
	ShowTimelineEventTicks bool `toml:"show_timeline_event_ticks"`
	// ShowTimelineTextLabels draws actor labels inside timeline bars.
	ShowTimelineTextLabels bool `toml:"show_timeline_text_labels"`

	// RowSizes maps a row name to its height in text rows. Only Timeline,
	// Print and Plot rows consult it.
	RowSizes map[string]int `toml:"row_sizes"`
}

// Row size clamp bounds, in text rows.
const (
	MinRowSize     = 2
	MaxRowSize     = 50
	DefaultRowSize = 4
)

// Default returns the options used when no config file exists.
func Default() *Options {
	return &Options{
		RenderUserspaceSegment: true,
		ShowTimelineEventTicks: true,
		ShowTimelineTextLabels: true,
		RowSizes:               make(map[string]int),
	}
}

// RowSize returns the clamped height multiplier for a row name.
func (o *Options) RowSize(name string) int {
	size, ok := o.RowSizes[name]
	if !ok {
		size = DefaultRowSize
	}
	if size < MinRowSize {
		size = MinRowSize
	} else if size > MaxRowSize {
		size = MaxRowSize
	}
	return size
}

// SetRowSize stores a height multiplier for a row name.
func (o *Options) SetRowSize(name string, size int) {
	if o.RowSizes == nil {
		o.RowSizes = make(map[string]int)
	}
	o.RowSizes[name] = size
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "gpuscope", "config.toml"), nil
}

// Load reads options from path. A missing file returns defaults, not an
// error, so first runs work without setup.
func Load(path string) (*Options, error) {
	opts := Default()
	meta, err := toml.DecodeFile(path, opts)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		slog.Warn("config has unknown keys", "path", path, "keys", undecoded)
	}
	if opts.RowSizes == nil {
		opts.RowSizes = make(map[string]int)
	}
	return opts, nil
}

// Save writes options to path, creating parent directories as needed.
func (o *Options) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(o); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
