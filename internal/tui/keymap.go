package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/Dicklesworthstone/gpuscope/internal/nav"
)

// KeyMap declares the interactive bindings. Navigation keys are
// translated into nav inputs; the rest drive the model directly.
type KeyMap struct {
	Quit       key.Binding
	Filter     key.Binding
	ZoomToggle key.Binding
	RowZoom    key.Binding
	HideRow    key.Binding
	HideBelow  key.Binding
	ShowAll    key.Binding
	MarkerA    key.Binding
	MarkerB    key.Binding
	GotoA      key.Binding
	GotoB      key.Binding
	Left       key.Binding
	Right      key.Binding
	Up         key.Binding
	Down       key.Binding
	Home       key.Binding
	End        key.Binding
	Escape     key.Binding
	Help       key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter events")),
		ZoomToggle: key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "zoom 3ms / back")),
		RowZoom:    key.NewBinding(key.WithKeys("Z"), key.WithHelp("Z", "zoom hovered row")),
		HideRow:    key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hide hovered row")),
		HideBelow:  key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "hide hovered row and below")),
		ShowAll:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unhide all rows")),
		MarkerA:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "set marker A")),
		MarkerB:    key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "set marker B")),
		GotoA:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "go to marker A")),
		GotoB:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "go to marker B")),
		Left:       key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "scroll left")),
		Right:      key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "scroll right")),
		Up:         key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "scroll up")),
		Down:       key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "scroll down")),
		Home:       key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "start of trace")),
		End:        key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "end of trace")),
		Escape:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

// shiftedDigits holds the shifted forms of 1..9 on a US layout, used to
// save locations since terminals cannot report ctrl+shift+digit.
const shiftedDigits = "!@#$%^&*("

// navKeyFor maps a key string onto a navigation input. ok is false for
// keys the navigation machine does not handle.
func navKeyFor(s string) (nav.Key, nav.Mods, bool) {
	switch s {
	case "left":
		return nav.KeyLeft, nav.Mods{}, true
	case "right":
		return nav.KeyRight, nav.Mods{}, true
	case "up":
		return nav.KeyUp, nav.Mods{}, true
	case "down":
		return nav.KeyDown, nav.Mods{}, true
	case "home":
		return nav.KeyHome, nav.Mods{}, true
	case "end":
		return nav.KeyEnd, nav.Mods{}, true
	case "esc":
		return nav.KeyEscape, nav.Mods{}, true
	case "z":
		return nav.KeyZoomToggle, nav.Mods{}, true
	case "m":
		return nav.KeyMarkerA, nav.Mods{Shift: true}, true
	case "M":
		return nav.KeyMarkerB, nav.Mods{Shift: true}, true
	case "a":
		return nav.KeyMarkerA, nav.Mods{}, true
	case "b":
		return nav.KeyMarkerB, nav.Mods{}, true
	}
	if len(s) == 1 {
		if s[0] >= '1' && s[0] <= '9' {
			return nav.KeySlot1 + nav.Key(s[0]-'1'), nav.Mods{Ctrl: true}, true
		}
		if i := strings.IndexByte(shiftedDigits, s[0]); i >= 0 {
			return nav.KeySlot1 + nav.Key(i), nav.Mods{Ctrl: true, Shift: true}, true
		}
	}
	return 0, nav.Mods{}, false
}
