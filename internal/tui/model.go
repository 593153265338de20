package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/Dicklesworthstone/gpuscope/internal/config"
	"github.com/Dicklesworthstone/gpuscope/internal/graph"
	"github.com/Dicklesworthstone/gpuscope/internal/nav"
	"github.com/Dicklesworthstone/gpuscope/internal/trace"
	"github.com/Dicklesworthstone/gpuscope/internal/watch"
)

const frameInterval = time.Second / 30

// statusHeight is the fixed chrome below the graph: a status line plus a
// prompt/tooltip line.
const statusHeight = 2

type frameMsg time.Time

// Model is the bubbletea program state. The graph engine itself is
// stateless per frame; everything that persists between frames lives in
// the navigation machine and here.
type Model struct {
	tracePath string
	rowsPath  string
	opts      *config.Options
	keys      KeyMap

	store   *trace.Store
	future  *trace.Future
	loadErr error
	machine *nav.Machine
	specs   []graph.RowSpec
	watcher *watch.Watcher

	width, height int

	pointer nav.Pointer

	filterInput  textinput.Model
	filterActive bool
	filterExpr   string
	filterLocs   []trace.EventID
	filterErr    string

	lastFrame *graph.Frame
	status    string
	showHelp  bool
	quitting  bool
}

// New builds a model that loads tracePath in the background and watches
// it for rewrites. rowsPath may be empty, in which case the row list is
// derived from the trace.
func New(tracePath, rowsPath string, opts *config.Options) *Model {
	in := textinput.New()
	in.Prompt = "filter> "
	in.CharLimit = 256

	m := &Model{
		tracePath:   tracePath,
		rowsPath:    rowsPath,
		opts:        opts,
		keys:        DefaultKeyMap(),
		future:      trace.LoadAsync(tracePath),
		filterInput: in,
	}
	w, err := watch.New(tracePath)
	if err != nil {
		slog.Warn("trace file watch unavailable", "path", tracePath, "error", err)
	} else {
		m.watcher = w
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), tea.EnableMouseAllMotion)
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case frameMsg:
		m.poll()
		return m, m.tick()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	}
	return m, nil
}

// poll drains the async loader and the file watcher between frames.
func (m *Model) poll() {
	if m.future != nil {
		if res, ok := m.future.Poll(); ok {
			m.future = nil
			m.loadErr = res.Err
			if res.Err != nil {
				slog.Error("trace load failed", "path", m.tracePath, "error", res.Err)
			} else {
				m.install(res.Store)
			}
		}
	}
	if m.watcher != nil {
		select {
		case <-m.watcher.C:
			m.future = trace.LoadAsync(m.tracePath)
			m.status = "trace changed on disk, reloading"
		default:
		}
	}
}

// install swaps in a freshly loaded store, preserving the viewport when
// the new data still covers it.
func (m *Model) install(s *trace.Store) {
	m.store = s
	if m.rowsPath != "" {
		specs, err := graph.LoadRowList(m.rowsPath)
		if err != nil {
			slog.Warn("row list unusable, deriving rows from trace", "path", m.rowsPath, "error", err)
			specs = nil
		}
		m.specs = specs
	}
	if m.specs == nil {
		m.specs = graph.DefaultRowList(s)
	}
	if m.machine == nil {
		m.machine = nav.New(s.FirstTS(), s.LastTS())
	} else {
		m.machine.SetBounds(s.FirstTS(), s.LastTS())
	}
	m.applyFilter(m.filterExpr)
	m.status = fmt.Sprintf("%s: %d events", m.tracePath, s.Len())
}

func (m *Model) applyFilter(expr string) {
	m.filterExpr = expr
	m.filterLocs = nil
	m.filterErr = ""
	if expr == "" || m.store == nil {
		return
	}
	locs, err := m.store.FilterLocs(expr)
	if err != nil {
		m.filterErr = err.Error()
		return
	}
	m.filterLocs = locs
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filterActive {
		switch msg.String() {
		case "enter":
			m.filterActive = false
			m.filterInput.Blur()
			m.applyFilter(strings.TrimSpace(m.filterInput.Value()))
			m.machine.SetPopupOpen(false)
			return m, nil
		case "esc":
			m.filterActive = false
			m.filterInput.Blur()
			m.machine.SetPopupOpen(false)
			return m, nil
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.watcher != nil {
			m.watcher.Close()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Filter):
		if m.machine == nil {
			return m, nil
		}
		m.filterActive = true
		m.filterInput.SetValue(m.filterExpr)
		m.filterInput.Focus()
		m.machine.SetPopupOpen(true)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.RowZoom):
		if m.machine != nil && m.lastFrame != nil {
			if row := m.rowUnderCursor(); row != "" {
				m.machine.ToggleZoomRow(row)
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.HideRow):
		if m.machine != nil && m.lastFrame != nil {
			if row := m.rowUnderCursor(); row != "" {
				graph.HideRow(m.specs, row)
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.HideBelow):
		if m.machine != nil && m.lastFrame != nil {
			if row := m.rowUnderCursor(); row != "" {
				graph.HideRowAndBelow(m.specs, row)
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.ShowAll):
		graph.ShowAllRows(m.specs)
		return m, nil
	}

	if m.machine == nil {
		return m, nil
	}
	if k, mods, ok := navKeyFor(msg.String()); ok {
		m.machine.HandleKey(k, mods, m.cursorTS(), m.graphHeight(), m.contentHeight())
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.machine == nil {
		return
	}
	p := nav.Pointer{
		X:     float64(msg.X),
		Y:     float64(msg.Y),
		In:    float64(msg.Y) < m.graphHeight(),
		Ctrl:  msg.Ctrl,
		Shift: msg.Shift,
	}
	switch msg.Button {
	case tea.MouseButtonLeft:
		p.Primary = msg.Action != tea.MouseActionRelease
	case tea.MouseButtonWheelUp:
		p.Wheel = 1
	case tea.MouseButtonWheelDown:
		p.Wheel = -1
	default:
		// Motion keeps the previous button state alive during drags.
		p.Primary = m.pointer.Primary && msg.Action == tea.MouseActionMotion
	}
	m.pointer = p
	m.machine.HandlePointer(m.timeMap(), p)
}

// timeMap builds the current pixel/time mapping from the live viewport.
func (m *Model) timeMap() graph.TimeMap {
	vp := m.machine.Viewport()
	return graph.NewTimeMap(float64(m.width), vp.StartTS, vp.LengthTS)
}

func (m *Model) graphHeight() float64 {
	h := m.height - statusHeight
	if h < 1 {
		h = 1
	}
	return float64(h)
}

func (m *Model) contentHeight() float64 {
	if m.lastFrame == nil {
		return m.graphHeight()
	}
	return m.lastFrame.Layout.TotalH
}

func (m *Model) cursorTS() int64 {
	return m.timeMap().XToTime(m.pointer.X)
}

// rowUnderCursor resolves the row the pointer sits in, using the layout
// of the previous frame.
func (m *Model) rowUnderCursor() string {
	vp := m.machine.Viewport()
	y := m.pointer.Y - vp.ScrollY
	for i := range m.lastFrame.Layout.Rows {
		r := &m.lastFrame.Layout.Rows[i]
		if y >= r.Y && y < r.Y+r.H {
			return r.Name
		}
	}
	return ""
}

// buildFrame runs the engine for the current viewport. Filter matches
// prune the rendered set only when the persisted option asks for it; a
// filter can otherwise stay active for the status count and tooltips
// while the graph still shows everything.
func (m *Model) buildFrame(gh int) *graph.Frame {
	vp := m.machine.Viewport()
	layout := graph.BuildLayout(m.store, m.specs, m.opts, 1)
	inter := m.machine.Interaction(m.timeMap(), m.pointer)
	f := graph.NewFrame(m.store, layout, m.opts, vp, float64(m.width), float64(gh), inter)
	if m.opts.OnlyShowFilteredEvents {
		f.SetFiltered(m.filterLocs)
	}
	f.Render(vp.ScrollY)
	return f
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "starting..."
	}
	if m.loadErr != nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).
			Render(fmt.Sprintf("cannot load %s: %v", m.tracePath, m.loadErr))
	}
	if m.store == nil {
		return fmt.Sprintf("loading %s...", m.tracePath)
	}

	gh := int(m.graphHeight())
	f := m.buildFrame(gh)
	m.lastFrame = f

	grid := NewGrid(m.width, gh)
	grid.Draw(f.Cmds)

	var b strings.Builder
	b.WriteString(grid.String())
	b.WriteByte('\n')
	b.WriteString(truncate.StringWithTail(m.statusLine(f), uint(m.width), "…"))
	b.WriteByte('\n')
	b.WriteString(truncate.StringWithTail(m.promptLine(f), uint(m.width), "…"))
	return b.String()
}

var statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

func (m *Model) statusLine(f *graph.Frame) string {
	parts := []string{
		fmt.Sprintf("[%s .. %s]", graph.TimeString(f.TS0), graph.TimeString(f.TS1)),
	}
	if zr := m.machine.ZoomRow(); zr != "" {
		parts = append(parts, "zoom:"+zr)
	}
	if m.filterExpr != "" {
		n := len(m.filterLocs)
		parts = append(parts, fmt.Sprintf("filter:%s (%d)", m.filterExpr, n))
	}
	if m.filterErr != "" {
		parts = append(parts, "filter error: "+m.filterErr)
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return statusStyle.Render(strings.Join(parts, "  "))
}

func (m *Model) promptLine(f *graph.Frame) string {
	if m.filterActive {
		return m.filterInput.View()
	}
	if m.showHelp {
		return helpLine(m.keys)
	}
	if tip := f.Tooltip(); tip != "" {
		// The tooltip is multi-line; the prompt row shows its first line.
		if i := strings.IndexByte(tip, '\n'); i >= 0 {
			tip = tip[:i]
		}
		return tip
	}
	return ""
}

func helpLine(k KeyMap) string {
	bindings := []key.Binding{
		k.Quit, k.Filter, k.ZoomToggle, k.RowZoom,
		k.HideRow, k.HideBelow, k.ShowAll,
		k.MarkerA, k.GotoA, k.Home, k.End,
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, b.Help().Key+":"+b.Help().Desc)
	}
	return strings.Join(parts, "  ")
}
