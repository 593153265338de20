// Package tui is the terminal frontend: it feeds key and mouse input into
// the navigation machine, runs the graph engine once per frame and
// rasterizes its draw commands into styled terminal cells.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/gpuscope/internal/graph"
)

// cell is one terminal cell of the raster.
type cell struct {
	r     rune
	color graph.ColorID
}

// Grid rasterizes draw commands into a fixed character matrix. One pixel
// of engine geometry is one terminal cell.
type Grid struct {
	w, h  int
	cells []cell
}

// NewGrid allocates a w×h raster filled with background.
func NewGrid(w, h int) *Grid {
	g := &Grid{w: w, h: h, cells: make([]cell, w*h)}
	for i := range g.cells {
		g.cells[i] = cell{r: ' ', color: graph.ColorBackground}
	}
	return g
}

func (g *Grid) set(x, y int, r rune, color graph.ColorID) {
	if x < 0 || x >= g.w || y < 0 || y >= g.h {
		return
	}
	g.cells[y*g.w+x] = cell{r: r, color: color}
}

// Draw applies the engine's draw commands in order; later commands
// overdraw earlier ones, matching the engine's painter ordering.
func (g *Grid) Draw(cmds []graph.DrawCmd) {
	for _, c := range cmds {
		switch c.Op {
		case graph.OpRect:
			g.drawRect(c)
		case graph.OpTick:
			x := int(c.X)
			for y := int(c.Y); y < int(c.Y+c.H+0.5); y++ {
				g.set(x, y, '│', c.Color)
			}
		case graph.OpLine:
			g.drawLine(c)
		case graph.OpLabel:
			g.drawLabel(c)
		}
	}
}

func (g *Grid) drawRect(c graph.DrawCmd) {
	x0, x1 := int(c.X), int(c.X+c.W+0.5)
	if x1 <= x0 {
		x1 = x0 + 1 // sub-cell rects still leave a mark
	}
	y0, y1 := int(c.Y), int(c.Y+c.H+0.5)
	if y1 <= y0 {
		y1 = y0 + 1
	}
	r := '█'
	if c.Color == graph.ColorBackground || c.Color == graph.ColorSelPreview {
		r = ' '
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			g.set(x, y, r, c.Color)
		}
	}
}

// drawLine steps across the x span, interpolating y. Plot polylines are
// the only caller.
func (g *Grid) drawLine(c graph.DrawCmd) {
	steps := int(c.W)
	if steps < 0 {
		steps = -steps
	}
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		g.set(int(c.X+c.W*t), int(c.Y+c.H*t), '·', c.Color)
	}
}

func (g *Grid) drawLabel(c graph.DrawCmd) {
	x, y := int(c.X), int(c.Y)
	for _, r := range c.Text {
		if x >= g.w {
			break
		}
		g.set(x, y, r, c.Color)
		x++
	}
}

// palette maps semantic color categories onto terminal styles.
var palette = map[graph.ColorID]lipgloss.Style{
	graph.ColorBackground:  lipgloss.NewStyle(),
	graph.ColorGraph1Event: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	graph.ColorGraph2Event: lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
	graph.ColorGraph3Event: lipgloss.NewStyle().Foreground(lipgloss.Color("51")),
	graph.ColorGraph4Event: lipgloss.NewStyle().Foreground(lipgloss.Color("87")),
	graph.ColorGraph5Event: lipgloss.NewStyle().Foreground(lipgloss.Color("123")),
	graph.ColorGraph6Event: lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
	graph.ColorBarUserspace: lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
	graph.ColorBarHwQueue:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	graph.ColorBarHwRunning: lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
	graph.ColorBarSelRect:   lipgloss.NewStyle().Foreground(lipgloss.Color("231")),
	graph.ColorBarText:      lipgloss.NewStyle().Foreground(lipgloss.Color("254")),
	graph.ColorPrintTick:    lipgloss.NewStyle().Foreground(lipgloss.Color("213")),
	graph.ColorPlotLine:     lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
	graph.ColorPlotPoint:    lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
	graph.ColorTimeTick:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	graph.ColorMarkerA:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	graph.ColorMarkerB:      lipgloss.NewStyle().Foreground(lipgloss.Color("201")),
	graph.ColorMouseCursor:  lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
	graph.ColorSelPreview:   lipgloss.NewStyle().Background(lipgloss.Color("237")),
	graph.ColorRowLabel:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true),
}

// String renders the raster with ANSI styling, one line per row.
func (g *Grid) String() string {
	var b strings.Builder
	for y := 0; y < g.h; y++ {
		var runStart int
		var runColor graph.ColorID
		row := g.cells[y*g.w : (y+1)*g.w]

		flush := func(end int) {
			if end == runStart {
				return
			}
			var chunk strings.Builder
			for _, c := range row[runStart:end] {
				chunk.WriteRune(c.r)
			}
			b.WriteString(palette[runColor].Render(chunk.String()))
		}

		for x, c := range row {
			if c.color != runColor {
				flush(x)
				runStart, runColor = x, c.color
			}
		}
		flush(g.w)
		if y < g.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Plain renders the raster without styling, for the headless dump command
// and tests.
func (g *Grid) Plain() string {
	var b strings.Builder
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			b.WriteRune(g.cells[y*g.w+x].r)
		}
		if y < g.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
