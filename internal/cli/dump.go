package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/gpuscope/internal/graph"
	"github.com/Dicklesworthstone/gpuscope/internal/trace"
	"github.com/Dicklesworthstone/gpuscope/internal/tui"
)

// newDumpCmd renders one frame of the trace headlessly and prints it,
// for piping into files or diffing in scripts.
func newDumpCmd() *cobra.Command {
	var (
		width        int
		height       int
		startUs      int64
		lenUs        int64
		filter       string
		onlyFiltered bool
	)

	cmd := &cobra.Command{
		Use:   "dump <trace.jsonl>",
		Short: "Render a single frame of the trace to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := trace.LoadFile(args[0])
			if err != nil {
				return err
			}
			if store.Len() == 0 {
				return fmt.Errorf("%s: no events", args[0])
			}

			if width == 0 || height == 0 {
				w, h, err := term.GetSize(int(os.Stdout.Fd()))
				if err != nil {
					w, h = 120, 40
				}
				if width == 0 {
					width = w
				}
				if height == 0 {
					height = h - 1
				}
			}

			vp := graph.Viewport{StartTS: store.FirstTS(), LengthTS: store.LastTS() - store.FirstTS() + 1}
			if startUs != 0 {
				vp.StartTS = startUs * graph.NsecPerUsec
			}
			if lenUs != 0 {
				vp.LengthTS = lenUs * graph.NsecPerUsec
			}
			vp.ClampLength()

			var specs []graph.RowSpec
			if rowsFile != "" {
				if specs, err = graph.LoadRowList(rowsFile); err != nil {
					return err
				}
			} else {
				specs = graph.DefaultRowList(store)
			}

			layout := graph.BuildLayout(store, specs, opts, 1)
			f := graph.NewFrame(store, layout, opts, vp, float64(width), float64(height), graph.Interaction{})
			if filter != "" && (onlyFiltered || opts.OnlyShowFilteredEvents) {
				locs, err := store.FilterLocs(filter)
				if err != nil {
					return err
				}
				f.SetFiltered(locs)
			}
			f.Render(0)

			grid := tui.NewGrid(width, height)
			grid.Draw(f.Cmds)
			fmt.Println(grid.Plain())
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "frame width in cells (default terminal width)")
	cmd.Flags().IntVar(&height, "height", 0, "frame height in cells (default terminal height)")
	cmd.Flags().Int64Var(&startUs, "start", 0, "window start in microseconds (default trace start)")
	cmd.Flags().Int64Var(&lenUs, "len", 0, "window length in microseconds (default whole trace)")
	cmd.Flags().StringVar(&filter, "filter", "", "event filter expression, e.g. '$name =~ \"vblank\"'")
	cmd.Flags().BoolVar(&onlyFiltered, "only-filtered", false, "prune rendered events to filter matches")
	return cmd
}
