// Package cli wires the gpuscope commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/gpuscope/internal/config"
	"github.com/Dicklesworthstone/gpuscope/internal/tui"
)

var (
	cfgFile  string
	rowsFile string
	verbose  bool
	noColor  bool

	opts *config.Options

	// Build information - set by goreleaser via ldflags
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:           "gpuscope",
	Short:         "Terminal viewer for GPU trace timelines",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		if noColor || os.Getenv("NO_COLOR") != "" || !isatty.IsTerminal(os.Stdout.Fd()) {
			lipgloss.SetColorProfile(termenv.Ascii)
		}

		path := cfgFile
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}
		var err error
		opts, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the user config dir)")
	rootCmd.PersistentFlags().StringVar(&rowsFile, "rows", "", "row list yaml (default derives rows from the trace)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newViewCmd(), newDumpCmd(), newVersionCmd())
}

func Execute() error {
	return rootCmd.Execute()
}

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <trace.jsonl>",
		Short: "Open a trace in the interactive timeline viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("view needs a terminal; use 'gpuscope dump' for non-interactive output")
			}
			m := tui.New(args[0], rowsFile, opts)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
			_, err := p.Run()
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gpuscope %s (commit %s, built %s)\n", Version, Commit, Date)
		},
	}
}
