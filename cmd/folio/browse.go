package main

import (
	"fmt"
	"io"
	"time"

	"folio/internal/log"
	"folio/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(a *app) *cobra.Command {
	var slideshow time.Duration

	cmd := &cobra.Command{
		Use:   "browse [path]",
		Short: "Browse a folder in the terminal",
		Long: `Open a folder, or the folder of a file, in the terminal browser.
The list follows changes on disk while it is open.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("slideshow") {
				a.cfg.Slideshow.Interval = slideshow
			}

			// Log lines would tear the screen; keep only the log file.
			a.configureLogging(io.Discard)

			m, err := tui.New(a.cfg, log.Default())
			if err != nil {
				return err
			}
			defer m.Close()
			m.Open(a.pathArg(args))

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running browser: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().DurationVarP(&slideshow, "slideshow", "s", 0, "advance automatically at this interval")
	return cmd
}
